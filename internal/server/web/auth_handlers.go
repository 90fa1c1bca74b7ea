package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/image-cloud/api/internal/common"
	"github.com/image-cloud/api/internal/server/auth"
	"github.com/image-cloud/api/internal/server/users"
)

// Signup creates an account from form fields. Duplicate username/email is
// reported with status 200 and the error flag in the body; that asymmetry
// with PATCH (which uses 400) is part of the historical client contract.
func (h *Handler) Signup(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")

	if username == "" || email == "" || password == "" {
		fail(c, http.StatusBadRequest, "Missing username, email or password.")
		return
	}

	_, err := h.users.Register(c.Request.Context(), username, email, password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUsernameTaken):
			c.JSON(http.StatusOK, gin.H{"error": true, "message": "Username taken."})
		case errors.Is(err, common.ErrEmailTaken):
			c.JSON(http.StatusOK, gin.H{"error": true, "message": "Email already in use."})
		case errors.Is(err, common.ErrDuplicate):
			// unique index fired inside the check-then-insert window
			c.JSON(http.StatusOK, gin.H{"error": true, "message": "Username or email already in use."})
		default:
			h.logger.Error(c.Request.Context(), "signup failed", "error", err)
			fail(c, http.StatusInternalServerError, "Internal error.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"error": false, "message": "User created."})
}

func (h *Handler) Login(c *gin.Context) {
	login := c.PostForm("username")
	password := c.PostForm("password")

	loginToken, _, err := h.users.Login(c.Request.Context(), login, password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			c.JSON(http.StatusOK, gin.H{"error": true, "message": "User not found."})
		case errors.Is(err, common.ErrBadCredentials):
			c.JSON(http.StatusOK, gin.H{"error": true, "message": "Invalid Username/Password."})
		default:
			h.logger.Error(c.Request.Context(), "login failed", "error", err)
			fail(c, http.StatusInternalServerError, "Internal error.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"error": false, "message": "Logged in.", "token": loginToken})
}

func (h *Handler) GetAccounts(c *gin.Context) {
	user, ok := h.authenticate(c)
	if !ok {
		return
	}

	if err := auth.RequireAdmin(user); err != nil {
		fail(c, http.StatusForbidden, "You are not an admin.")
		return
	}

	list, err := h.users.List(c.Request.Context())
	if err != nil {
		h.logger.Error(c.Request.Context(), "account listing failed", "error", err)
		fail(c, http.StatusInternalServerError, "Internal error.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"error": false, "users": list})
}

// UpdateAccount applies the submitted fields to the caller's own account.
// The quota field is accepted from admins only and silently dropped
// otherwise.
func (h *Handler) UpdateAccount(c *gin.Context) {
	user, ok := h.authenticate(c)
	if !ok {
		return
	}

	var req users.UpdateRequest

	if v, set := c.GetPostForm("username"); set {
		req.Username = &v
	}
	if v, set := c.GetPostForm("email"); set {
		req.Email = &v
	}
	if v, set := c.GetPostForm("password"); set {
		req.Password = &v
	}
	if v, set := c.GetPostForm("quota"); set {
		quota, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid quota.")
			return
		}
		req.Quota = &quota
	}

	updated, err := h.users.Update(c.Request.Context(), user, req)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUsernameTaken):
			fail(c, http.StatusBadRequest, "Username taken.")
		case errors.Is(err, common.ErrEmailTaken):
			fail(c, http.StatusBadRequest, "Email already in use.")
		case errors.Is(err, common.ErrDuplicate):
			fail(c, http.StatusBadRequest, "Username or email already in use.")
		default:
			h.logger.Error(c.Request.Context(), "account update failed", "error", err)
			fail(c, http.StatusInternalServerError, "Internal error.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"error": false, "message": "Account updated.", "user": updated})
}

func (h *Handler) DeleteAccount(c *gin.Context) {
	user, ok := h.authenticate(c)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), user.ID); err != nil {
		h.logger.Error(c.Request.Context(), "account delete failed", "error", err)
		fail(c, http.StatusInternalServerError, "Internal error.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"error": false, "message": "Account deleted."})
}

func (h *Handler) AdminDeleteAccount(c *gin.Context) {
	user, ok := h.authenticate(c)
	if !ok {
		return
	}

	if err := auth.RequireAdmin(user); err != nil {
		fail(c, http.StatusForbidden, "You are not an admin.")
		return
	}

	err := h.users.DeleteByLogin(c.Request.Context(), c.PostForm("username"), c.PostForm("email"))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMissingArgument):
			fail(c, http.StatusBadRequest, "No username or email provided.")
		case errors.Is(err, common.ErrNotFound):
			fail(c, http.StatusNotFound, "User not found.")
		default:
			h.logger.Error(c.Request.Context(), "admin account delete failed", "error", err)
			fail(c, http.StatusInternalServerError, "Internal error.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"error": false, "message": "Account deleted."})
}

func (h *Handler) Logout(c *gin.Context) {
	_, ok := h.authenticate(c)
	if !ok {
		return
	}

	if err := h.users.Logout(c.Request.Context(), token(c)); err != nil {
		h.logger.Error(c.Request.Context(), "logout failed", "error", err)
		fail(c, http.StatusInternalServerError, "Internal error.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"error": false, "message": "Logged out."})
}
