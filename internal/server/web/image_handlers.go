package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/image-cloud/api/internal/common"
)

func contentTypeFor(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

func (h *Handler) imageURL(id string) string {
	return fmt.Sprintf("%s/images/%s/raw", strings.TrimRight(h.cfg.PublicBaseURL, "/"), id)
}

func (h *Handler) deletionURL(id string) string {
	return fmt.Sprintf("%s/images/%s", strings.TrimRight(h.cfg.PublicBaseURL, "/"), id)
}

// UploadImage accepts a multipart upload in the "file" field (the name the
// generated ShareX config uses) and runs it through the quota pipeline.
func (h *Handler) UploadImage(c *gin.Context) {
	user, ok := h.authenticate(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "No file provided.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error(c.Request.Context(), "upload read failed", "error", err)
		fail(c, http.StatusInternalServerError, "Internal error.")
		return
	}

	image, err := h.images.Upload(c.Request.Context(), user, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNoFile):
			fail(c, http.StatusBadRequest, "No file provided.")
		case errors.Is(err, common.ErrBadExtension):
			fail(c, http.StatusBadRequest, "Invalid file extension.")
		case errors.Is(err, common.ErrBadContentType):
			fail(c, http.StatusBadRequest, "Invalid file type.")
		case errors.Is(err, common.ErrContentTooLarge):
			fail(c, http.StatusRequestEntityTooLarge, "File too large. Max is 50MB.")
		case errors.Is(err, common.ErrQuotaExceeded):
			fail(c, http.StatusRequestEntityTooLarge, "File too large.")
		default:
			h.logger.Error(c.Request.Context(), "upload failed", "error", err)
			fail(c, http.StatusInternalServerError, "Internal error.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":        false,
		"message":      "Image uploaded.",
		"image":        image,
		"url":          h.imageURL(image.ID),
		"deletion_url": h.deletionURL(image.ID),
	})
}

// GetImagePage serves the HTML share page embedding the raw-content URL.
func (h *Handler) GetImagePage(c *gin.Context) {
	image, err := h.images.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			fail(c, http.StatusNotFound, "Image not found.")
			return
		}
		h.logger.Error(c.Request.Context(), "image lookup failed", "error", err)
		fail(c, http.StatusInternalServerError, "Internal error.")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(http.StatusOK)
	if err := sharePage.Execute(c.Writer, sharePageData{
		Name: image.Filename,
		URL:  h.imageURL(image.ID),
	}); err != nil {
		h.logger.Error(c.Request.Context(), "share page render failed", "error", err)
	}
}

// GetImageRaw serves the stored bytes with the image content type.
func (h *Handler) GetImageRaw(c *gin.Context) {
	image, data, err := h.images.Content(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			fail(c, http.StatusNotFound, "Image not found.")
			return
		}
		h.logger.Error(c.Request.Context(), "image content fetch failed", "error", err)
		fail(c, http.StatusInternalServerError, "Internal error.")
		return
	}

	c.Data(http.StatusOK, contentTypeFor(image.Filename), data)
}

func (h *Handler) DeleteImage(c *gin.Context) {
	user, ok := h.authenticate(c)
	if !ok {
		return
	}

	if err := h.images.Delete(c.Request.Context(), user, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			fail(c, http.StatusNotFound, "Image not found.")
		case errors.Is(err, common.ErrNotOwner):
			fail(c, http.StatusForbidden, "You cannot delete this image.")
		default:
			h.logger.Error(c.Request.Context(), "image delete failed", "error", err)
			fail(c, http.StatusInternalServerError, "Internal error.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"error": false, "message": "Image deleted."})
}

// GetShareXConfig renders an uploader config for the caller's token, ready
// to import into ShareX.
func (h *Handler) GetShareXConfig(c *gin.Context) {
	_, ok := h.authenticate(c)
	if !ok {
		return
	}

	base := strings.TrimRight(h.cfg.PublicBaseURL, "/")

	c.Header("Content-Disposition", `attachment; filename="image-cloud.sxcu"`)
	c.Data(http.StatusOK, "application/json", []byte(fmt.Sprintf(sharexConfigFormat, base, token(c))))
}
