package web

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with the full route table. Paths are
// static except the image id segment; there is no versioned prefix.
func NewRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(h.accessLog())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/api", h.GetHealth)

	router.POST("/auth/signup", h.Signup)
	router.POST("/auth/login", h.Login)
	router.GET("/auth/accounts", h.GetAccounts)
	router.PATCH("/auth/account", h.UpdateAccount)
	router.DELETE("/auth/account", h.DeleteAccount)
	router.DELETE("/admin/auth/account", h.AdminDeleteAccount)
	router.DELETE("/auth/logout", h.Logout)

	router.POST("/images/upload", h.UploadImage)
	router.GET("/images/:id", h.GetImagePage)
	router.GET("/images/:id/raw", h.GetImageRaw)
	router.DELETE("/images/:id", h.DeleteImage)

	router.GET("/sharex", h.GetShareXConfig)

	router.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Not found.")
	})

	return router
}

func (h *Handler) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		h.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
