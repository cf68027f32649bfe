package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter assembles the public API. Everything under the authorized group
// requires a valid Bearer access token.
func NewRouter(h *Handler, secretKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.POST("/refresh", h.Refresh)
		api.GET("/ping", h.Ping)
	}

	authorized := r.Group("/api")
	authorized.Use(Auth(secretKey))
	{
		authorized.POST("/records/:collection", h.CreateRecord)
		authorized.POST("/uploads/presign", h.PresignUpload)
	}

	return r
}
