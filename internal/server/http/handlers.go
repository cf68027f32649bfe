// Package http exposes the server's JSON API over gin: account registration
// and login, token refresh, record writes, and presigned blob uploads.
package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trailfield/trailfield/internal/common"
	"github.com/trailfield/trailfield/internal/logging"
	"github.com/trailfield/trailfield/internal/server/services"
)

type Handler struct {
	users   *services.UserService
	records *services.RecordService
	blobs   *services.BlobService
	logger  logging.Logger
}

func NewHandler(users *services.UserService, records *services.RecordService, blobs *services.BlobService, logger logging.Logger) *Handler {
	return &Handler{users: users, records: records, blobs: blobs, logger: logger}
}

type registerRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Email       string `json:"email" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password, req.Email, req.DisplayName)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "username taken"})
			return
		}
		h.logger.Error(c.Request.Context(), "register failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	user, pair, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.logger.Error(c.Request.Context(), "login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"owner": gin.H{
			"id":           user.ID,
			"email":        user.Email,
			"display_name": user.DisplayName,
		},
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	pair, err := h.users.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) || errors.Is(err, common.ErrRefreshTokenExpired) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}
		h.logger.Error(c.Request.Context(), "refresh failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateRecord stores the raw request body as one record in the named
// collection. Oversized bodies get 413 and are not stored.
func (h *Handler) CreateRecord(c *gin.Context) {
	userID := UserIDFromContext(c)
	collection := c.Param("collection")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	id, err := h.records.Create(c.Request.Context(), userID, collection, body)
	if err != nil {
		if errors.Is(err, common.ErrPayloadTooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": common.ErrPayloadTooLarge.Error()})
			return
		}
		h.logger.Error(c.Request.Context(), "record create failed", "error", err, "collection", collection)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *Handler) PresignUpload(c *gin.Context) {
	userID := UserIDFromContext(c)

	target, err := h.blobs.GetPresignedPutURL(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error(c.Request.Context(), "presign failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":        target.Key,
		"put_url":    target.PutURL,
		"public_url": target.PublicURL,
	})
}
