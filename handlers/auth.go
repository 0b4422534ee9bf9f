package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lbin817/MSE/config"
	"github.com/lbin817/MSE/models"
	"github.com/lbin817/MSE/utils"
)

// AuthHandler checks the shared admin credential and issues the session
// token. There is exactly one admin identity; no user table exists.
type AuthHandler struct {
	Cfg *config.Config
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !utils.SecureCompare(req.Username, h.Cfg.AdminUsername) || !h.passwordOK(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateAccessToken(h.Cfg.JWTSecret, req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.SetCookie("admin_token", token, int(utils.AccessTokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(utils.AccessTokenTTL.Seconds()),
	})
}

func (h *AuthHandler) passwordOK(password string) bool {
	if h.Cfg.AdminPasswordHash != "" {
		return utils.CheckPassword(password, h.Cfg.AdminPasswordHash)
	}
	return utils.SecureCompare(password, h.Cfg.AdminPassword)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie("admin_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
