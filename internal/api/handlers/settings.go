package handlers

import (
	"net/http"

	"catalogimport/internal/config"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settings config.Settings
}

func NewSettingsHandler(settings config.Settings) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.settings})
}
