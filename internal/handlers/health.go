package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) HealthCheck(ctx *gin.Context) {
	status, code, database := "ok", http.StatusOK, "up"

	if err := h.store.Ping(ctx.Request.Context()); err != nil {
		_ = ctx.Error(err)
		status, code, database = "degraded", http.StatusServiceUnavailable, "down"
	}

	ctx.JSON(code, gin.H{
		"status":    status,
		"message":   "Homehub is running",
		"database":  database,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}
