package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/homehub-dev/homehub/internal/models"
	"github.com/homehub-dev/homehub/internal/store"
	"github.com/homehub-dev/homehub/internal/types"
	"github.com/homehub-dev/homehub/internal/utils"
)

const hubNotFound = "Hub not found"

type HubRequest struct {
	Name string `json:"name" binding:"required,notblank,max=255"`
}

type TelemetryRequest struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity" binding:"omitempty,min=0,max=100"`
	AlarmState  bool     `json:"alarm_state"`
}

func (h *Handler) CreateHub(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body HubRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		badRequest(ctx, err)
		return
	}

	hub, err := h.store.CreateHub(ctx.Request.Context(), userID, strings.TrimSpace(body.Name), h.now())

	if err != nil {
		storeError(ctx, err, hubNotFound)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewHubResponse(*hub))
}

func (h *Handler) ListHubs(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	hubs, err := h.store.ListHubs(ctx.Request.Context(), userID)

	if err != nil {
		storeError(ctx, err, hubNotFound)
		return
	}

	response := make([]types.HubResponse, 0, len(hubs))
	for _, hub := range hubs {
		response = append(response, types.NewHubResponse(hub))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) GetHub(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	hubID, err := utils.GetHubID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid hub ID", types.CodeInvalidRequest)
		return
	}

	hub, err := h.store.GetHub(ctx.Request.Context(), userID, hubID)

	if err != nil {
		storeError(ctx, err, hubNotFound)
		return
	}

	ctx.JSON(http.StatusOK, types.NewHubResponse(*hub))
}

func (h *Handler) UpdateHub(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	hubID, err := utils.GetHubID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid hub ID", types.CodeInvalidRequest)
		return
	}

	var body HubRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		badRequest(ctx, err)
		return
	}

	hub, err := h.store.RenameHub(ctx.Request.Context(), userID, hubID, strings.TrimSpace(body.Name))

	if err != nil {
		storeError(ctx, err, hubNotFound)
		return
	}

	h.events.PublishHub(*hub)

	ctx.JSON(http.StatusOK, types.NewHubResponse(*hub))
}

func (h *Handler) DeleteHub(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	hubID, err := utils.GetHubID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid hub ID", types.CodeInvalidRequest)
		return
	}

	if err := h.store.DeleteHub(ctx.Request.Context(), userID, hubID); err != nil {
		storeError(ctx, err, hubNotFound)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// ReportTelemetry records a reading from a hub and counts as its heartbeat.
func (h *Handler) ReportTelemetry(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	hubID, err := utils.GetHubID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid hub ID", types.CodeInvalidRequest)
		return
	}

	var body TelemetryRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		badRequest(ctx, err)
		return
	}

	report, err := h.store.RecordHubTelemetry(ctx.Request.Context(), userID, hubID, store.Telemetry{
		Temperature: body.Temperature,
		Humidity:    body.Humidity,
		AlarmState:  body.AlarmState,
	}, h.now())

	if err != nil {
		storeError(ctx, err, hubNotFound)
		return
	}

	h.events.PublishHub(report.Hub)

	if report.AlarmRaised && h.notifier.Enabled() {
		go h.notifyAlarm(report.Hub)
	}

	ctx.JSON(http.StatusOK, types.NewHubResponse(report.Hub))
}

// notifyAlarm runs outside the request; the notifier's client timeout bounds it.
func (h *Handler) notifyAlarm(hub models.Hub) {
	if err := h.notifier.NotifyAlarm(context.Background(), hub); err != nil {
		h.logger.Warn("alarm notification failed",
			slog.String("hub_id", hub.ID),
			slog.Any("error", err),
		)
	}
}
