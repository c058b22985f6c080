package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/homehub-dev/homehub/internal/types"
	"github.com/homehub-dev/homehub/internal/utils"
)

const deviceNotFound = "Device not found"

type CreateDeviceRequest struct {
	Name       string `json:"name" binding:"required,notblank,max=255"`
	DeviceType string `json:"device_type" binding:"required,notblank,max=255"`
}

type UpdateDeviceRequest struct {
	Status string `json:"status" binding:"required,notblank,max=255"`
}

func (h *Handler) CreateDevice(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	hubID, err := utils.GetHubID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid hub ID", types.CodeInvalidRequest)
		return
	}

	var body CreateDeviceRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		badRequest(ctx, err)
		return
	}

	device, err := h.store.CreateDevice(ctx.Request.Context(), userID, hubID, strings.TrimSpace(body.Name), strings.TrimSpace(body.DeviceType), h.now())

	if err != nil {
		storeError(ctx, err, hubNotFound)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewDeviceResponse(*device))
}

func (h *Handler) ListDevices(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	hubID, err := utils.GetHubID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid hub ID", types.CodeInvalidRequest)
		return
	}

	devices, err := h.store.ListDevices(ctx.Request.Context(), userID, hubID)

	if err != nil {
		storeError(ctx, err, hubNotFound)
		return
	}

	response := make([]types.DeviceResponse, 0, len(devices))
	for _, device := range devices {
		response = append(response, types.NewDeviceResponse(device))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) UpdateDevice(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	hubID, deviceID, err := utils.GetHubDeviceID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid hub or device ID", types.CodeInvalidRequest)
		return
	}

	var body UpdateDeviceRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		badRequest(ctx, err)
		return
	}

	device, err := h.store.UpdateDeviceStatus(ctx.Request.Context(), userID, hubID, deviceID, strings.TrimSpace(body.Status), h.now())

	if err != nil {
		storeError(ctx, err, deviceNotFound)
		return
	}

	ctx.JSON(http.StatusOK, types.NewDeviceResponse(*device))
}

func (h *Handler) DeleteDevice(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	hubID, deviceID, err := utils.GetHubDeviceID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid hub or device ID", types.CodeInvalidRequest)
		return
	}

	if err := h.store.DeleteDevice(ctx.Request.Context(), userID, hubID, deviceID); err != nil {
		storeError(ctx, err, deviceNotFound)
		return
	}

	ctx.Status(http.StatusNoContent)
}
