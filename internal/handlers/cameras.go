package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/homehub-dev/homehub/internal/types"
	"github.com/homehub-dev/homehub/internal/utils"
)

const cameraNotFound = "Camera not found"

type CreateCameraRequest struct {
	Name  string  `json:"name" binding:"required,notblank,max=255"`
	HubID *string `json:"hub_id" binding:"omitempty,uuid"`
}

type MotionRequest struct {
	ImageURL string `json:"image_url" binding:"omitempty,url,max=512"`
}

func (h *Handler) CreateCamera(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body CreateCameraRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		badRequest(ctx, err)
		return
	}

	var hubID *string
	if body.HubID != nil {
		parsed, err := uuid.Parse(*body.HubID)
		if err != nil {
			badRequest(ctx, err)
			return
		}

		canonical := parsed.String()
		hubID = &canonical
	}

	camera, err := h.store.CreateCamera(ctx.Request.Context(), userID, strings.TrimSpace(body.Name), hubID)

	if err != nil {
		storeError(ctx, err, hubNotFound)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewCameraResponse(*camera))
}

func (h *Handler) ListCameras(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	cameras, err := h.store.ListCameras(ctx.Request.Context(), userID)

	if err != nil {
		storeError(ctx, err, cameraNotFound)
		return
	}

	response := make([]types.CameraResponse, 0, len(cameras))
	for _, camera := range cameras {
		response = append(response, types.NewCameraResponse(camera))
	}

	ctx.JSON(http.StatusOK, response)
}

// RecordMotion stamps a motion event on a camera, optionally with the URL of
// the captured image.
func (h *Handler) RecordMotion(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	cameraID, err := utils.GetCameraID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid camera ID", types.CodeInvalidRequest)
		return
	}

	var body MotionRequest

	// The body is optional.
	if err := ctx.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		badRequest(ctx, err)
		return
	}

	camera, err := h.store.RecordCameraMotion(ctx.Request.Context(), userID, cameraID, body.ImageURL, h.now())

	if err != nil {
		storeError(ctx, err, cameraNotFound)
		return
	}

	ctx.JSON(http.StatusOK, types.NewCameraResponse(*camera))
}

func (h *Handler) DeleteCamera(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	cameraID, err := utils.GetCameraID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid camera ID", types.CodeInvalidRequest)
		return
	}

	if err := h.store.DeleteCamera(ctx.Request.Context(), userID, cameraID); err != nil {
		storeError(ctx, err, cameraNotFound)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *Handler) ListCameraFamilyMembers(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	cameraID, err := utils.GetCameraID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid camera ID", types.CodeInvalidRequest)
		return
	}

	members, err := h.store.ListCameraFamilyMembers(ctx.Request.Context(), userID, cameraID)

	if err != nil {
		storeError(ctx, err, cameraNotFound)
		return
	}

	response := make([]types.FamilyMemberResponse, 0, len(members))
	for _, member := range members {
		response = append(response, types.NewFamilyMemberResponse(member))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) LinkFamilyMember(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	cameraID, memberID, err := utils.GetCameraMemberID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid camera or family member ID", types.CodeInvalidRequest)
		return
	}

	if err := h.store.LinkFamilyMember(ctx.Request.Context(), userID, cameraID, memberID, h.now()); err != nil {
		storeError(ctx, err, "Camera or family member not found")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *Handler) UnlinkFamilyMember(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	cameraID, memberID, err := utils.GetCameraMemberID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid camera or family member ID", types.CodeInvalidRequest)
		return
	}

	if err := h.store.UnlinkFamilyMember(ctx.Request.Context(), userID, cameraID, memberID); err != nil {
		storeError(ctx, err, "Camera or family member not found")
		return
	}

	ctx.Status(http.StatusNoContent)
}
