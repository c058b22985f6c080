package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/homehub-dev/homehub/internal/types"
	"github.com/homehub-dev/homehub/internal/utils"
)

const (
	familyMemberNotFound = "Family member not found"

	// maxFaceEncoding bounds the decoded encoding.
	maxFaceEncoding = 16 << 10
)

type CreateFamilyMemberRequest struct {
	Name         string `json:"name" binding:"required,notblank,max=255"`
	ImageURL     string `json:"image_url" binding:"omitempty,url,max=512"`
	FaceEncoding string `json:"face_encoding" binding:"omitempty,base64"`
}

func (h *Handler) CreateFamilyMember(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var body CreateFamilyMemberRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		badRequest(ctx, err)
		return
	}

	encoding, err := base64.StdEncoding.DecodeString(body.FaceEncoding)

	if err != nil {
		badRequest(ctx, err)
		return
	}

	if len(encoding) > maxFaceEncoding {
		badRequest(ctx, errors.New("face encoding too large"))
		return
	}

	member, err := h.store.CreateFamilyMember(ctx.Request.Context(), userID, strings.TrimSpace(body.Name), body.ImageURL, encoding)

	if err != nil {
		storeError(ctx, err, familyMemberNotFound)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewFamilyMemberResponse(*member))
}

func (h *Handler) ListFamilyMembers(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	members, err := h.store.ListFamilyMembers(ctx.Request.Context(), userID)

	if err != nil {
		storeError(ctx, err, familyMemberNotFound)
		return
	}

	response := make([]types.FamilyMemberResponse, 0, len(members))
	for _, member := range members {
		response = append(response, types.NewFamilyMemberResponse(member))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) DeleteFamilyMember(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	memberID, err := utils.GetMemberID(ctx)

	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid family member ID", types.CodeInvalidRequest)
		return
	}

	if err := h.store.DeleteFamilyMember(ctx.Request.Context(), userID, memberID); err != nil {
		storeError(ctx, err, familyMemberNotFound)
		return
	}

	ctx.Status(http.StatusNoContent)
}
