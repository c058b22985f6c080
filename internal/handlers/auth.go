package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/homehub-dev/homehub/internal/auth"
	"github.com/homehub-dev/homehub/internal/types"
	"github.com/homehub-dev/homehub/internal/utils"
)

type SignupRequest struct {
	Username string `json:"username" binding:"required,notblank,max=255"`
	Password string `json:"password" binding:"required,max=72"`
	FullName string `json:"full_name" binding:"max=255"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required,notblank,max=255"`
	Password string `json:"password" binding:"required,max=72"`
}

func (h *Handler) Signup(ctx *gin.Context) {
	var body SignupRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		badRequest(ctx, err)
		return
	}

	token, err := h.auth.Signup(ctx.Request.Context(), strings.TrimSpace(body.Username), body.Password, strings.TrimSpace(body.FullName))

	if err != nil {
		if errors.Is(err, auth.ErrDuplicateUsername) {
			respondError(ctx, http.StatusBadRequest, "Username already registered", types.CodeDuplicateUsername)
			return
		}
		authError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.TokenResponse{AccessToken: token.AccessToken, TokenType: token.TokenType})
}

func (h *Handler) Login(ctx *gin.Context) {
	var body LoginRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		badRequest(ctx, err)
		return
	}

	token, err := h.auth.Login(ctx.Request.Context(), strings.TrimSpace(body.Username), body.Password)

	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			ctx.Header("WWW-Authenticate", "Bearer")
			respondError(ctx, http.StatusUnauthorized, "Incorrect username or password", types.CodeInvalidCredentials)
			return
		}
		authError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.TokenResponse{AccessToken: token.AccessToken, TokenType: token.TokenType})
}

func (h *Handler) Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "Invalid authentication credentials", types.CodeMissingToken)
		return
	}

	ctx.JSON(http.StatusOK, types.UserResponse{
		ID:       currentUser.ID,
		Username: currentUser.Username,
		FullName: currentUser.FullName,
	})
}

func authError(ctx *gin.Context, err error) {
	_ = ctx.Error(err)

	if errors.Is(err, auth.ErrStoreUnavailable) {
		respondError(ctx, http.StatusServiceUnavailable, "Service unavailable", types.CodeStoreUnavailable)
		return
	}

	respondError(ctx, http.StatusInternalServerError, "Internal server error", types.CodeInternal)
}
