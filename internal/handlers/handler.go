package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/homehub-dev/homehub/internal/auth"
	"github.com/homehub-dev/homehub/internal/services"
	"github.com/homehub-dev/homehub/internal/store"
	"github.com/homehub-dev/homehub/internal/types"
	"github.com/homehub-dev/homehub/internal/utils"
)

// Handler serves the HTTP API. All dependencies are injected through New.
type Handler struct {
	auth     *auth.Service
	store    *store.Store
	events   *services.Broadcaster
	notifier *services.Notifier
	origins  []string
	now      func() time.Time
	logger   *slog.Logger
}

type Options struct {
	Auth     *auth.Service
	Store    *store.Store
	Events   *services.Broadcaster
	Notifier *services.Notifier
	Origins  []string
	Logger   *slog.Logger
}

func New(opts Options) *Handler {
	registerBindingRules()

	return &Handler{
		auth:     opts.Auth,
		store:    opts.Store,
		events:   opts.Events,
		notifier: opts.Notifier,
		origins:  opts.Origins,
		now:      time.Now,
		logger:   opts.Logger,
	}
}

func respondError(ctx *gin.Context, status int, reason, code string) {
	ctx.AbortWithStatusJSON(status, types.ErrorResponse{Error: reason, Code: code})
}

func badRequest(ctx *gin.Context, err error) {
	_ = ctx.Error(err)
	respondError(ctx, http.StatusBadRequest, "Invalid request", types.CodeInvalidRequest)
}

// storeError maps a store failure onto the response. notFound is the reason
// returned for store.ErrNotFound.
func storeError(ctx *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(ctx, http.StatusNotFound, notFound, types.CodeNotFound)
	case errors.Is(err, store.ErrUnavailable):
		_ = ctx.Error(err)
		respondError(ctx, http.StatusServiceUnavailable, "Service unavailable", types.CodeStoreUnavailable)
	default:
		_ = ctx.Error(err)
		respondError(ctx, http.StatusInternalServerError, "Internal server error", types.CodeInternal)
	}
}

// currentUserID is only reachable behind AuthMiddleware; a miss is a
// routing bug and reported as 401.
func currentUserID(ctx *gin.Context) (string, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "Invalid authentication credentials", types.CodeMissingToken)
		return "", false
	}

	return userID, true
}
