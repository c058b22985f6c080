package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/homehub-dev/homehub/internal/auth"
	"github.com/homehub-dev/homehub/internal/models"
	"github.com/homehub-dev/homehub/internal/types"
)

type AuthenticatedUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// UserResolver turns a bearer token into the user it was issued for and
// projects that user into the profile kept on the request.
type UserResolver interface {
	ResolveCurrentUser(ctx context.Context, token string) (*models.User, error)
	GetProfile(user *models.User) auth.Profile
}

// AuthMiddleware resolves the bearer token of every request and stores the
// user by value under types.ContextUserKey. Requests without a usable token
// are aborted with 401.
func AuthMiddleware(resolver UserResolver) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, ok := bearerToken(ctx.GetHeader("Authorization"))

		if !ok {
			unauthorized(ctx, "Invalid authentication credentials", types.CodeMissingToken)
			return
		}

		user, err := resolver.ResolveCurrentUser(ctx.Request.Context(), tokenString)

		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidTokenPayload):
				unauthorized(ctx, "Invalid token payload", types.CodeInvalidPayload)
			case errors.Is(err, auth.ErrExpiredToken):
				unauthorized(ctx, "Invalid authentication credentials", types.CodeTokenExpired)
			case errors.Is(err, auth.ErrInvalidToken):
				unauthorized(ctx, "Invalid authentication credentials", types.CodeInvalidToken)
			case errors.Is(err, auth.ErrUserNotFound):
				unauthorized(ctx, "User not found", types.CodeUserNotFound)
			case errors.Is(err, auth.ErrStoreUnavailable):
				_ = ctx.Error(err)
				ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, types.ErrorResponse{
					Error: "Service unavailable",
					Code:  types.CodeStoreUnavailable,
				})
			default:
				_ = ctx.Error(err)
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, types.ErrorResponse{
					Error: "Internal server error",
					Code:  types.CodeInternal,
				})
			}
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser(resolver.GetProfile(user)))
		ctx.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")

	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

func unauthorized(ctx *gin.Context, reason, code string) {
	ctx.Header("WWW-Authenticate", "Bearer")
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.ErrorResponse{Error: reason, Code: code})
}
