package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/simpleblog/models"
	"github.com/cppla/simpleblog/services"
	"github.com/cppla/simpleblog/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUserKey stores the authenticated *models.User.
	ContextUserKey = "user"
	// ContextTokenKey stores the access token the request was authorized with.
	ContextTokenKey = "access_token"
)

// AuthRequired resolves the Authorization header to a user or aborts with 401.
func AuthRequired(auth *services.AuthService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := extractToken(ctx.GetHeader("Authorization"))
		if token == "" {
			utils.Abort(ctx, services.ErrUnauthorized)
			return
		}

		user, err := auth.Authorize(ctx.Request.Context(), token)
		if err != nil {
			utils.Abort(ctx, err)
			return
		}

		ctx.Set(ContextUserIDKey, user.ID)
		ctx.Set(ContextUserKey, user)
		ctx.Set(ContextTokenKey, token)
		ctx.Next()
	}
}

// extractToken accepts either the raw token or "Bearer <token>". The token itself is
// taken verbatim so that any alteration fails the exact match.
func extractToken(header string) string {
	if header == "" {
		return ""
	}
	if scheme, rest, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return rest
	}
	return header
}

// CurrentUserID returns the id stored by AuthRequired.
func CurrentUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// CurrentUser returns the user stored by AuthRequired.
func CurrentUser(ctx *gin.Context) (*models.User, bool) {
	value, exists := ctx.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// CurrentToken returns the access token stored by AuthRequired.
func CurrentToken(ctx *gin.Context) string {
	return ctx.GetString(ContextTokenKey)
}
