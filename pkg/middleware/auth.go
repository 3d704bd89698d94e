package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/richxcame/expense-tracker/pkg/common"
	"github.com/richxcame/expense-tracker/pkg/logger"
)

// UserIDKey is the gin context key holding the authenticated user's uuid.UUID
const UserIDKey = "user_id"

// ErrNoUser is returned by GetUserID when the request is not authenticated
var ErrNoUser = errors.New("user not authenticated")

// Claims are the JWT claims issued by the account service. Tokens are only
// verified here.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifies an HS256 bearer token signed with secret and stores
// the user id in the gin and request contexts.
func AuthMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid || claims.UserID == uuid.Nil {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set("email", claims.Email)
		c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), claims.UserID.String()))

		c.Next()
	}
}

// GetUserID returns the authenticated user's id. Handlers tests may set it as
// either a uuid.UUID or its string form.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, ErrNoUser
	}

	switch id := value.(type) {
	case uuid.UUID:
		return id, nil
	case string:
		parsed, err := uuid.Parse(id)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid user id: %w", err)
		}
		return parsed, nil
	default:
		return uuid.Nil, ErrNoUser
	}
}
