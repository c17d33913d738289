package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

// ErrUnauthenticated means the caller presented no usable identity: a bad
// token or a subject with no mapped user row.
var ErrUnauthenticated = errors.New("unauthenticated")

// Authenticator validates bearer tokens from the identity provider and
// maps the token subject to a local user row.
type Authenticator struct {
	secret []byte
	users  repositories.UserRepository
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(secret string, users repositories.UserRepository) *Authenticator {
	return &Authenticator{secret: []byte(secret), users: users}
}

// Authenticate verifies the token and resolves the caller's user row.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (models.User, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return models.User{}, ErrUnauthenticated
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return models.User{}, ErrUnauthenticated
	}

	user, err := a.users.GetByExternalID(ctx, subject)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return models.User{}, ErrUnauthenticated
	}
	return user, err
}

// Middleware validates the Authorization header and stores the caller id
// in the request context.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization", "kind": "unauthenticated"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header", "kind": "unauthenticated"})
			return
		}

		user, err := a.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "kind": "unauthenticated"})
			return
		}

		c.Set("userID", user.ID)
		c.Next()
	}
}
