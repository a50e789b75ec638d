package middleware

import (
	"strings"

	"github.com/Mykyta-Harashchenko/contacthub/internal/models"
	"github.com/Mykyta-Harashchenko/contacthub/internal/services"
	"github.com/Mykyta-Harashchenko/contacthub/pkg/response"
	"github.com/gin-gonic/gin"
)

const ContextUser = "current_user"

// RequireAuth resolves the bearer access token to a user and stores it in
// the request context. Requests without a valid access token are rejected.
func RequireAuth(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, response.NewUnauthorized("authorization header required"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, response.NewUnauthorized("invalid authorization header format"))
			c.Abort()
			return
		}

		user, err := auth.CurrentUser(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUser, user)
		c.Next()
	}
}

// CurrentUser gets the authenticated user from context. Returns nil outside
// a RequireAuth-protected route.
func CurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(ContextUser); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
