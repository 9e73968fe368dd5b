package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"promptvault-backend/internal/models"
	"promptvault-backend/internal/services"
	"promptvault-backend/internal/utils"
)

var errInvalidSubject = errors.New("token has no subject")

func resolveUser(c *gin.Context) (models.User, error) {
	tokenString, err := utils.ExtractToken(c)
	if err != nil {
		return models.User{}, err
	}

	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		return models.User{}, err
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return models.User{}, errInvalidSubject
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	// First sign-in creates the user row; the engine trusts the verified token.
	return services.FindOrCreateUserBySubject(subject, email, name)
}

// AuthMiddleware requires a verified identity and puts the user on the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolveUser(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "invalid or missing token"))
			c.Abort()
			return
		}
		c.Set("user", user)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the identity when one is presented and
// proceeds anonymously otherwise, for read paths that admit public content.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := resolveUser(c); err == nil {
			c.Set("user", user)
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated caller's ID, or 0 for anonymous.
func CurrentUserID(c *gin.Context) uint {
	if val, ok := c.Get("user"); ok {
		if user, ok := val.(models.User); ok {
			return user.ID
		}
	}
	return 0
}
