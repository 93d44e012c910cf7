package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-api/internal/domain"
	"marketplace-api/internal/service"
)

const principalKey = "auth_principal"

// AuthMiddleware resuelve el bearer token de la request a una cuenta
// y la deja en el contexto como principal. Corre antes que cualquier
// handler protegido, asi que ninguna mutacion ocurre sin autenticar.
func AuthMiddleware(userServ *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := userServ.ResolveToken(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			if errors.Is(err, service.ErrMissingToken) || errors.Is(err, service.ErrInvalidToken) {
				c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			}
			c.Abort()
			return
		}

		c.Set(principalKey, user)
		c.Next()
	}
}

// GetPrincipal obtiene la cuenta autenticada desde el contexto.
func GetPrincipal(c *gin.Context) (domain.User, bool) {
	val, ok := c.Get(principalKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}
