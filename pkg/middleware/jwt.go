package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// OperatorClaims identifies the operator behind a protected request.
type OperatorClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

func jwtKey() []byte {
	return []byte(os.Getenv("ADMIN_JWT_SECRET"))
}

// JWTMiddleware guards the operator endpoints. With no secret configured the
// surface is left open, matching a deployment that has not set up operator
// auth yet.
func JWTMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := jwtKey()
		if len(key) == 0 {
			return next(c)
		}

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing Token"})
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		claims := &OperatorClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil || !token.Valid {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid Token"})
		}
		c.Set("operator", claims)
		return next(c)
	}
}
