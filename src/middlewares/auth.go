package middlewares

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"ers/src/lib"
	"ers/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

func jwtKey() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// AuthMiddleware guards the admin surface: a Bearer token signed by us,
// carrying the admin role, and not revoked by logout.
func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	parts := strings.Split(bearerToken, " ")
	if len(parts) != 2 || parts[1] == "" {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	reqToken := parts[1]
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey(), nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if !tkn.Valid || claims.Role != "admin" {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if TokenRevoked(reqToken) {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	ctx.Set("role", claims.Role)
	ctx.Set("token", reqToken)
}

// TokenRevoked consults the logout denylist. Without redis there is no
// denylist and tokens simply expire.
func TokenRevoked(token string) bool {
	rd := lib.GetRedisClient()
	if rd == nil {
		return false
	}
	n, err := rd.Exists(context.Background(), revokedKey(token)).Result()
	if err != nil {
		log.Printf("Error checking token denylist: %s\n", err.Error())
		return false
	}
	return n > 0
}

func RevokeToken(token string, ttlSeconds int64) {
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	if err := rd.SetEx(context.Background(), revokedKey(token), "1", time.Duration(ttlSeconds)*time.Second).Err(); err != nil {
		log.Printf("Error adding token to denylist: %s\n", err.Error())
	}
}

func revokedKey(token string) string {
	return fmt.Sprintf("tokens:revoked:%s", token)
}
