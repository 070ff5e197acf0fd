package middlewares

import (
	"log"
	"os"
	"strconv"
	"strings"

	"boxoffice/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

// SetJWTKey overrides the signing key (tests set it before building tokens).
func SetJWTKey(key []byte) {
	jwtKey = key
}

// AuthMiddleware extracts the authenticated user id from the bearer token.
// Identity is owned by the external provider; the subject claim is trusted as
// an opaque numeric user id and nothing more.
func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer ") {
		ctx.AbortWithStatus(401)
		return
	}
	reqToken := strings.Split(bearerToken, " ")[1]
	if reqToken == "" {
		ctx.AbortWithStatus(401)
		return
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		ctx.AbortWithStatus(401)
		return
	}
	if !tkn.Valid {
		ctx.AbortWithStatus(401)
		return
	}
	uid, err := strconv.Atoi(claims.Subject)
	if err != nil || uid < 1 {
		log.Println("error parsing claims subject")
		ctx.AbortWithStatus(401)
		return
	}
	ctx.Set("id", uint(uid))
	ctx.Set("email", claims.Email)
}
