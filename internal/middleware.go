package internal

import (
	"log"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/cors"

	"golf-tracker/internal/apperr"
)

const cookieName = "golf_token"

type claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Auth accepts the session cookie or an "Authorization: Bearer" header.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(cookieName)
		if err != nil || tokenStr == "" {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tokenStr = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if tokenStr == "" {
			fail(c, apperr.Auth(apperr.AuthUnauthenticated))
			return
		}

		tok, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(token *jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !tok.Valid {
			fail(c, apperr.Auth(apperr.AuthInvalidCredentials))
			return
		}

		cl, ok := tok.Claims.(*claims)
		if !ok || cl.UserID == "" {
			fail(c, apperr.Auth(apperr.AuthInvalidCredentials))
			return
		}

		c.Set("uid", cl.UserID)
		c.Set("email", cl.Email)
		c.Next()
	}
}

// Env marks the request context with the deployment environment.
func Env(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxProduction, production)
		c.Next()
	}
}

// Recovery is the last-resort boundary: a panic becomes a generic error
// payload offering the client a retry or a full reload.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		tag := "[panic]"
		if c.GetBool(ctxProduction) {
			tag = "[panic][report]"
		}
		log.Printf("%s %s %s: %v\n%s", tag, c.Request.Method, c.Request.URL.Path, recovered, debug.Stack())
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   apperr.GenericMessage,
			"code":    "internal",
			"actions": []string{"retry", "reload"},
		})
	})
}

// CORS allows the configured front-end origins to call the API with cookies.
func CORS(origins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler
}
