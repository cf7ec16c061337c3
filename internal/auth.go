package internal

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"golf-tracker/internal/apperr"
	"golf-tracker/internal/golf"
)

const sessionTTL = 24 * time.Hour

type registerRequest struct {
	Name            string   `json:"name" binding:"required,max=50"`
	Email           string   `json:"email" binding:"required,email"`
	Password        string   `json:"password" binding:"required,min=6,max=128"`
	ConfirmPassword string   `json:"confirmPassword" binding:"required,eqfield=Password"`
	Handicap        *float64 `json:"handicap" binding:"omitempty,min=-10,max=54"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Register(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.FromValidator(err))
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
		if err != nil {
			fail(c, apperr.Auth(apperr.AuthWeakPassword))
			return
		}

		now := d.now()
		u := golf.User{
			ID:          uuid.NewString(),
			Email:       strings.ToLower(strings.TrimSpace(req.Email)),
			Name:        strings.TrimSpace(req.Name),
			Preferences: golf.DefaultPreferences(),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if req.Handicap != nil {
			u.Handicap = *req.Handicap
		}
		if err := d.Users.CreateUser(c.Request.Context(), &u, string(hash)); err != nil {
			fail(c, err)
			return
		}

		d.Audit.Log(c.Request.Context(), u.ID, "register", "user registered")
		if err := setSession(c, d, u); err != nil {
			fail(c, err)
			return
		}
		c.JSON(201, u)
	}
}

func Login(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.FromValidator(err))
			return
		}

		u, passHash, disabled, err := d.Users.UserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
		if apperr.Classify(err) == apperr.KindNotFound {
			fail(c, apperr.Auth(apperr.AuthUserNotFound))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}
		if disabled {
			fail(c, apperr.Auth(apperr.AuthUserDisabled))
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(passHash), []byte(req.Password)) != nil {
			d.Audit.Log(c.Request.Context(), u.ID, "login", "wrong password")
			fail(c, apperr.Auth(apperr.AuthWrongPassword))
			return
		}

		if err := setSession(c, d, u); err != nil {
			fail(c, err)
			return
		}
		d.Audit.Log(c.Request.Context(), u.ID, "login", "success")
		c.JSON(200, u)
	}
}

func Logout(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie(cookieName, "", -1, "/", "", d.CookieSecure, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// setSession issues the session token both as an httpOnly cookie and in the
// X-Auth-Token header for clients that cannot keep cookies.
func setSession(c *gin.Context, d *Deps, u golf.User) error {
	now := d.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "golf-tracker",
			Subject:   u.ID,
		},
	})
	s, err := tok.SignedString([]byte(d.Secret))
	if err != nil {
		return err
	}
	c.SetCookie(cookieName, s, int(sessionTTL.Seconds()), "/", "", d.CookieSecure, true)
	c.Header("X-Auth-Token", s)
	return nil
}
