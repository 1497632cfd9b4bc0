package internal

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func Login(store *PGStore, secret string, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}

		acc, err := store.AccountByUsername(c.Request.Context(), req.Username)
		if err != nil {
			fail(c, ErrBadCredentials)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(acc.PassHash), []byte(req.Password)) != nil {
			fail(c, ErrBadCredentials)
			return
		}

		// Accounts without a member record (fresh installs) still get a
		// token, with guest access only.
		memberID := 0
		roles := []string{RoleGuest}
		if m, err := store.MemberByAccount(c.Request.Context(), acc.ID); err == nil {
			memberID = m.ID
			roles = m.Roles
		} else if !errors.Is(err, ErrNotFound) {
			fail(c, err)
			return
		}

		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
			AccountID: acc.ID,
			MemberID:  memberID,
			Roles:     roles,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				Issuer:    "club-platform",
			},
		})
		s, _ := tok.SignedString([]byte(secret))

		c.SetCookie(cookieName, s, 86400, "/", "", secureCookie, true)

		store.LogAction(c.Request.Context(), &acc.ID, "login", "success")
		c.JSON(200, gin.H{"ok": true})
	}
}

func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie(cookieName, "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func ChangePassword(store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Old  string `json:"old_password"`
			New  string `json:"new_password"`
			New2 string `json:"new_password2"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}
		if req.New != req.New2 {
			c.JSON(400, gin.H{"error": "passwords do not match"})
			return
		}
		if len(req.New) < 6 {
			c.JSON(400, gin.H{"error": "password too short"})
			return
		}

		id := accountID(c)
		acc, err := store.Account(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(acc.PassHash), []byte(req.Old)) != nil {
			fail(c, ErrBadCredentials)
			return
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte(req.New), bcrypt.DefaultCost)
		if err := store.SetPassword(c.Request.Context(), id, string(hash)); err != nil {
			fail(c, err)
			return
		}
		store.LogAction(c.Request.Context(), &id, "change_password", "success")
		c.JSON(200, gin.H{"ok": true})
	}
}
