package internal

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const cookieName = "club_token"

type claims struct {
	AccountID int      `json:"uid"`
	MemberID  int      `json:"mid"`
	Roles     []string `json:"roles"`
	jwt.RegisteredClaims
}

func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(cookieName)
		if err != nil || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}

		tok, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(token *jwt.Token) (any, error) {
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bad token"})
			return
		}

		cl, ok := tok.Claims.(*claims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bad claims"})
			return
		}

		c.Set("uid", cl.AccountID)
		c.Set("mid", cl.MemberID)
		c.Set("roles", cl.Roles)
		c.Next()
	}
}

// RequireAllowed gates the route on the role hierarchy: any of the caller's
// roles holding the privilege on the resource lets the request through.
func RequireAllowed(acl *Authorizer, resource, privilege string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !acl.Allowed(rolesOf(c), resource, privilege) {
			fail(c, ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

func accountID(c *gin.Context) int {
	v, _ := c.Get("uid")
	return v.(int)
}

func memberID(c *gin.Context) int {
	v, _ := c.Get("mid")
	return v.(int)
}

func rolesOf(c *gin.Context) []string {
	v, _ := c.Get("roles")
	roles, _ := v.([]string)
	return roles
}
