package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nature-animaux/internal/domain"
	cartrepo "nature-animaux/internal/repository/cart"
)

const (
	sessionHeader = "X-Session-Token"

	ctxUserKey  = "authUser"
	ctxOwnerKey = "cartOwner"
)

// identityMiddleware resolves the cart owner for the request: a user from a
// bearer token when one is presented, otherwise an anonymous session token
// from the X-Session-Token header. A missing or dead session token gets a
// fresh one, echoed back in the response header.
func identityMiddleware(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token := strings.TrimPrefix(auth, "Bearer ")
			u, err := deps.UserSvc.Authenticate(c.Request.Context(), token)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			c.Set(ctxUserKey, u)
			c.Set(ctxOwnerKey, cartrepo.OwnerKey{UserID: &u.ID})
			c.Next()
			return
		}

		token := c.GetHeader(sessionHeader)
		ok, err := deps.Sessions.Validate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if !ok {
			token, err = deps.Sessions.Issue(c.Request.Context())
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
			c.Header(sessionHeader, token)
		}
		c.Set(ctxOwnerKey, cartrepo.OwnerKey{SessionID: &token})
		c.Next()
	}
}

// requireUser rejects requests that did not authenticate as a user.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ctxUserKey); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

func ownerFromContext(c *gin.Context) cartrepo.OwnerKey {
	if v, ok := c.Get(ctxOwnerKey); ok {
		if owner, ok := v.(cartrepo.OwnerKey); ok {
			return owner
		}
	}
	return cartrepo.OwnerKey{}
}

func userFromContext(c *gin.Context) *domain.User {
	if v, ok := c.Get(ctxUserKey); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}
