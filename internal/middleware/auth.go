package middleware

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"obrafin/internal/access"
	"obrafin/pkg/apperror"
	"obrafin/pkg/response"
	"obrafin/pkg/token"

	"github.com/gin-gonic/gin"
)

const (
	principalKey = "principal"
	// AccessCookie carries the session token for browser clients.
	AccessCookie = "access_token"
)

func abort(c *gin.Context, err error) {
	status, res := response.FromError(err)
	c.AbortWithStatusJSON(status, res)
}

// bearer extracts the token from the Authorization header, falling back to the cookie.
func bearer(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(AccessCookie); err == nil {
		return cookie
	}
	return ""
}

// Authenticate validates the token and stores the caller's principal in the context.
func Authenticate(tokens *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c)
		if raw == "" {
			abort(c, apperror.Unauthenticated("token não fornecido"))
			return
		}

		claims, err := tokens.ValidateToken(raw)
		if err != nil {
			abort(c, apperror.InvalidCredential("token inválido"))
			return
		}
		userID, _ := claims.UserID()

		c.Set(principalKey, access.Principal{UserID: userID, Role: claims.Role})
		c.Next()
	}
}

// OptionalAuthenticate records the principal when a valid token is present.
// Anonymous requests, and requests with an unusable token, pass through without one.
func OptionalAuthenticate(tokens *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := bearer(c); raw != "" {
			if claims, err := tokens.ValidateToken(raw); err == nil {
				userID, _ := claims.UserID()
				c.Set(principalKey, access.Principal{UserID: userID, Role: claims.Role})
			}
		}
		c.Next()
	}
}

// RequireRole lets through only principals holding one of roles. It must run after Authenticate.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok {
			abort(c, apperror.Unauthenticated("token não fornecido"))
			return
		}
		if !slices.Contains(roles, p.Role) {
			abort(c, apperror.Forbidden("permissão insuficiente"))
			return
		}
		c.Next()
	}
}

// Principal returns the authenticated caller, if any.
func Principal(c *gin.Context) (access.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return access.Principal{}, false
	}
	p, ok := v.(access.Principal)
	return p, ok
}

// CurrentPrincipal is Principal without the presence flag.
func CurrentPrincipal(c *gin.Context) access.Principal {
	p, _ := Principal(c)
	return p
}

// SetTokenCookie stores the access token as an HttpOnly cookie.
// Cross-origin deployments need SameSite=None, which browsers only accept with Secure.
func SetTokenCookie(c *gin.Context, tok string, ttl time.Duration, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(AccessCookie, tok, int(ttl.Seconds()), "/", "", secure, true)
}

// ClearTokenCookie removes the access token cookie.
func ClearTokenCookie(c *gin.Context, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(AccessCookie, "", -1, "/", "", secure, true)
}
