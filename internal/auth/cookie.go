package auth

import (
	"net/http"
	"time"

	"github.com/courseloop/courseloop/internal/rbac"
)

// CookieWriter sets and clears the credential cookie. Attribute policy
// follows the deployment environment: production runs cross-site
// behind TLS (Secure + SameSite=None), everything else stays Lax over
// plain HTTP.
type CookieWriter struct {
	ttl      time.Duration
	secure   bool
	sameSite http.SameSite
}

// NewCookieWriter constructs a CookieWriter for the environment.
func NewCookieWriter(production bool, ttl time.Duration) CookieWriter {
	cw := CookieWriter{ttl: ttl, secure: production, sameSite: http.SameSiteLaxMode}
	if production {
		cw.sameSite = http.SameSiteNoneMode
	}
	return cw
}

// Write sets the credential cookie with Max-Age equal to the token
// lifetime.
func (c CookieWriter) Write(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     rbac.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}

// Clear logs the client out by overwriting the cookie with an empty,
// immediately expiring value. There is no server-side revocation store.
func (c CookieWriter) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     rbac.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}
