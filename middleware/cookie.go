package middleware

import (
	"net/http"
	"time"
)

// DefaultRefreshCookieName is used when CookieOptions.Name is empty.
const DefaultRefreshCookieName = "refresh_token"

// CookieOptions scopes the refresh token cookie. The cookie is always
// HttpOnly, Secure and SameSite=Strict; only its name and scope vary.
type CookieOptions struct {
	Name   string
	Path   string
	Domain string
}

func (o CookieOptions) name() string {
	if o.Name == "" {
		return DefaultRefreshCookieName
	}
	return o.Name
}

func (o CookieOptions) path() string {
	if o.Path == "" {
		return "/"
	}
	return o.Path
}

// SetRefreshCookie writes the refresh token as a script-inaccessible cookie
// that expires with the token.
func SetRefreshCookie(w http.ResponseWriter, token string, expiresAt time.Time, opts CookieOptions) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		ClearRefreshCookie(w, opts)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     opts.name(),
		Value:    token,
		Path:     opts.path(),
		Domain:   opts.Domain,
		Expires:  expiresAt.UTC(),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// RefreshCookie returns the refresh token carried by r, if any.
func RefreshCookie(r *http.Request, opts CookieOptions) (string, bool) {
	c, err := r.Cookie(opts.name())
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// ClearRefreshCookie tells the client to drop the refresh token cookie.
func ClearRefreshCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.name(),
		Value:    "",
		Path:     opts.path(),
		Domain:   opts.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
