package auth

import (
	"net/http"
	"strings"
	"time"
)

// Cookies writes and reads the session cookie.
type Cookies struct {
	Name string
	TTL  time.Duration
	// TrustProxy lets X-Forwarded-Proto mark a request as HTTPS.
	TrustProxy bool
}

func (c Cookies) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.Name)
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}
	return value, true
}

func (c Cookies) Write(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.TTL.Seconds()),
		HttpOnly: true,
		Secure:   c.isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (c Cookies) Clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (c Cookies) isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if !c.TrustProxy {
		return false
	}
	proto := r.Header.Get("X-Forwarded-Proto")
	if i := strings.IndexByte(proto, ','); i >= 0 {
		proto = proto[:i]
	}
	return strings.EqualFold(strings.TrimSpace(proto), "https")
}
