package tenant

import (
	"net/http"
	"time"
)

// Cookie names for the BYODB override pair and the optional AI-key override.
const (
	CookieDBEndpoint = "veritum_db_endpoint"
	CookieDBKey      = "veritum_db_key"
	CookieAIKey      = "veritum_ai_key"
)

const cookieMaxAge = int(365 * 24 * time.Hour / time.Second)

func newCookie(name, value, domain string) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   domain,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   cookieMaxAge,
	}
	if value == "" {
		c.MaxAge = -1
	}
	return c
}

// WriteOverrideCookies persists the BYODB pair (and optionally an AI key)
// client-side with a one-year expiry. Empty values clear the cookie.
func WriteOverrideCookies(w http.ResponseWriter, creds Credentials, aiKey, domain string) {
	http.SetCookie(w, newCookie(CookieDBEndpoint, creds.Endpoint, domain))
	http.SetCookie(w, newCookie(CookieDBKey, creds.Key, domain))
	if aiKey != "" {
		http.SetCookie(w, newCookie(CookieAIKey, aiKey, domain))
	}
}

// ClearOverrideCookies removes the full override set.
func ClearOverrideCookies(w http.ResponseWriter, domain string) {
	http.SetCookie(w, newCookie(CookieDBEndpoint, "", domain))
	http.SetCookie(w, newCookie(CookieDBKey, "", domain))
	http.SetCookie(w, newCookie(CookieAIKey, "", domain))
}

// ReadOverrideCookies returns the cookie-carried override pair; missing
// cookies yield empty fields, which the resolver treats as absent.
func ReadOverrideCookies(r *http.Request) Credentials {
	var creds Credentials
	if c, err := r.Cookie(CookieDBEndpoint); err == nil {
		creds.Endpoint = c.Value
	}
	if c, err := r.Cookie(CookieDBKey); err == nil {
		creds.Key = c.Value
	}
	return creds
}

// ReadAIKeyCookie returns the cookie-carried AI-key override, if any.
func ReadAIKeyCookie(r *http.Request) string {
	if c, err := r.Cookie(CookieAIKey); err == nil {
		return c.Value
	}
	return ""
}
