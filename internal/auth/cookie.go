package auth

import (
	"net/http"
	"time"
)

// SessionCookieName is the cookie the browser extension sends back with
// every request.
const SessionCookieName = "FicAiSession"

// Sessions have no server-side expiry; the cookie just has to outlive any
// realistic browser profile.
const sessionCookieMaxAge = int(10 * 365 * 24 * time.Hour / time.Second)

// SessionCookie builds the cookie that establishes a session in the
// browser.
func SessionCookie(id []byte, domain string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    EncodeSessionID(id),
		Domain:   domain,
		Path:     "/",
		MaxAge:   sessionCookieMaxAge,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredSessionCookie builds the cookie that clears a session from the
// browser on logout.
func ExpiredSessionCookie(domain string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Domain:   domain,
		Path:     "/",
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
