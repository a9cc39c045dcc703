package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
)

const (
	csrfCookieName = "csrf_token"
	csrfHeaderName = "X-CSRF-Token"
	csrfTokenLen   = 32
	csrfMaxAge     = 12 * 60 * 60 // 12 hours
)

// CSRFMiddleware applies the double-submit cookie check to state-changing
// requests that authenticate with the session cookie. Bearer-token clients
// carry no ambient credentials and are not checked.
type CSRFMiddleware struct {
	secure bool
}

func NewCSRFMiddleware(secure bool) *CSRFMiddleware {
	return &CSRFMiddleware{secure: secure}
}

func (m *CSRFMiddleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			if _, err := m.ensureToken(w, r); err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to generate CSRF token")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if _, fromCookie := sessionToken(r); !fromCookie && r.Header.Get("Authorization") != "" {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(csrfCookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusForbidden, "CSRF token missing")
			return
		}
		header := r.Header.Get(csrfHeaderName)
		if header == "" {
			writeError(w, http.StatusForbidden, "CSRF token header missing")
			return
		}
		if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1 {
			writeError(w, http.StatusForbidden, "CSRF token mismatch")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ensureToken returns the request's CSRF token, issuing a cookie when absent,
// and mirrors it in the response header for scripts to read.
func (m *CSRFMiddleware) ensureToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
		w.Header().Set(csrfHeaderName, cookie.Value)
		return cookie.Value, nil
	}

	token, err := generateCSRFToken()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   csrfMaxAge,
		HttpOnly: false, // read by the client to echo in the header
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
	w.Header().Set(csrfHeaderName, token)
	return token, nil
}

func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// GetToken serves the current token as JSON. Routed behind Protect, which has
// already issued the cookie on this GET.
func (m *CSRFMiddleware) GetToken(w http.ResponseWriter, r *http.Request) {
	token := w.Header().Get(csrfHeaderName)
	if token == "" {
		var err error
		if token, err = m.ensureToken(w, r); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to generate CSRF token")
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"token":"` + token + `"}`))
}
