package shared

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
)

const (
	// CSRFCookieName carries the token readable by page scripts.
	CSRFCookieName = "csrf_token"
	// CSRFHeaderName is the header mutating requests echo the token in.
	CSRFHeaderName = "X-CSRF-Token"
	// CSRFFormField is the form field alternative to the header.
	CSRFFormField = "csrf_token"
)

// CSRFManager issues and verifies double-submit CSRF tokens. Sessions are
// stateless here, so the expected token lives in its own cookie and
// mutating requests must echo it back in a header or form field.
type CSRFManager struct {
	secret []byte
	secure bool
}

// NewCSRFManager returns a CSRFManager using the provided secret key.
func NewCSRFManager(secret string, secure bool) *CSRFManager {
	return &CSRFManager{secret: []byte(secret), secure: secure}
}

// EnsureToken returns the request's CSRF token, minting and setting the
// cookie when absent or tampered with.
func (m *CSRFManager) EnsureToken(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(CSRFCookieName); err == nil {
		if m.validate(cookie.Value) == nil {
			return cookie.Value
		}
	}
	token := m.generateToken()
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

// VerifyRequest checks that the token sent with a mutating request matches
// the cookie and carries a valid signature.
func (m *CSRFManager) VerifyRequest(r *http.Request) error {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return ErrCSRFTokenMissing
	}
	supplied := r.Header.Get(CSRFHeaderName)
	if supplied == "" {
		supplied = r.PostFormValue(CSRFFormField)
	}
	if supplied == "" {
		return ErrCSRFTokenMissing
	}
	if err := m.validate(cookie.Value); err != nil {
		return err
	}
	if !hmac.Equal([]byte(cookie.Value), []byte(supplied)) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

func (m *CSRFManager) generateToken() string {
	nonce := make([]byte, 16)
	_, _ = rand.Read(nonce)
	return base64.RawURLEncoding.EncodeToString(nonce) + "." + m.sign(nonce)
}

func (m *CSRFManager) validate(token string) error {
	nonceRaw, sig, ok := strings.Cut(token, ".")
	if !ok {
		return ErrCSRFTokenMismatch
	}
	nonce, err := base64.RawURLEncoding.DecodeString(nonceRaw)
	if err != nil {
		return ErrCSRFTokenMismatch
	}
	if !hmac.Equal([]byte(m.sign(nonce)), []byte(sig)) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

func (m *CSRFManager) sign(nonce []byte) string {
	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write(nonce)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
