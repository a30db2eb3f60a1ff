package shared

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session is the payload embedded in a signed session token. It is a
// snapshot taken at issue time: the role fields may go stale if the user's
// role changes later, so authorization decisions must re-resolve
// permissions from the store by UserID rather than trust RoleName.
type Session struct {
	UserID    int64
	Name      string
	Email     string
	RoleID    int64
	RoleName  string
	ExpiresAt time.Time
}

// SessionUser is the store snapshot a token is minted from.
type SessionUser struct {
	ID       int64
	Name     string
	Email    string
	RoleID   int64
	RoleName string
}

// SessionUserSource loads the snapshot for an active user.
// Implementations return ErrUserNotFoundOrInactive for missing or
// deactivated accounts.
type SessionUserSource interface {
	FindSessionUser(ctx context.Context, userID int64) (*SessionUser, error)
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Name     string `json:"name"`
	Email    string `json:"email"`
	RoleID   int64  `json:"role_id"`
	RoleName string `json:"role_name"`
}

// SessionManager issues and verifies stateless signed session tokens
// carried in an http-only cookie. Tokens are not persisted server-side:
// logout clears the cookie and an unexpired stolen token stays valid until
// its expiry elapses.
type SessionManager struct {
	users      SessionUserSource
	cookieName string
	secret     []byte
	ttl        time.Duration
	secure     bool
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(users SessionUserSource, cookieName, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		users:      users,
		cookieName: cookieName,
		secret:     []byte(secret),
		ttl:        ttl,
		secure:     secure,
	}
}

// Issue looks up the user and signs a token embedding the session snapshot.
func (sm *SessionManager) Issue(ctx context.Context, userID int64) (string, error) {
	user, err := sm.users.FindSessionUser(ctx, userID)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sm.ttl)),
		},
		Name:     user.Name,
		Email:    user.Email,
		RoleID:   user.RoleID,
		RoleName: user.RoleName,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(sm.secret)
}

// Parse verifies signature and expiry. It returns nil for missing,
// malformed, expired or forged tokens; callers treat nil uniformly as
// unauthenticated.
func (sm *SessionManager) Parse(tokenString string) *Session {
	if tokenString == "" {
		return nil
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return sm.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil
	}

	sess := &Session{
		UserID:   userID,
		Name:     claims.Name,
		Email:    claims.Email,
		RoleID:   claims.RoleID,
		RoleName: claims.RoleName,
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess
}

// Load extracts and verifies the session from the request cookie.
func (sm *SessionManager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		return nil
	}
	return sm.Parse(cookie.Value)
}

// Write sets the session cookie carrying the signed token.
func (sm *SessionManager) Write(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sm.ttl.Seconds()),
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear removes the session cookie. This is the whole logout: the server
// keeps no revocation list.
func (sm *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}
