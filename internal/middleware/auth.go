// Package middleware содержит HTTP middleware партнёрского портала.
package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"
)

type contextKey string

const userIDKey contextKey = "userID"

const (
	authCookieName = "portal_session"
	authCookieTTL  = 30 * 24 * time.Hour
)

// AuthMiddleware выполняет проверку сессии по подписанному cookie.
// Сама аутентификация делегирована внешнему identity-сервису; здесь проверяется
// только подпись идентификатора пользователя, выставленная при входе.
type AuthMiddleware struct {
	secretKey []byte
}

// NewAuthMiddleware создаёт новый экземпляр AuthMiddleware с указанным секретным ключом.
func NewAuthMiddleware(secret string) *AuthMiddleware {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("default-secret-key")
		}
	}

	return &AuthMiddleware{
		secretKey: key,
	}
}

// Middleware проверяет cookie сессии и добавляет идентификатор пользователя в контекст запроса.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(authCookieName)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		userID, ok := a.parseCookie(cookie.Value)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetAuthCookie устанавливает cookie сессии для указанного идентификатора пользователя.
func (a *AuthMiddleware) SetAuthCookie(w http.ResponseWriter, userID string) {
	cookie := &http.Cookie{
		Name:     authCookieName,
		Value:    a.signUserID(userID),
		Path:     "/",
		Expires:  time.Now().Add(authCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(w, cookie)
}

func (a *AuthMiddleware) signUserID(userID string) string {
	mac := hmac.New(sha256.New, a.secretKey)
	mac.Write([]byte(userID))
	signature := mac.Sum(nil)
	return userID + "." + hex.EncodeToString(signature)
}

// Идентификаторы внешнего identity-сервиса не содержат точек,
// поэтому подпись отделяется последней точкой.
func (a *AuthMiddleware) parseCookie(cookieValue string) (string, bool) {
	idx := strings.LastIndex(cookieValue, ".")
	if idx <= 0 {
		return "", false
	}

	userID := cookieValue[:idx]
	signature := cookieValue[idx+1:]

	mac := hmac.New(sha256.New, a.secretKey)
	mac.Write([]byte(userID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return "", false
	}

	return userID, true
}

// GetUserIDFromContext извлекает идентификатор пользователя из контекста запроса.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}
