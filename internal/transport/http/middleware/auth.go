package httpmw

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// ServiceAuth — Bearer-токен из фиксированного allow-list сервисных токенов.
// Никакой выдачи credentials здесь нет: токены раздаются при деплое.
func ServiceAuth(tokens []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || len(auth) <= 7 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"success":false,"error":"missing bearer token"}`))
				return
			}

			got := strings.TrimSpace(auth[7:])
			for _, t := range tokens {
				if subtle.ConstantTimeCompare([]byte(got), []byte(t)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":"invalid token"}`))
		})
	}
}
