package security

import (
	"context"
	"log"
	"net/http"
	"strings"
)

// BlacklistStore - доступ к списку отозванных access токенов,
// проверяется на каждом защищенном запросе
type BlacklistStore interface {
	Get(ctx context.Context, userId int64) (string, error)
}

// JWTMiddleware проверяет Bearer токен: подпись, издателя, срок жизни
// и отсутствие в блеклисте. При успехе кладет claims и сам токен
// в контекст запроса
func JWTMiddleware(jwtService *JWTService, blacklist BlacklistStore) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(handleAuthentication(jwtService, blacklist, next))
	}
}

func handleAuthentication(jwtService *JWTService, blacklist BlacklistStore, next http.Handler) func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		authorizationHeader := request.Header.Get("Authorization")
		if strings.HasPrefix(authorizationHeader, "Bearer ") == false {
			http.Error(writer, "не авторизован", http.StatusUnauthorized)
			return
		}

		jwtTokenStr := strings.TrimPrefix(authorizationHeader, "Bearer ")

		claims, err := jwtService.ValidateAccessToken(jwtTokenStr)
		if err != nil {
			log.Printf("невалидный токен: %v", err)
			http.Error(writer, "не авторизован", http.StatusUnauthorized)
			return
		}

		// ошибка похода в redis - это отказ инфраструктуры, а не атака,
		// поэтому отвечаем 500, а не 401
		revokedToken, err := blacklist.Get(request.Context(), claims.UserId)
		if err != nil {
			log.Printf("ошибка проверки блеклиста: %v", err)
			http.Error(writer, "ошибка сервера", http.StatusInternalServerError)
			return
		}
		if revokedToken != "" && revokedToken == jwtTokenStr {
			http.Error(writer, "не авторизован", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(request.Context(), "user", claims)
		ctx = context.WithValue(ctx, "accessToken", jwtTokenStr)
		next.ServeHTTP(writer, request.WithContext(ctx))
	}
}
