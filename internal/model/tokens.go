package model

// TokensPair содержит текущую пару access и refresh токенов пользователя.
// Refresh токен клиенту не отдается и живет только на сервере
type TokensPair struct {
	// Access токен (JWT)
	// example: eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"accessToken"`

	// Refresh токен (для выпуска нового access токена)
	RefreshToken string `json:"-"`
}
