package security

import (
	"AuthSessionService/config"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"time"
)

// Claims access токена. Refresh токен не несет данных о пользователе,
// у него только служебные клеймы (exp, iat, iss, jti)
type Claims struct {
	UserId   int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTService подписывает и проверяет access и refresh токены.
// Секреты и время жизни у двух типов токенов независимые:
// компрометация одного секрета не дает подделать токены другого типа
type JWTService struct {
	issuer          string
	accessSecret    []byte
	refreshSecret   []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewJWTService(cfg config.JWTConfig) (*JWTService, error) {
	accessTokenTTL, err := time.ParseDuration(cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("неверный формат access_token_ttl: %w", err)
	}

	refreshTokenTTL, err := time.ParseDuration(cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("неверный формат refresh_token_ttl: %w", err)
	}

	return &JWTService{
		issuer:          cfg.Issuer,
		accessSecret:    []byte(cfg.AccessSecretKey),
		refreshSecret:   []byte(cfg.RefreshSecretKey),
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}, nil
}

func (service *JWTService) IssueAccessToken(userId int64, username string) (string, error) {
	claims := Claims{
		UserId:   userId,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(service.accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    service.issuer,
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	accessToken, err := jwtToken.SignedString(service.accessSecret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи access токена: %w", err)
	}

	return accessToken, nil
}

// IssueRefreshToken выпускает refresh токен без идентификационных клеймов.
// jti нужен только чтобы два токена, выпущенные в одну секунду, различались
func (service *JWTService) IssueRefreshToken() (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(service.refreshTokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    service.issuer,
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	refreshToken, err := jwtToken.SignedString(service.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи refresh токена: %w", err)
	}

	return refreshToken, nil
}

func (service *JWTService) ValidateAccessToken(jwtTokenStr string) (*Claims, error) {
	var claims = &Claims{}

	jwtToken, err := jwt.ParseWithClaims(jwtTokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Header["alg"] != jwt.SigningMethodHS512.Alg() {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return service.accessSecret, nil
	}, jwt.WithIssuer(service.issuer), jwt.WithExpirationRequired())

	if err != nil || jwtToken.Valid == false {
		return nil, fmt.Errorf("невалидный токен: %w", err)
	}

	return claims, nil
}

// IsRefreshTokenAlive проверяет подпись, издателя и срок жизни refresh токена.
// Возвращает bool, а не ошибку: протухший refresh токен - штатная ситуация
func (service *JWTService) IsRefreshTokenAlive(jwtTokenStr string) bool {
	jwtToken, err := jwt.ParseWithClaims(jwtTokenStr, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Header["alg"] != jwt.SigningMethodHS512.Alg() {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return service.refreshSecret, nil
	}, jwt.WithIssuer(service.issuer), jwt.WithExpirationRequired())

	if err != nil || jwtToken.Valid == false {
		return false
	}

	return true
}
