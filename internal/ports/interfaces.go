package ports

import (
	"AuthSessionService/internal/model"
	"AuthSessionService/internal/security"
	"context"
)

type UserRepositoryInterface interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByUsernameAndToken(ctx context.Context, username string, accessToken string) (*model.User, error)
	Insert(ctx context.Context, user *model.User) (int64, error)
	UpdateTokens(ctx context.Context, userId int64, accessToken string, refreshToken string) error
}

type BlacklistRepositoryInterface interface {
	Set(ctx context.Context, userId int64, accessToken string) error
	Get(ctx context.Context, userId int64) (string, error)
}

type JWTServiceInterface interface {
	IssueAccessToken(userId int64, username string) (string, error)
	IssueRefreshToken() (string, error)
	ValidateAccessToken(jwtTokenStr string) (*security.Claims, error)
	IsRefreshTokenAlive(jwtTokenStr string) bool
}
