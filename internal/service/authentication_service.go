package service

import (
	"AuthSessionService/config"
	"AuthSessionService/internal/apperror"
	"AuthSessionService/internal/model"
	"AuthSessionService/internal/notifier"
	"AuthSessionService/internal/ports"
	"context"
	"fmt"
	"golang.org/x/crypto/bcrypt"
	"log"
)

// AuthenticationService управляет жизненным циклом сессии.
// У пользователя одновременно живет не больше одной сессии:
// повторный логин молча закрывает предыдущую
type AuthenticationService struct {
	UserRepository      ports.UserRepositoryInterface
	BlacklistRepository ports.BlacklistRepositoryInterface
	JWTService          ports.JWTServiceInterface
	Config              *config.Config
}

func NewAuthenticationService(
	userRepository ports.UserRepositoryInterface,
	blacklistRepository ports.BlacklistRepositoryInterface,
	jwtService ports.JWTServiceInterface,
	cfg *config.Config,
) *AuthenticationService {
	return &AuthenticationService{
		UserRepository:      userRepository,
		BlacklistRepository: blacklistRepository,
		JWTService:          jwtService,
		Config:              cfg,
	}
}

// Signup регистрирует пользователя с пустой парой токенов.
// Токены при регистрации не выпускаются, логин - отдельный шаг
func (service *AuthenticationService) Signup(ctx context.Context, newUser *model.User, password string) (int64, error) {
	existingUser, err := service.UserRepository.FindByUsername(ctx, newUser.Username)
	if err != nil {
		return 0, fmt.Errorf("ошибка проверки имени пользователя: %w", err)
	}
	if existingUser != nil {
		return 0, apperror.ErrConflict
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), service.Config.Bcrypt.Cost)
	if err != nil {
		return 0, fmt.Errorf("ошибка хэширования пароля: %w", err)
	}
	newUser.Password = string(hashedPassword)

	userId, err := service.UserRepository.Insert(ctx, newUser)
	if err != nil {
		return 0, fmt.Errorf("ошибка регистрации пользователя: %w", err)
	}

	return userId, nil
}

// ValidateCredentials проверяет пару логин/пароль.
// Незарегистрированный пользователь и неверный пароль дают одну и ту же
// ошибку, чтобы не раскрывать, какие имена заняты
func (service *AuthenticationService) ValidateCredentials(ctx context.Context, username string, password string) (*model.User, error) {
	user, err := service.UserRepository.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска пользователя: %w", err)
	}
	if user == nil {
		return nil, apperror.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperror.ErrUnauthorized
	}

	user.Password = ""
	return user, nil
}

// Login выпускает новую пару токенов и сохраняет ее как текущую.
// Если предыдущая сессия еще открыта, она сначала закрывается через Logout,
// а ее access токен попадает в блеклист. Refresh токен клиенту не отдается
func (service *AuthenticationService) Login(ctx context.Context, user *model.User) (string, error) {
	if user.AccessToken != "" {
		if err := service.Logout(ctx, user.Id, user.AccessToken); err != nil {
			return "", fmt.Errorf("не удалось закрыть предыдущую сессию: %w", err)
		}

		log.Printf("повторный логин пользователя %d, предыдущая сессия закрыта", user.Id)
		go func() {
			if err := notifier.NotifyWebhook(service.Config.Webhook.URL, user.Id, user.Username); err != nil {
				log.Printf("ошибка отправки webhook: %v", err)
			}
		}()
	}

	tokensPair, err := service.issueTokensPair(user.Id, user.Username)
	if err != nil {
		return "", err
	}

	if err := service.UserRepository.UpdateTokens(ctx, user.Id, tokensPair.AccessToken, tokensPair.RefreshToken); err != nil {
		return "", fmt.Errorf("не удалось сохранить токены: %w", err)
	}

	return tokensPair.AccessToken, nil
}

// Refresh ротирует access токен. Все проверки закрываются отказом:
//  1. предъявленный токен должен совпадать с текущим сохраненным
//  2. сохраненный refresh токен должен быть жив, иначе сессия
//     принудительно закрывается
//  3. старый access токен уходит в блеклист, чтобы запросы с ним
//     отклонялись еще до истечения его срока жизни
func (service *AuthenticationService) Refresh(ctx context.Context, username string, accessToken string) (string, error) {
	user, err := service.UserRepository.FindByUsernameAndToken(ctx, username, accessToken)
	if err != nil {
		return "", fmt.Errorf("ошибка поиска пользователя по токену: %w", err)
	}
	if user == nil {
		return "", apperror.ErrUnauthorized
	}

	if service.JWTService.IsRefreshTokenAlive(user.RefreshToken) == false {
		if err := service.Logout(ctx, user.Id, accessToken); err != nil {
			return "", fmt.Errorf("не удалось закрыть сессию с протухшим refresh токеном: %w", err)
		}
		return "", apperror.ErrUnauthorized
	}

	newAccessToken, err := service.JWTService.IssueAccessToken(user.Id, user.Username)
	if err != nil {
		return "", fmt.Errorf("ошибка генерации access токена: %w", err)
	}

	// refresh токен остается прежним, меняется только access
	if err := service.UserRepository.UpdateTokens(ctx, user.Id, newAccessToken, user.RefreshToken); err != nil {
		return "", fmt.Errorf("не удалось сохранить токены: %w", err)
	}

	if err := service.BlacklistRepository.Set(ctx, user.Id, accessToken); err != nil {
		return "", fmt.Errorf("не удалось отозвать старый access токен: %w", err)
	}

	return newAccessToken, nil
}

// Logout очищает пару токенов и отзывает access токен. Идемпотентен
func (service *AuthenticationService) Logout(ctx context.Context, userId int64, accessToken string) error {
	if err := service.UserRepository.UpdateTokens(ctx, userId, "", ""); err != nil {
		return fmt.Errorf("не удалось очистить токены: %w", err)
	}

	if err := service.BlacklistRepository.Set(ctx, userId, accessToken); err != nil {
		return fmt.Errorf("не удалось отозвать access токен: %w", err)
	}

	return nil
}

func (service *AuthenticationService) issueTokensPair(userId int64, username string) (*model.TokensPair, error) {
	accessToken, err := service.JWTService.IssueAccessToken(userId, username)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации access токена: %w", err)
	}

	refreshToken, err := service.JWTService.IssueRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации refresh токена: %w", err)
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
