package service

import (
	"AuthSessionService/config"
	"AuthSessionService/internal/apperror"
	"AuthSessionService/internal/model"
	"AuthSessionService/internal/security"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

type MockBlacklistRepository struct {
	mock.Mock
}

type MockJWTService struct {
	mock.Mock
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Issuer:           "test-issuer",
			AccessSecretKey:  "test-access-secret",
			AccessTokenTTL:   "15m",
			RefreshSecretKey: "test-refresh-secret",
			RefreshTokenTTL:  "24h",
		},
		Bcrypt: config.BcryptConfig{
			Cost: bcrypt.MinCost,
		},
		Webhook: config.WebhookConfig{
			URL: "http://example.com/webhook",
		},
	}
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsernameAndToken(ctx context.Context, username string, accessToken string) (*model.User, error) {
	args := m.Called(ctx, username, accessToken)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) Insert(ctx context.Context, user *model.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) UpdateTokens(ctx context.Context, userId int64, accessToken string, refreshToken string) error {
	return m.Called(ctx, userId, accessToken, refreshToken).Error(0)
}

func (m *MockBlacklistRepository) Set(ctx context.Context, userId int64, accessToken string) error {
	return m.Called(ctx, userId, accessToken).Error(0)
}

func (m *MockBlacklistRepository) Get(ctx context.Context, userId int64) (string, error) {
	args := m.Called(ctx, userId)
	return args.String(0), args.Error(1)
}

func (m *MockJWTService) IssueAccessToken(userId int64, username string) (string, error) {
	args := m.Called(userId, username)
	return args.String(0), args.Error(1)
}

func (m *MockJWTService) IssueRefreshToken() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockJWTService) ValidateAccessToken(jwtTokenStr string) (*security.Claims, error) {
	args := m.Called(jwtTokenStr)
	claims, _ := args.Get(0).(*security.Claims)
	return claims, args.Error(1)
}

func (m *MockJWTService) IsRefreshTokenAlive(jwtTokenStr string) bool {
	return m.Called(jwtTokenStr).Bool(0)
}

// 1
func TestSignup_Success(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)

	authService := &AuthenticationService{
		UserRepository: mockRepo,
		Config:         testConfig(),
	}

	mockRepo.On("FindByUsername", ctx, "alice").Return(nil, nil)
	mockRepo.On("Insert", ctx, mock.MatchedBy(func(user *model.User) bool {
		// пароль должен попадать в БД только в виде bcrypt хэша
		return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("s3cret!")) == nil
	})).Return(int64(1), nil)

	userId, err := authService.Signup(ctx, &model.User{Username: "alice", Name: "Alice", Email: "alice@example.com"}, "s3cret!")

	assert.NoError(t, err)
	assert.Equal(t, int64(1), userId)
}

// 2
func TestSignup_DuplicateUsernameConflict(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)

	authService := &AuthenticationService{
		UserRepository: mockRepo,
		Config:         testConfig(),
	}

	mockRepo.On("FindByUsername", ctx, "alice").Return(nil, nil).Once()
	mockRepo.On("Insert", ctx, mock.Anything).Return(int64(1), nil).Once()
	mockRepo.On("FindByUsername", ctx, "alice").Return(&model.User{Id: 1, Username: "alice"}, nil)

	_, err := authService.Signup(ctx, &model.User{Username: "alice"}, "s3cret!")
	assert.NoError(t, err)

	// повторная регистрация с тем же username
	_, err = authService.Signup(ctx, &model.User{Username: "alice"}, "s3cret!")
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

// 3
func TestValidateCredentials_UnknownUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)

	authService := &AuthenticationService{
		UserRepository: mockRepo,
		Config:         testConfig(),
	}

	mockRepo.On("FindByUsername", ctx, "ghost").Return(nil, nil)

	_, err := authService.ValidateCredentials(ctx, "ghost", "whatever")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

// 4
func TestValidateCredentials_WrongPasswordSameError(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)

	authService := &AuthenticationService{
		UserRepository: mockRepo,
		Config:         testConfig(),
	}

	hashedBytes, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	mockRepo.On("FindByUsername", ctx, "alice").Return(&model.User{Id: 1, Username: "alice", Password: string(hashedBytes)}, nil)

	_, err := authService.ValidateCredentials(ctx, "alice", "wrong-password")

	// неверный пароль и незнакомый username неразличимы для вызывающего
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

// 5
func TestValidateCredentials_SuccessStripsPasswordHash(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)

	authService := &AuthenticationService{
		UserRepository: mockRepo,
		Config:         testConfig(),
	}

	hashedBytes, _ := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	mockRepo.On("FindByUsername", ctx, "alice").Return(&model.User{Id: 1, Username: "alice", Password: string(hashedBytes)}, nil)

	user, err := authService.ValidateCredentials(ctx, "alice", "s3cret!")

	assert.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.Password)
}

// 6
func TestLogin_FirstSession(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	mockJWTService := new(MockJWTService)

	authService := &AuthenticationService{
		UserRepository: mockRepo,
		JWTService:     mockJWTService,
		Config:         testConfig(),
	}

	mockJWTService.On("IssueAccessToken", int64(1), "alice").Return("new-access", nil)
	mockJWTService.On("IssueRefreshToken").Return("new-refresh", nil)
	mockRepo.On("UpdateTokens", ctx, int64(1), "new-access", "new-refresh").Return(nil)

	accessToken, err := authService.Login(ctx, &model.User{Id: 1, Username: "alice"})

	assert.NoError(t, err)
	assert.Equal(t, "new-access", accessToken)
	mockRepo.AssertExpectations(t)
}

// 7
func TestLogin_ClosesPreviousSession(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	mockBlacklist := new(MockBlacklistRepository)
	mockJWTService := new(MockJWTService)

	authService := &AuthenticationService{
		UserRepository:      mockRepo,
		BlacklistRepository: mockBlacklist,
		JWTService:          mockJWTService,
		Config:              testConfig(),
	}

	// сначала закрывается старая сессия, ее access токен отзывается
	mockRepo.On("UpdateTokens", ctx, int64(1), "", "").Return(nil)
	mockBlacklist.On("Set", ctx, int64(1), "old-access").Return(nil)

	mockJWTService.On("IssueAccessToken", int64(1), "alice").Return("new-access", nil)
	mockJWTService.On("IssueRefreshToken").Return("new-refresh", nil)
	mockRepo.On("UpdateTokens", ctx, int64(1), "new-access", "new-refresh").Return(nil)

	accessToken, err := authService.Login(ctx, &model.User{Id: 1, Username: "alice", AccessToken: "old-access", RefreshToken: "old-refresh"})

	assert.NoError(t, err)
	assert.Equal(t, "new-access", accessToken)
	mockRepo.AssertExpectations(t)
	mockBlacklist.AssertExpectations(t)
}

// 8
func TestRefresh_UnknownOrRotatedToken(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)

	authService := &AuthenticationService{
		UserRepository: mockRepo,
		Config:         testConfig(),
	}

	mockRepo.On("FindByUsernameAndToken", ctx, "alice", "stale-access").Return(nil, nil)

	_, err := authService.Refresh(ctx, "alice", "stale-access")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

// 9
func TestRefresh_DeadRefreshTokenClosesSession(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	mockBlacklist := new(MockBlacklistRepository)
	mockJWTService := new(MockJWTService)

	authService := &AuthenticationService{
		UserRepository:      mockRepo,
		BlacklistRepository: mockBlacklist,
		JWTService:          mockJWTService,
		Config:              testConfig(),
	}

	storedUser := &model.User{Id: 1, Username: "alice", AccessToken: "current-access", RefreshToken: "dead-refresh"}

	mockRepo.On("FindByUsernameAndToken", ctx, "alice", "current-access").Return(storedUser, nil)
	mockJWTService.On("IsRefreshTokenAlive", "dead-refresh").Return(false)
	mockRepo.On("UpdateTokens", ctx, int64(1), "", "").Return(nil)
	mockBlacklist.On("Set", ctx, int64(1), "current-access").Return(nil)

	_, err := authService.Refresh(ctx, "alice", "current-access")

	// протухший refresh токен схлопывается в явный logout
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	mockRepo.AssertExpectations(t)
	mockBlacklist.AssertExpectations(t)
}

// 10
func TestRefresh_Success(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	mockBlacklist := new(MockBlacklistRepository)
	mockJWTService := new(MockJWTService)

	authService := &AuthenticationService{
		UserRepository:      mockRepo,
		BlacklistRepository: mockBlacklist,
		JWTService:          mockJWTService,
		Config:              testConfig(),
	}

	storedUser := &model.User{Id: 1, Username: "alice", AccessToken: "old-access", RefreshToken: "live-refresh"}

	mockRepo.On("FindByUsernameAndToken", ctx, "alice", "old-access").Return(storedUser, nil)
	mockJWTService.On("IsRefreshTokenAlive", "live-refresh").Return(true)
	mockJWTService.On("IssueAccessToken", int64(1), "alice").Return("new-access", nil)
	// refresh токен при ротации не меняется
	mockRepo.On("UpdateTokens", ctx, int64(1), "new-access", "live-refresh").Return(nil)
	mockBlacklist.On("Set", ctx, int64(1), "old-access").Return(nil)

	newAccessToken, err := authService.Refresh(ctx, "alice", "old-access")

	assert.NoError(t, err)
	assert.Equal(t, "new-access", newAccessToken)
	assert.NotEqual(t, "old-access", newAccessToken)
	mockRepo.AssertExpectations(t)
	mockBlacklist.AssertExpectations(t)
}

// 11
func TestRefresh_SecondCallWithSameTokenFails(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	mockBlacklist := new(MockBlacklistRepository)
	mockJWTService := new(MockJWTService)

	authService := &AuthenticationService{
		UserRepository:      mockRepo,
		BlacklistRepository: mockBlacklist,
		JWTService:          mockJWTService,
		Config:              testConfig(),
	}

	storedUser := &model.User{Id: 1, Username: "alice", AccessToken: "old-access", RefreshToken: "live-refresh"}

	// после успешной ротации старый access токен больше не совпадает с текущим
	mockRepo.On("FindByUsernameAndToken", ctx, "alice", "old-access").Return(storedUser, nil).Once()
	mockRepo.On("FindByUsernameAndToken", ctx, "alice", "old-access").Return(nil, nil)
	mockJWTService.On("IsRefreshTokenAlive", "live-refresh").Return(true)
	mockJWTService.On("IssueAccessToken", int64(1), "alice").Return("new-access", nil)
	mockRepo.On("UpdateTokens", ctx, int64(1), "new-access", "live-refresh").Return(nil)
	mockBlacklist.On("Set", ctx, int64(1), "old-access").Return(nil)

	_, err := authService.Refresh(ctx, "alice", "old-access")
	assert.NoError(t, err)

	_, err = authService.Refresh(ctx, "alice", "old-access")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

// 12
func TestRefresh_InfrastructureErrorIsNotUnauthorized(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)

	authService := &AuthenticationService{
		UserRepository: mockRepo,
		Config:         testConfig(),
	}

	mockRepo.On("FindByUsernameAndToken", ctx, "alice", "current-access").Return(nil, fmt.Errorf("ошибка подключения к БД"))

	_, err := authService.Refresh(ctx, "alice", "current-access")

	// отказ инфраструктуры не должен маскироваться под невалидный токен
	assert.Error(t, err)
	assert.False(t, errors.Is(err, apperror.ErrUnauthorized))
}

// 13
func TestLogout_Idempotent(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	mockBlacklist := new(MockBlacklistRepository)

	authService := &AuthenticationService{
		UserRepository:      mockRepo,
		BlacklistRepository: mockBlacklist,
		Config:              testConfig(),
	}

	mockRepo.On("UpdateTokens", ctx, int64(1), "", "").Return(nil)
	mockBlacklist.On("Set", ctx, int64(1), "current-access").Return(nil)

	assert.NoError(t, authService.Logout(ctx, 1, "current-access"))
	assert.NoError(t, authService.Logout(ctx, 1, "current-access"))
}

// 14
func TestLogout_BlacklistWriteFails(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	mockBlacklist := new(MockBlacklistRepository)

	authService := &AuthenticationService{
		UserRepository:      mockRepo,
		BlacklistRepository: mockBlacklist,
		Config:              testConfig(),
	}

	mockRepo.On("UpdateTokens", ctx, int64(1), "", "").Return(nil)
	mockBlacklist.On("Set", ctx, int64(1), "current-access").Return(fmt.Errorf("redis недоступен"))

	err := authService.Logout(ctx, 1, "current-access")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "не удалось отозвать access токен")
}
