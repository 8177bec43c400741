package handler

import (
	"AuthSessionService/internal/apperror"
	"AuthSessionService/internal/model"
	"AuthSessionService/internal/security"
	"AuthSessionService/internal/service"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"strings"
	"time"
)

type AuthenticationHandler struct {
	*service.AuthenticationService
}

// SignupRequest содержит данные для регистрации
// swagger:model
type SignupRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Email    string `json:"email"`
	// Url не обязателен
	Url string `json:"url"`
}

// SignupResponse содержит id зарегистрированного пользователя
// swagger:model
type SignupResponse struct {
	Id int64 `json:"id" example:"1"`
}

// LoginRequest содержит учетные данные пользователя
// swagger:model
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse содержит имя пользователя и его текущий access токен.
// Refresh токен клиенту не отдается
// swagger:model
type SessionResponse struct {
	Username string `json:"username"`
	// Access токен (JWT)
	// example: eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"accessToken"`
}

func NewAuthenticationHandler(authenticationService *service.AuthenticationService) *AuthenticationHandler {
	return &AuthenticationHandler{authenticationService}
}

// Signup регистрирует нового пользователя
// @Summary Регистрация
// @Description Создает пользователя с захэшированным паролем и пустой парой токенов. Пример запроса: POST /auth/signup с телом {"username": "alice", "name": "Alice", "password": "s3cret!", "email": "alice@example.com"}
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body SignupRequest true "данные для регистрации"
// @Success 201 {object} SignupResponse "пользователь зарегистрирован"
// @Failure 400 {string} string "неверный json или не заполнены обязательные поля"
// @Failure 409 {string} string "имя пользователя уже занято"
// @Failure 500 {string} string "ошибка сервера"
// @Router /signup [post]
func (handler *AuthenticationHandler) Signup(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), 3*time.Second)
	defer cancel()

	var signupRequest SignupRequest
	if err := json.NewDecoder(request.Body).Decode(&signupRequest); err != nil {
		log.Printf("неверный json: %v", err)
		http.Error(writer, "неверный json", http.StatusBadRequest)
		return
	}

	if message, ok := validateSignupRequest(&signupRequest); ok == false {
		http.Error(writer, message, http.StatusBadRequest)
		return
	}

	newUser := &model.User{
		Username: signupRequest.Username,
		Name:     signupRequest.Name,
		Email:    signupRequest.Email,
		Url:      signupRequest.Url,
	}

	userId, err := handler.AuthenticationService.Signup(ctx, newUser, signupRequest.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			http.Error(writer, "имя пользователя уже занято", http.StatusConflict)
			return
		}
		log.Printf("ошибка регистрации: %v", err)
		http.Error(writer, "ошибка сервера", http.StatusInternalServerError)
		return
	}

	response := &SignupResponse{Id: userId}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusCreated)
	json.NewEncoder(writer).Encode(&response)
}

// Login выполняет вход и выдает access токен
// @Summary Вход
// @Description Проверяет учетные данные и выпускает новую пару токенов. Открытая ранее сессия закрывается. Пример запроса: POST /auth/login с телом {"username": "alice", "password": "s3cret!"}
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "учетные данные"
// @Success 200 {object} SessionResponse "успешный вход"
// @Failure 400 {string} string "неверный json или пустые поля"
// @Failure 401 {string} string "неверные учетные данные"
// @Failure 500 {string} string "ошибка сервера"
// @Router /login [post]
func (handler *AuthenticationHandler) Login(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), 3*time.Second)
	defer cancel()

	var loginRequest LoginRequest
	if err := json.NewDecoder(request.Body).Decode(&loginRequest); err != nil {
		log.Printf("неверный json: %v", err)
		http.Error(writer, "неверный json", http.StatusBadRequest)
		return
	}
	if loginRequest.Username == "" || loginRequest.Password == "" {
		http.Error(writer, "username и password обязательны", http.StatusBadRequest)
		return
	}

	user, err := handler.AuthenticationService.ValidateCredentials(ctx, loginRequest.Username, loginRequest.Password)
	if err != nil {
		writeAuthenticationError(writer, err, "ошибка проверки учетных данных")
		return
	}

	accessToken, err := handler.AuthenticationService.Login(ctx, user)
	if err != nil {
		writeAuthenticationError(writer, err, "ошибка входа")
		return
	}

	response := &SessionResponse{
		Username:    user.Username,
		AccessToken: accessToken,
	}

	writer.Header().Set("Content-Type", "application/json")
	json.NewEncoder(writer).Encode(&response)
}

// RefreshToken выпускает новый access токен взамен предъявленного
// @Summary Ротация access токена
// @Description Сверяет предъявленный access токен с текущим сохраненным, проверяет живость refresh токена и выпускает новый access токен. Старый попадает в блеклист. Пример запроса: GET /auth/refresh?username=alice с заголовком Authorization: Bearer <access_token>
// @Tags Authentication
// @Produce json
// @Param username query string true "имя пользователя"
// @Param Authorization header string true "Access токен" default(Bearer <access_token>)
// @Success 200 {object} SessionResponse "токен обновлен"
// @Failure 400 {string} string "не указан username"
// @Failure 401 {string} string "не удалось обновить токен"
// @Failure 500 {string} string "ошибка сервера"
// @Router /refresh [get]
func (handler *AuthenticationHandler) RefreshToken(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), 3*time.Second)
	defer cancel()

	authHeader := request.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		http.Error(writer, "пустой или неверный заголовок Authorization", http.StatusUnauthorized)
		return
	}
	accessToken := strings.TrimPrefix(authHeader, "Bearer ")

	username := request.URL.Query().Get("username")
	if username == "" {
		http.Error(writer, "не указан username", http.StatusBadRequest)
		return
	}

	newAccessToken, err := handler.AuthenticationService.Refresh(ctx, username, accessToken)
	if err != nil {
		writeAuthenticationError(writer, err, "не удалось обновить токен")
		return
	}

	response := &SessionResponse{
		Username:    username,
		AccessToken: newAccessToken,
	}

	writer.Header().Set("Content-Type", "application/json")
	json.NewEncoder(writer).Encode(&response)
}

// Logout завершает сессию пользователя
// @Summary Выход из аккаунта
// @Description Очищает пару токенов и отзывает access токен через блеклист. Пример запроса: GET /auth/logout с заголовком Authorization: Bearer <access_token>
// @Tags Authentication
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 204 {string} string "выход выполнен"
// @Failure 401 {string} string "не авторизован"
// @Failure 500 {string} string "ошибка сервера"
// @Security ApiKeyAuth
// @Router /logout [get]
func (handler *AuthenticationHandler) Logout(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), 3*time.Second)
	defer cancel()

	claims, accessToken, ok := currentUser(ctx)
	if ok == false {
		http.Error(writer, "не авторизован", http.StatusUnauthorized)
		return
	}

	if err := handler.AuthenticationService.Logout(ctx, claims.UserId, accessToken); err != nil {
		log.Printf("ошибка выхода: %v", err)
		http.Error(writer, "ошибка сервера", http.StatusInternalServerError)
		return
	}

	writer.WriteHeader(http.StatusNoContent)
}

// Me возвращает имя пользователя и предъявленный access токен
// @Summary Текущий пользователь
// @Description Отдает имя пользователя и access токен из контекста запроса. Пример запроса: GET /auth/me с заголовком Authorization: Bearer <access_token>
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} SessionResponse "токен валиден"
// @Failure 401 {string} string "не авторизован"
// @Security ApiKeyAuth
// @Router /me [get]
func (handler *AuthenticationHandler) Me(writer http.ResponseWriter, request *http.Request) {
	claims, accessToken, ok := currentUser(request.Context())
	if ok == false {
		http.Error(writer, "не авторизован", http.StatusUnauthorized)
		return
	}

	response := &SessionResponse{
		Username:    claims.Username,
		AccessToken: accessToken,
	}

	writer.Header().Set("Content-Type", "application/json")
	json.NewEncoder(writer).Encode(&response)
}

// currentUser достает из контекста claims и access токен,
// положенные туда в JWTMiddleware
func currentUser(ctx context.Context) (*security.Claims, string, bool) {
	claims, ok := ctx.Value("user").(*security.Claims)
	if ok == false || claims == nil {
		return nil, "", false
	}

	accessToken, ok := ctx.Value("accessToken").(string)
	if ok == false || accessToken == "" {
		return nil, "", false
	}

	return claims, accessToken, true
}

func validateSignupRequest(signupRequest *SignupRequest) (string, bool) {
	if signupRequest.Username == "" || signupRequest.Name == "" || signupRequest.Email == "" {
		return "username, name и email обязательны", false
	}
	if len(signupRequest.Password) < 5 {
		return "пароль должен быть не короче 5 символов", false
	}
	if _, err := mail.ParseAddress(signupRequest.Email); err != nil {
		return "неверный формат email", false
	}

	return "", true
}

// writeAuthenticationError переводит ошибки сервиса в статус ответа:
// ErrUnauthorized - 401, все остальное - отказ инфраструктуры, 500
func writeAuthenticationError(writer http.ResponseWriter, err error, message string) {
	if errors.Is(err, apperror.ErrUnauthorized) {
		http.Error(writer, "не авторизован", http.StatusUnauthorized)
		return
	}

	log.Printf("%s: %v", message, err)
	http.Error(writer, "ошибка сервера", http.StatusInternalServerError)
}
