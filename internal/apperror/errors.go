package apperror

import "errors"

// Ожидаемые ошибки бизнес-логики. Все остальные ошибки,
// дошедшие до границы сервиса, считаются инфраструктурными
var (
	// ErrUnauthorized - неверные учетные данные либо невалидный,
	// просроченный, отозванный или чужой токен. Причины намеренно
	// не различаются, чтобы не раскрывать детали наружу
	ErrUnauthorized = errors.New("не авторизован")

	// ErrConflict - имя пользователя уже занято
	ErrConflict = errors.New("имя пользователя уже занято")
)
