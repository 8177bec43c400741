package repository

import (
	"AuthSessionService/internal"
	"AuthSessionService/internal/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/jmoiron/sqlx"
)

type UserRepository struct {
	*internal.Database
}

func NewUserRepository(database *internal.Database) *UserRepository {
	return &UserRepository{database}
}

// FindByUsername возвращает (nil, nil), если пользователь не найден
func (repository *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User

	query := `SELECT * FROM users WHERE username = $1`
	err := repository.DB.GetContext(ctx, &user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка поиска пользователя: %w", err)
	}

	return &user, nil
}

// FindByUsernameAndToken ищет пользователя, у которого предъявленный
// access токен совпадает с текущим сохраненным. Просроченный, чужой или
// уже ротированный токен одинаково не дадут совпадения
func (repository *UserRepository) FindByUsernameAndToken(ctx context.Context, username string, accessToken string) (*model.User, error) {
	var user model.User

	query := `SELECT * FROM users WHERE username = $1 AND access_token = $2`
	err := repository.DB.GetContext(ctx, &user, query, username, accessToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка поиска пользователя по токену: %w", err)
	}

	return &user, nil
}

func (repository *UserRepository) Insert(ctx context.Context, user *model.User) (int64, error) {
	query := `INSERT INTO users (username, name, password, email, url, access_token, refresh_token)
			  VALUES (:username, :name, :password, :email, :url, '', '')
			  RETURNING id`

	rows, err := sqlx.NamedQueryContext(ctx, repository.DB, query, user)
	if err != nil {
		return 0, fmt.Errorf("ошибка вставки пользователя: %w", err)
	}
	defer rows.Close()

	if rows.Next() == false {
		return 0, fmt.Errorf("вставка пользователя не вернула id")
	}
	if err := rows.Scan(&user.Id); err != nil {
		return 0, fmt.Errorf("ошибка чтения id пользователя: %w", err)
	}

	return user.Id, nil
}

// UpdateTokens сохраняет текущую пару токенов пользователя.
// Пустые строки означают выход из аккаунта
func (repository *UserRepository) UpdateTokens(ctx context.Context, userId int64, accessToken string, refreshToken string) error {
	query := `UPDATE users SET access_token = $1, refresh_token = $2, updated_at = NOW() WHERE id = $3`

	result, err := repository.DB.ExecContext(ctx, query, accessToken, refreshToken, userId)
	if err != nil {
		return fmt.Errorf("не удалось обновить токены: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("не удалось проверить, обновлены ли токены: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("пользователь с id %d не найден", userId)
	}

	return nil
}
