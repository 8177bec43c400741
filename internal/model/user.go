package model

import "time"

// User - запись пользователя в БД.
// Поля AccessToken и RefreshToken хранят текущую пару токенов,
// пустые значения означают "сессия закрыта"
type User struct {
	Id           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Name         string    `db:"name" json:"name"`
	Password     string    `db:"password" json:"-"`
	Email        string    `db:"email" json:"email"`
	Url          string    `db:"url" json:"url"`
	AccessToken  string    `db:"access_token" json:"-"`
	RefreshToken string    `db:"refresh_token" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
	UpdatedAt    time.Time `db:"updated_at" json:"-"`
}
