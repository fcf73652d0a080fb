package model

import "time"

// User — серверная модель пользователя.
type User struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Login string `gorm:"uniqueIndex;not null"`
	// Password хранит bcrypt-хеш, не исходный пароль.
	Password string `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}
