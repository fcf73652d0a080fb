package repo

import (
	"DocVault/internal/model"
	"context"

	"gorm.io/gorm"
)

// UserRepository минимальный контракт доступа к User.
type UserRepository interface {
	// CreateUser создаёт пользователя. Логин уникален.
	CreateUser(ctx context.Context, u *model.User) (*model.User, error)

	// GetUserByLogin возвращает пользователя по логину либо gorm.ErrRecordNotFound.
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository создаёт реализацию репозитория для User.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	if tx := r.db.WithContext(ctx).Create(u); tx.Error != nil {
		return nil, tx.Error
	}
	return u, nil
}

func (r *userRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	var u model.User
	if tx := r.db.WithContext(ctx).Where("login = ?", login).First(&u); tx.Error != nil {
		return nil, tx.Error
	}
	return &u, nil
}
