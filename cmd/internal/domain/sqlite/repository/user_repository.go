package repository

import (
	"context"
	"errors"

	"notesboard/cmd/internal/domain/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *DefaultUserRepository {
	return &DefaultUserRepository{db: db}
}

func (u *DefaultUserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	var user entity.User
	err := u.db.WithContext(ctx).First(&user, id).Error
	return orNil(&user, err)
}

func (u *DefaultUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	err := u.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error
	return orNil(&user, err)
}

func (u *DefaultUserRepository) FindVerifiedByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	err := u.db.WithContext(ctx).
		Where("username = ? AND is_verified = ?", username, true).
		First(&user).Error
	return orNil(&user, err)
}

func (u *DefaultUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := u.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	return orNil(&user, err)
}

// FindByIdentifier resolves a sign-in identifier, which may be a username or an email.
func (u *DefaultUserRepository) FindByIdentifier(ctx context.Context, identifier string) (*entity.User, error) {
	var user entity.User
	err := u.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&user).Error
	return orNil(&user, err)
}

// Create inserts a brand new user, failing on username/email collisions.
func (u *DefaultUserRepository) Create(ctx context.Context, user *entity.User) error {
	return u.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(user).Error
}

// Save inserts or updates the user row only, its notes are managed by the note repository.
func (u *DefaultUserRepository) Save(ctx context.Context, user *entity.User) error {
	return u.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(user).Error
}

// DeleteStaleUnverified removes unverified users whose code expired before 'before' (millis).
func (u *DefaultUserRepository) DeleteStaleUnverified(ctx context.Context, before int64) (int64, error) {
	result := u.db.WithContext(ctx).
		Where("is_verified = ? AND verify_code_expiry < ?", false, before).
		Delete(&entity.User{})
	return result.RowsAffected, result.Error
}

func orNil[T any](value *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return value, nil
}
