package relational

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xiebiao/kidsbook/internal/domain/user"
	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
)

// userRepository 用户仓储实现
// 邮箱、手机号唯一性由数据库唯一索引保证，冲突错误在这里转换为业务错误
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := toUserModel(u)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return mapUserWriteError(err, "创建用户失败")
	}
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *userRepository) FindByPhone(ctx context.Context, phone string) (*user.User, error) {
	return r.findOne(ctx, "phone_number = ?", phone)
}

func (r *userRepository) FindByGoogleID(ctx context.Context, googleID string) (*user.User, error) {
	return r.findOne(ctx, "google_id = ?", googleID)
}

func (r *userRepository) findOne(ctx context.Context, cond string, arg interface{}) (*user.User, error) {
	var model UserModel
	err := getDB(ctx, r.db).Where(cond, arg).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.WithCause(apperrors.ErrDatabaseError, err)
	}
	return toUserEntity(&model), nil
}

// Update 使用Save更新全部字段
func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	model := toUserModel(u)
	if err := getDB(ctx, r.db).Save(model).Error; err != nil {
		return mapUserWriteError(err, "更新用户失败")
	}
	u.UpdatedAt = model.UpdatedAt
	return nil
}

// SetRefreshToken 只更新刷新令牌一列
func (r *userRepository) SetRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	result := getDB(ctx, r.db).Model(&UserModel{}).
		Where("id = ?", id).
		Update("refresh_token", token)
	if result.Error != nil {
		return apperrors.WithCause(apperrors.ErrDatabaseError, result.Error)
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func mapUserWriteError(err error, msg string) error {
	if isDuplicateError(err) {
		if violatedIndex(err, "idx_users_phone") || violatedIndex(err, "phone_number") {
			return user.ErrPhoneDuplicate
		}
		return user.ErrEmailDuplicate
	}
	return apperrors.Wrap(err, msg)
}

func toUserModel(u *user.User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PhoneNumber:  u.PhoneNumber,
		Role:         string(u.Role),
		LoginMethod:  string(u.LoginMethod),
		GoogleID:     u.GoogleID,
		Avatar:       u.Avatar,
		Password:     u.Password,
		RefreshToken: u.RefreshToken,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toUserEntity(m *UserModel) *user.User {
	return &user.User{
		ID:           m.ID,
		Email:        m.Email,
		Username:     m.Username,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		PhoneNumber:  m.PhoneNumber,
		Role:         user.Role(m.Role),
		LoginMethod:  user.LoginMethod(m.LoginMethod),
		GoogleID:     m.GoogleID,
		Avatar:       m.Avatar,
		Password:     m.Password,
		RefreshToken: m.RefreshToken,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
