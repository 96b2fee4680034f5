package user

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
)

// bcryptCost 推荐值，约250ms
const bcryptCost = 12

var (
	ErrUserNotFound       = apperrors.ErrUserNotFound
	ErrEmailDuplicate     = apperrors.ErrEmailDuplicate
	ErrPhoneDuplicate     = apperrors.ErrPhoneDuplicate
	ErrInvalidCredentials = apperrors.ErrInvalidCredentials
	ErrGoogleAccount      = apperrors.ErrGoogleAccount
	ErrInvalidToken       = apperrors.ErrInvalidToken
	ErrWeakPassword       = apperrors.New(apperrors.ErrCodeInvalidParams, "密码强度不足（需8-20位，包含字母和数字）")
	ErrInvalidEmail       = apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
	ErrInvalidPhone       = apperrors.New(apperrors.ErrCodeInvalidParams, "手机号格式不正确")
	ErrInvalidUsername    = apperrors.New(apperrors.ErrCodeInvalidParams, "用户名长度应为5-50个字符")
)

// RegisterParams 注册参数
type RegisterParams struct {
	Email       string
	Username    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Password    string
}

// Service 用户领域服务
type Service interface {
	// Register 本地注册；邮箱、手机号重复返回冲突错误
	Register(ctx context.Context, p RegisterParams) (*User, error)

	// Login login 可以是邮箱或手机号
	// Google账号不能用密码登录
	Login(ctx context.Context, login, password string) (*User, error)

	// LoginWithGoogle 按google id查找；否则按邮箱绑定；否则创建
	LoginWithGoogle(ctx context.Context, p GoogleProfile) (*User, error)

	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// SaveRefreshToken 登录成功后记录当前会话的刷新令牌
	SaveRefreshToken(ctx context.Context, id uuid.UUID, token string) error

	// RotateRefreshToken presented 必须与已保存的令牌一致，否则清空会话并返回 ErrInvalidToken
	RotateRefreshToken(ctx context.Context, id uuid.UUID, presented, next string) error

	// ClearRefreshToken 登出
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error

	ValidatePassword(hashedPassword, plainPassword string) error
}

type service struct {
	repo Repository
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, p RegisterParams) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if n := utf8.RuneCountInString(p.Username); n < 5 || n > 50 {
		return nil, ErrInvalidUsername
	}
	if err := validatePasswordStrength(p.Password); err != nil {
		return nil, err
	}

	var phone *string
	if v := strings.TrimSpace(p.PhoneNumber); v != "" {
		if !phonePattern.MatchString(v) {
			return nil, ErrInvalidPhone
		}
		phone = &v
	}

	// 先查一次给出明确的冲突原因；并发下由唯一索引兜底
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailDuplicate
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if phone != nil {
		if _, err := s.repo.FindByPhone(ctx, *phone); err == nil {
			return nil, ErrPhoneDuplicate
		} else if !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcryptCost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	u := NewLocalUser(email, p.Username, p.FirstName, p.LastName, phone, string(hashed))
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, login, password string) (*User, error) {
	login = strings.TrimSpace(login)

	var (
		u   *User
		err error
	)
	if strings.Contains(login, "@") {
		u, err = s.repo.FindByEmail(ctx, strings.ToLower(login))
	} else {
		u, err = s.repo.FindByPhone(ctx, login)
	}
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if u.IsGoogleAccount() {
		return nil, ErrGoogleAccount
	}
	if err := s.ValidatePassword(u.Password, password); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) LoginWithGoogle(ctx context.Context, p GoogleProfile) (*User, error) {
	if p.Subject == "" || p.Email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrOAuthProvider, "Google未返回账号信息")
	}

	u, err := s.repo.FindByGoogleID(ctx, p.Subject)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	u, err = s.repo.FindByEmail(ctx, strings.ToLower(p.Email))
	switch {
	case err == nil:
		u.LinkGoogle(p)
		if err := s.repo.Update(ctx, u); err != nil {
			return nil, err
		}
		return u, nil
	case errors.Is(err, ErrUserNotFound):
		u = NewGoogleUser(p)
		if err := s.repo.Create(ctx, u); err != nil {
			return nil, err
		}
		return u, nil
	default:
		return nil, err
	}
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) SaveRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	return s.repo.SetRefreshToken(ctx, id, &token)
}

func (s *service) RotateRefreshToken(ctx context.Context, id uuid.UUID, presented, next string) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if u.RefreshToken == nil || *u.RefreshToken != presented {
		// 旧令牌被重放：作废当前会话
		if err := s.repo.SetRefreshToken(ctx, id, nil); err != nil {
			return err
		}
		return ErrInvalidToken
	}

	return s.repo.SetRefreshToken(ctx, id, &next)
}

func (s *service) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetRefreshToken(ctx, id, nil)
}

func (s *service) ValidatePassword(hashedPassword, plainPassword string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return apperrors.Wrap(err, "密码验证失败")
	}
	return nil
}

var (
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern  = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	letterPattern = regexp.MustCompile(`[a-zA-Z]`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
)

// validatePasswordStrength 8-20位，必须包含字母和数字
func validatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return ErrWeakPassword
	}
	if !letterPattern.MatchString(password) || !digitPattern.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}
