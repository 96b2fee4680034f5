package user

import (
	"crypto/md5" //nolint:gosec // Gravatar约定使用md5
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role 用户角色
type Role string

const (
	RoleUser       Role = "User"
	RoleAdmin      Role = "Admin"
	RoleSuperAdmin Role = "SuperAdmin"
)

// LoginMethod 登录方式
type LoginMethod string

const (
	LoginMethodLocal  LoginMethod = "local"
	LoginMethodGoogle LoginMethod = "google"
)

// User 用户实体（聚合根）
// 密码为bcrypt哈希；RefreshToken 是唯一有效会话的刷新令牌，为空表示未登录
type User struct {
	ID           uuid.UUID
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PhoneNumber  *string
	Role         Role
	LoginMethod  LoginMethod
	GoogleID     *string
	Avatar       string
	Password     string
	RefreshToken *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewLocalUser 邮箱+密码注册的用户
func NewLocalUser(email, username, firstName, lastName string, phone *string, hashedPassword string) *User {
	now := time.Now()
	return &User{
		ID:          uuid.New(),
		Email:       strings.ToLower(email),
		Username:    username,
		FirstName:   firstName,
		LastName:    lastName,
		PhoneNumber: phone,
		Role:        RoleUser,
		LoginMethod: LoginMethodLocal,
		Avatar:      GravatarURL(email),
		Password:    hashedPassword,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewGoogleUser Google首次登录时创建的用户（无本地密码）
func NewGoogleUser(p GoogleProfile) *User {
	now := time.Now()
	googleID := p.Subject
	avatar := p.Picture
	if avatar == "" {
		avatar = GravatarURL(p.Email)
	}
	return &User{
		ID:          uuid.New(),
		Email:       strings.ToLower(p.Email),
		Username:    usernameFromEmail(p.Email),
		FirstName:   p.GivenName,
		LastName:    p.FamilyName,
		Role:        RoleUser,
		LoginMethod: LoginMethodGoogle,
		GoogleID:    &googleID,
		Avatar:      avatar,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// GoogleProfile OpenID userinfo中用到的字段
type GoogleProfile struct {
	Subject       string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
	Picture       string
}

// LinkGoogle 已有账号绑定Google，之后只能通过Google登录
func (u *User) LinkGoogle(p GoogleProfile) {
	googleID := p.Subject
	u.GoogleID = &googleID
	u.LoginMethod = LoginMethodGoogle
	if p.Picture != "" {
		u.Avatar = p.Picture
	}
	u.UpdatedAt = time.Now()
}

// IsGoogleAccount 是否Google账号
func (u *User) IsGoogleAccount() bool {
	return u.LoginMethod == LoginMethodGoogle
}

// DisplayName 对外展示的名字
func (u *User) DisplayName() string {
	return DisplayName(u.FirstName, u.LastName, u.Username)
}

// DisplayName 名+姓，都为空时退回用户名
func DisplayName(firstName, lastName, username string) string {
	name := strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
	if name == "" {
		return username
	}
	return name
}

// GravatarURL 默认头像
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email)))) //nolint:gosec
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon", hex.EncodeToString(sum[:]))
}

func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
