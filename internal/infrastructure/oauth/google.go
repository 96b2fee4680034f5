package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/xiebiao/kidsbook/internal/domain/user"
	"github.com/xiebiao/kidsbook/internal/infrastructure/config"
	"github.com/xiebiao/kidsbook/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
)

// DefaultUserInfoURL OpenID Connect userinfo
const DefaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// ErrEmailNotVerified Google侧邮箱未验证，不允许按邮箱绑定已有账号
var ErrEmailNotVerified = apperrors.WithMessage(apperrors.ErrForbidden, "Google账号邮箱未验证")

// GoogleProvider Google授权码登录
// 设计说明：
// 1. 授权地址、换取令牌由 x/oauth2 完成
// 2. 用户资料取自userinfo端点，只保留建号需要的字段
// 3. Google侧故障连续出现时熔断，回调直接返回 ErrOAuthProvider
type GoogleProvider struct {
	conf        *oauth2.Config
	userInfoURL string
	breaker     *circuitbreaker.Breaker
}

// Option 测试时替换端点
type Option func(*GoogleProvider)

// WithEndpoint 替换授权/令牌端点
func WithEndpoint(ep oauth2.Endpoint) Option {
	return func(p *GoogleProvider) { p.conf.Endpoint = ep }
}

// WithUserInfoURL 替换userinfo端点
func WithUserInfoURL(url string) Option {
	return func(p *GoogleProvider) { p.userInfoURL = url }
}

// WithBreaker 替换熔断器
func WithBreaker(b *circuitbreaker.Breaker) Option {
	return func(p *GoogleProvider) { p.breaker = b }
}

// providerFailure 只有Google侧的故障计入熔断，授权码无效等不算
func providerFailure(err error) bool {
	return errors.Is(err, apperrors.ErrOAuthProvider)
}

// NewGoogleProvider 从配置创建
func NewGoogleProvider(cfg *config.Config, opts ...Option) *GoogleProvider {
	p := &GoogleProvider{
		conf: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: DefaultUserInfoURL,
		breaker: circuitbreaker.New(circuitbreaker.Settings{
			Name:      "google-oauth",
			IsFailure: providerFailure,
		}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AuthCodeURL 同意页地址；state 由调用方生成并保存
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// userInfo userinfo端点的响应
type userInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// Exchange 用授权码换取令牌并读取用户资料
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*user.GoogleProfile, error) {
	var profile *user.GoogleProfile
	err := p.breaker.Do(func() error {
		var err error
		profile, err = p.exchange(ctx, code)
		return err
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return nil, apperrors.WithCause(apperrors.ErrOAuthProvider, err)
	}
	return profile, err
}

func (p *GoogleProvider) exchange(ctx context.Context, code string) (*user.GoogleProfile, error) {
	token, err := p.conf.Exchange(ctx, code)
	if err != nil {
		// 授权码无效或已被使用
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode < http.StatusInternalServerError {
			return nil, apperrors.WithCause(apperrors.ErrInvalidOAuthState, err)
		}
		return nil, apperrors.WithCause(apperrors.ErrOAuthProvider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, apperrors.WithCause(apperrors.ErrOAuthProvider, err)
	}
	resp, err := p.conf.Client(ctx, token).Do(req)
	if err != nil {
		return nil, apperrors.WithCause(apperrors.ErrOAuthProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.WithCause(apperrors.ErrOAuthProvider, fmt.Errorf("userinfo返回状态码 %d", resp.StatusCode))
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, apperrors.WithCause(apperrors.ErrOAuthProvider, err)
	}
	if info.Sub == "" || info.Email == "" {
		return nil, apperrors.WithCause(apperrors.ErrOAuthProvider, errors.New("userinfo缺少sub或email"))
	}
	if !info.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return &user.GoogleProfile{
		Subject:       info.Sub,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		GivenName:     info.GivenName,
		FamilyName:    info.FamilyName,
		Picture:       info.Picture,
	}, nil
}
