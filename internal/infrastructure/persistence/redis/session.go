package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
)

// Key设计，冒号分隔命名空间
//   kidsbook:session:{user_id}   登录会话（hash）
//   kidsbook:blacklist:{jti}     已注销的Access Token
//   kidsbook:oauth_state:{state} Google登录的一次性state
const (
	keySession    = "kidsbook:session:"
	keyBlacklist  = "kidsbook:blacklist:"
	keyOAuthState = "kidsbook:oauth_state:"
)

// SessionStore 会话存储
// JWT本身无状态，注销和强制下线靠这里的黑名单
type SessionStore struct {
	client redis.UniversalClient
}

// NewSessionStore 创建会话存储
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{client: client}
}

// SaveSession 记录登录信息（时间、IP、登录方式），过期时间与Refresh Token一致
func (s *SessionStore) SaveSession(ctx context.Context, userID uuid.UUID, data map[string]interface{}, ttl time.Duration) error {
	key := keySession + userID.String()
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, data)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return apperrors.WithCause(apperrors.ErrRedisError, err)
	}
	return nil
}

// GetSession 会话不存在时返回 ErrUnauthorized
func (s *SessionStore) GetSession(ctx context.Context, userID uuid.UUID) (map[string]string, error) {
	result, err := s.client.HGetAll(ctx, keySession+userID.String()).Result()
	if err != nil {
		return nil, apperrors.WithCause(apperrors.ErrRedisError, err)
	}
	if len(result) == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	return result, nil
}

// DeleteSession 登出时删除
func (s *SessionStore) DeleteSession(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, keySession+userID.String()).Err(); err != nil {
		return apperrors.WithCause(apperrors.ErrRedisError, err)
	}
	return nil
}

// AddToBlacklist ttl 取Token剩余有效期，过期后自动清理
func (s *SessionStore) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, keyBlacklist+jti, "revoked", ttl).Err(); err != nil {
		return apperrors.WithCause(apperrors.ErrRedisError, err)
	}
	return nil
}

func (s *SessionStore) IsInBlacklist(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, keyBlacklist+jti).Result()
	if err != nil {
		return false, apperrors.WithCause(apperrors.ErrRedisError, err)
	}
	return n > 0, nil
}

// SaveOAuthState 发起Google登录时保存state
func (s *SessionStore) SaveOAuthState(ctx context.Context, state string, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyOAuthState+state, "1", ttl).Err(); err != nil {
		return apperrors.WithCause(apperrors.ErrRedisError, err)
	}
	return nil
}

// ConsumeOAuthState GETDEL保证每个state只能用一次
func (s *SessionStore) ConsumeOAuthState(ctx context.Context, state string) (bool, error) {
	err := s.client.GetDel(ctx, keyOAuthState+state).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.WithCause(apperrors.ErrRedisError, err)
	}
	return true, nil
}

// Ping 健康检查
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
