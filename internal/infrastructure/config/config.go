package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀（KIDSBOOK_DATABASE_PASSWORD -> database.password）
const EnvPrefix = "KIDSBOOK"

// Config 全局配置结构
// 设计说明：使用Viper管理配置，支持YAML文件、.env文件、环境变量覆盖
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Google    GoogleConfig    `mapstructure:"google"`
	Log       LogConfig       `mapstructure:"log"`
	Health    HealthConfig    `mapstructure:"health"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug | release | test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// 支持的数据库驱动
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // mysql | postgres
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Charset         string        `mapstructure:"charset"`
	Loc             string        `mapstructure:"loc"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN 按驱动生成连接字符串
// mysql:    user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=true&loc=UTC
// postgres: host=... port=... user=... password=... dbname=... sslmode=disable
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverPostgres {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
	}
	loc := url.QueryEscape(d.Loc)
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=true&loc=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, loc)
}

type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	Issuer             string        `mapstructure:"issuer"`
	AccessTokenExpire  time.Duration `mapstructure:"access_token_expire"`
	RefreshTokenExpire time.Duration `mapstructure:"refresh_token_expire"`
}

type GoogleConfig struct {
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	RedirectURL  string        `mapstructure:"redirect_url"`
	StateTTL     time.Duration `mapstructure:"state_ttl"`
}

// Enabled 是否配置了Google登录
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // text | json
	Output string `mapstructure:"output"` // stdout | stderr | /path/to/file
}

type HealthConfig struct {
	Interval time.Duration `mapstructure:"interval"` // 0 表示关闭后台探活
	Timeout  time.Duration `mapstructure:"timeout"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	Endpoint    string `mapstructure:"endpoint"` // OTLP gRPC，如 localhost:4317
}

type CORSConfig struct {
	AllowOrigins []string      `mapstructure:"allow_origins"`
	MaxAge       time.Duration `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// Load 加载配置
// 顺序：.env（可选） -> config/config.yaml（可选） -> KIDSBOOK_* 环境变量
func Load() (*Config, error) {
	return LoadFrom("./config", ".")
}

// LoadFrom 从指定目录查找config.yaml
func LoadFrom(dirs ...string) (*Config, error) {
	// .env 不存在时忽略，其余错误直接返回
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("读取.env失败: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	// 环境特定配置（如config.prod.yaml）
	if env := os.Getenv(EnvPrefix + "_ENV"); env != "" {
		v.SetConfigName("config." + env)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults 默认值同时让viper“认识”所有键，环境变量才能覆盖未出现在文件中的配置
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("database.driver", DriverMySQL)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "kidsbook")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.loc", "UTC")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "kidsbook")
	v.SetDefault("jwt.access_token_expire", 30*time.Minute)
	v.SetDefault("jwt.refresh_token_expire", 7*24*time.Hour)

	v.SetDefault("google.client_id", "")
	v.SetDefault("google.client_secret", "")
	v.SetDefault("google.redirect_url", "http://localhost:8080/api/v1/auth/google/callback")
	v.SetDefault("google.state_ttl", 10*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("health.interval", 600*time.Second)
	v.SetDefault("health.timeout", 5*time.Second)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "kidsbook-api")
	v.SetDefault("tracing.endpoint", "localhost:4317")

	v.SetDefault("cors.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.max_age", 12*time.Hour)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.rps", 5)
	v.SetDefault("ratelimit.burst", 10)
}

// Validate 配置校验
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("不支持的数据库驱动: %q", c.Database.Driver)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("必须配置JWT密钥（%s_JWT_SECRET）", EnvPrefix)
	}
	if c.JWT.AccessTokenExpire <= 0 || c.JWT.RefreshTokenExpire <= 0 {
		return fmt.Errorf("Token有效期必须大于0")
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("限流配置无效: rps=%v burst=%d", c.RateLimit.RPS, c.RateLimit.Burst)
	}

	return nil
}
