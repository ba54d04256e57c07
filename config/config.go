package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Timeline TimelineConfig `mapstructure:"timeline"`
	Reserve  ReserveConfig  `mapstructure:"reserve"`
	MQ       MQConfig       `mapstructure:"mq"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port int        `mapstructure:"port"`
	CORS CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 分钟
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置（用于预约接口限流）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TimelineConfig 时间轴配置
type TimelineConfig struct {
	Timezone    string `mapstructure:"timezone"`     // 计算"今天"与"现在"所用时区
	WindowStart string `mapstructure:"window_start"` // 运营时段开始 "HH:MM"
	WindowEnd   string `mapstructure:"window_end"`   // 运营时段结束 "HH:MM"
}

// Location 返回时间轴时区
func (c *TimelineConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// ReserveConfig 预约接口配置
type ReserveConfig struct {
	RateLimit int `mapstructure:"rate_limit"` // 每 IP 每分钟最大预约请求数
}

// MQConfig RabbitMQ 事件发布配置；URL 为空时不发布
type MQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "smart_campus")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Seoul")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("timeline.timezone", "Asia/Seoul")
	v.SetDefault("timeline.window_start", "09:00")
	v.SetDefault("timeline.window_end", "18:00")

	v.SetDefault("reserve.rate_limit", 30)

	v.SetDefault("mq.url", "")
	v.SetDefault("mq.exchange", "smart_campus.events")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("CAMPUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if _, err := c.Timeline.Location(); err != nil {
		return fmt.Errorf("配置校验失败: timeline.timezone 无效: %w", err)
	}

	start, err := time.Parse("15:04", c.Timeline.WindowStart)
	if err != nil {
		return fmt.Errorf("配置校验失败: timeline.window_start 格式应为 HH:MM")
	}
	end, err := time.Parse("15:04", c.Timeline.WindowEnd)
	if err != nil {
		return fmt.Errorf("配置校验失败: timeline.window_end 格式应为 HH:MM")
	}
	if !start.Before(end) {
		return fmt.Errorf("配置校验失败: timeline.window_start 必须早于 window_end")
	}

	if c.Reserve.RateLimit < 0 {
		return fmt.Errorf("配置校验失败: reserve.rate_limit 不能为负数")
	}
	return nil
}
