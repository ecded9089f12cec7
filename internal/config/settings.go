package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	PoolSize int    `mapstructure:"pool_size"`
}

func (d DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Name)
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
	Pass string `mapstructure:"pass"`
}

type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
}

// VoiceConfig drives the speech synthesis client. Voices maps a cast member
// name to the synthesis service's voice identifier.
type VoiceConfig struct {
	SynthURL     string            `mapstructure:"synth_url"`
	MaxAttempts  int               `mapstructure:"max_attempts"`
	RetryDelayMs int               `mapstructure:"retry_delay_ms"`
	Voices       map[string]string `mapstructure:"voices"`
}

func (v VoiceConfig) RetryDelay() time.Duration {
	return time.Duration(v.RetryDelayMs) * time.Millisecond
}

type GenerationConfig struct {
	Provider    string `mapstructure:"provider"` // "openai" or "ollama"
	APIKey      string `mapstructure:"api_key"`
	BaseURL     string `mapstructure:"base_url"` // optional, Azure-style deployments
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

func (g GenerationConfig) Timeout() time.Duration {
	if g.TimeoutSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(g.TimeoutSecs) * time.Second
}

type ChatConfig struct {
	APIKey      string `mapstructure:"api_key"`
	LiveChatID  string `mapstructure:"live_chat_id"`
	MaxRetries  int    `mapstructure:"max_retries"`
	BaseDelayMs int    `mapstructure:"base_delay_ms"`
}

// BroadcastConfig holds the show persona and pacing knobs used when building
// generation prompts.
type BroadcastConfig struct {
	ShowName       string `mapstructure:"show_name"`
	Anchor         string `mapstructure:"anchor"`
	CoAnchor       string `mapstructure:"co_anchor"`
	SegmentSeconds int    `mapstructure:"segment_seconds"`
	QueueSize      int    `mapstructure:"queue_size"`
	CreditsKey     string `mapstructure:"credits_key"`
}

type Settings struct {
	Server     ServerConfig     `mapstructure:"server"`
	DB         DBConfig         `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Voice      VoiceConfig      `mapstructure:"voice"`
	Generation GenerationConfig `mapstructure:"generation"`
	Chat       ChatConfig       `mapstructure:"chat"`
	Broadcast  BroadcastConfig  `mapstructure:"broadcast"`
	Env        string           `mapstructure:"env"`
	Debug      bool             `mapstructure:"debug" default:"false"`
}

func Load() (*Settings, error) {
	viper.SetConfigName("config_" + genEnv())
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var settings Settings
	if err := viper.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &settings, nil
}

func genEnv() string {
	env := viper.GetString("ENV")
	if env == "" {
		return "dev"
	}
	return env
}
