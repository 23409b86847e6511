package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config aggregates every component's settings.
type Config struct {
	Logger   LoggerConfig   `json:"logger" yaml:"logger" mapstructure:"logger"`
	MySQL    MySQLConfig    `json:"mysql" yaml:"mysql" mapstructure:"mysql"`
	Redis    RedisConfig    `json:"redis" yaml:"redis" mapstructure:"redis"`
	Kafka    KafkaConfig    `json:"kafka" yaml:"kafka" mapstructure:"kafka"`
	Async    AsyncConfig    `json:"async" yaml:"async" mapstructure:"async"`
	VK       VKConfig       `json:"vk" yaml:"vk" mapstructure:"vk"`
	OAuth    OAuthConfig    `json:"oauth" yaml:"oauth" mapstructure:"oauth"`
	Bot      BotConfig      `json:"bot" yaml:"bot" mapstructure:"bot"`
	Matching MatchingConfig `json:"matching" yaml:"matching" mapstructure:"matching"`
	Server   ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
}

// Default assembles the Default*Config of every component.
func Default() Config {
	return Config{
		Logger:   DefaultLoggerConfig(),
		MySQL:    DefaultMySQLConfig(),
		Redis:    DefaultRedisConfig(),
		Kafka:    DefaultKafkaConfig(),
		Async:    DefaultAsyncConfig(),
		VK:       DefaultVKConfig(),
		OAuth:    DefaultOAuthConfig(),
		Bot:      DefaultBotConfig(),
		Matching: DefaultMatchingConfig(),
		Server:   DefaultServerConfig(),
	}
}

// envBindings keeps the environment variable names the bot has always been deployed with.
var envBindings = map[string]string{
	"vk.groupId":        "VK_GROUP_ID",
	"vk.groupToken":     "VK_GROUP_TOKEN",
	"vk.apiVersion":     "VK_API_VERSION",
	"oauth.appId":       "VK_APP_ID",
	"oauth.appSecret":   "VK_APP_SECRET",
	"oauth.redirectUri": "VK_REDIRECT_URI",
	"oauth.tokenSecret": "TOKEN_SECRET",
	"mysql.host":        "DB_HOST",
	"mysql.database":    "DB_NAME",
	"mysql.user":        "DB_USER",
	"mysql.password":    "DB_PASSWORD",
	"redis.addr":        "REDIS_ADDR",
	"kafka.brokers":     "KAFKA_BROKERS",
	"server.addr":       "HTTP_ADDR",
	"logger.level":      "LOG_LEVEL",
}

// ErrInvalidConfig is returned when required settings are missing.
var ErrInvalidConfig = errors.New("invalid config")

// Load builds the configuration in layers: defaults, then the optional YAML file at path,
// then environment variables (a .env file in the working directory is loaded first).
func Load(path string) (*Config, error) {
	// 1. .env is optional, real environment wins over it
	_ = godotenv.Load()

	// 2. optional yaml file
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// 3. environment overrides
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	// 4. decode on top of the defaults so absent keys keep their default value
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the `validate` tags of the whole tree.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
