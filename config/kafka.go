package config

// KafkaConfig configures the Redis retry queue. Empty Brokers disables it.
type KafkaConfig struct {
	Brokers         []string            `json:"brokers" yaml:"brokers" mapstructure:"brokers"`
	RedisRetryTopic string              `json:"redisRetryTopic" yaml:"redisRetryTopic" mapstructure:"redisRetryTopic"`
	ConsumerConfig  KafkaConsumerConfig `json:"consumer" yaml:"consumer" mapstructure:"consumer"`
}

// KafkaConsumerConfig configures the retry consumer group.
type KafkaConsumerConfig struct {
	GroupID  string `json:"groupId" yaml:"groupId" mapstructure:"groupId"`
	MinBytes int    `json:"minBytes" yaml:"minBytes" mapstructure:"minBytes"`
	MaxBytes int    `json:"maxBytes" yaml:"maxBytes" mapstructure:"maxBytes"`
}

// DefaultKafkaConfig returns local development defaults.
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Brokers:         []string{"kafka:9092"},
		RedisRetryTopic: "vkinder.redis.retry",
		ConsumerConfig: KafkaConsumerConfig{
			GroupID:  "vkinder-redis-retry",
			MinBytes: 1,
			MaxBytes: 1 << 20,
		},
	}
}
