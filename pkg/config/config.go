package config

import "time"

// Moderation definition moderation_service YAML structure
type Moderation struct {
	IP       string `mapstructure:"ip"`
	HTTPPort string `mapstructure:"http_port"`
	GRPCPort string `mapstructure:"grpc_port"`
	Debug    bool   `mapstructure:"debug"`

	PostgreSQL DatabaseConfig   `mapstructure:"pg"`
	Redis      RedisConfig      `mapstructure:"redis"`
	RabbitMQ   RabbitMQConfig   `mapstructure:"rabbitmq"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// RedisConfig definition redis setting. Addr 為空時改用 .env 內的 sentinel 設定
type RedisConfig struct {
	Addr    string        `mapstructure:"addr"`
	RedisDB int           `mapstructure:"redis_db"`
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

// RabbitMQConfig definition rabbitmq setting
type RabbitMQConfig struct {
	IP            string `mapstructure:"ip"`
	Port          string `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Queue         string `mapstructure:"queue"`
	Prefetch      int    `mapstructure:"prefetch"`
	RetryCount    int    `mapstructure:"retry_count"`
	RetryInterval int    `mapstructure:"retry_interval"`
}

// KafkaConfig definition kafka setting
type KafkaConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	RetryCount    int      `mapstructure:"retry_count"`
	RetryInterval int      `mapstructure:"retry_interval"`
}

// MongoConfig definition mongo audit store setting
type MongoConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	URI           string `mapstructure:"uri"`
	Database      string `mapstructure:"database"`
	Collection    string `mapstructure:"collection"`
	RetryCount    int    `mapstructure:"retry_count"`
	RetryInterval int    `mapstructure:"retry_interval"`
}

// StorageConfig definition video origin setting
type StorageConfig struct {
	// Provider "stream" (CDN stream API) 或 "minio"
	Provider   string      `mapstructure:"provider"`
	AccountID  string      `mapstructure:"account_id"`
	AccessKey  string      `mapstructure:"access_key"`
	APIBaseURL string      `mapstructure:"api_base_url"`
	Timeout    int         `mapstructure:"timeout"`
	MinIO      MinIOConfig `mapstructure:"minio"`
}

// MinIOConfig definition minio setting
type MinIOConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	BucketName    string `mapstructure:"bucket_name"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	RetryCount    int    `mapstructure:"retry_count"`
	RetryInterval int    `mapstructure:"retry_interval"`
}

// ClassifierConfig definition image classification service setting
type ClassifierConfig struct {
	Region          string  `mapstructure:"region"`
	AccessKeyID     string  `mapstructure:"access_key_id"`
	SecretAccessKey string  `mapstructure:"secret_access_key"`
	MinConfidence   float64 `mapstructure:"min_confidence"`
	Timeout         int     `mapstructure:"timeout"`
}

// PipelineConfig definition moderation pipeline setting
type PipelineConfig struct {
	ScratchDir   string      `mapstructure:"scratch_dir"`
	FFmpegBinary string      `mapstructure:"ffmpeg_binary"`
	Timestamps   []int       `mapstructure:"timestamps"`
	Denylist     []string    `mapstructure:"denylist"`
	Retry        RetryConfig `mapstructure:"retry"`
}

// RetryConfig definition task level retry policy
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Base        time.Duration `mapstructure:"base"`
	Factor      float64       `mapstructure:"factor"`
	Cap         time.Duration `mapstructure:"cap"`
	Jitter      float64       `mapstructure:"jitter"`
}
