package config

import "time"

const (
	// StorageProviderStream CDN stream API (library id + access key)
	StorageProviderStream = "stream"
	// StorageProviderMinIO self-hosted minio bucket
	StorageProviderMinIO = "minio"
)

// DefaultTimestamps 7 samples across a <= 30 second clip
var DefaultTimestamps = []int{0, 5, 10, 15, 20, 25, 30}

// DefaultDenylist categories that force rejection
var DefaultDenylist = []string{"Explicit Nudity", "Violence", "Graphic Gore"}

// ApplyDefaults fill zero values
func (c *Moderation) ApplyDefaults() {
	if c.IP == "" {
		c.IP = "0.0.0.0"
	}
	if c.HTTPPort == "" {
		c.HTTPPort = "8090"
	}
	if c.GRPCPort == "" {
		c.GRPCPort = "50090"
	}
	if c.PostgreSQL.Port == 0 {
		c.PostgreSQL.Port = 5432
	}
	if c.PostgreSQL.RetryCount <= 0 {
		c.PostgreSQL.RetryCount = 5
	}
	if c.PostgreSQL.RetryInterval <= 0 {
		c.PostgreSQL.RetryInterval = 3
	}
	if c.Redis.LockTTL <= 0 {
		c.Redis.LockTTL = 10 * time.Minute
	}
	if c.RabbitMQ.Queue == "" {
		c.RabbitMQ.Queue = "moderation"
	}
	if c.RabbitMQ.Prefetch <= 0 {
		c.RabbitMQ.Prefetch = 4
	}
	if c.RabbitMQ.RetryCount <= 0 {
		c.RabbitMQ.RetryCount = 5
	}
	if c.RabbitMQ.RetryInterval <= 0 {
		c.RabbitMQ.RetryInterval = 3
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "moderation.outcomes"
	}
	if c.Kafka.RetryCount <= 0 {
		c.Kafka.RetryCount = 3
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "moderation"
	}
	if c.Mongo.Collection == "" {
		c.Mongo.Collection = "audits"
	}
	if c.Mongo.RetryCount <= 0 {
		c.Mongo.RetryCount = 3
	}
	if c.Storage.Provider == "" {
		c.Storage.Provider = StorageProviderStream
	}
	if c.Storage.APIBaseURL == "" {
		c.Storage.APIBaseURL = "https://video.bunnycdn.com"
	}
	if c.Storage.Timeout <= 0 {
		c.Storage.Timeout = 60
	}
	if c.Storage.MinIO.RetryCount <= 0 {
		c.Storage.MinIO.RetryCount = 5
	}
	if c.Classifier.MinConfidence <= 0 {
		c.Classifier.MinConfidence = 80
	}
	if c.Classifier.Timeout <= 0 {
		c.Classifier.Timeout = 20
	}
	if c.Pipeline.ScratchDir == "" {
		c.Pipeline.ScratchDir = "./tmp"
	}
	if c.Pipeline.FFmpegBinary == "" {
		c.Pipeline.FFmpegBinary = "ffmpeg"
	}
	if len(c.Pipeline.Timestamps) == 0 {
		c.Pipeline.Timestamps = append([]int(nil), DefaultTimestamps...)
	}
	if len(c.Pipeline.Denylist) == 0 {
		c.Pipeline.Denylist = append([]string(nil), DefaultDenylist...)
	}
	r := &c.Pipeline.Retry
	if r.MaxAttempts <= 0 {
		r.MaxAttempts = 3
	}
	if r.Base <= 0 {
		r.Base = time.Second
	}
	if r.Factor <= 0 {
		r.Factor = 2
	}
	if r.Cap <= 0 {
		r.Cap = 10 * time.Second
	}
	if r.Jitter <= 0 {
		r.Jitter = 0.5
	}
}
