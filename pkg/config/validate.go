package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrMissing a required setting is empty
	ErrMissing = errors.New("missing required setting")
	// ErrMalformed a setting does not have the expected shape
	ErrMalformed = errors.New("malformed setting")
	// ErrSwapped the storage account id and access key look exchanged
	ErrSwapped = errors.New("storage account_id and access_key appear swapped")
)

var (
	accountIDPattern = regexp.MustCompile(`^\d{3,10}$`)
	accessKeyPattern = regexp.MustCompile(`^[A-Za-z0-9-]{32,}$`)
	regionPattern    = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-\d$`)
)

// Validate ensures the configuration is usable. 不做任何網路連線
func (c *Moderation) Validate() error {
	if err := c.validatePostgres(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateMessaging(); err != nil {
		return err
	}
	return nil
}

func (c *Moderation) validatePostgres() error {
	if strings.TrimSpace(c.PostgreSQL.Host) == "" {
		return fmt.Errorf("%w: pg.host", ErrMissing)
	}
	if strings.TrimSpace(c.PostgreSQL.User) == "" {
		return fmt.Errorf("%w: pg.user", ErrMissing)
	}
	if strings.TrimSpace(c.PostgreSQL.Database) == "" {
		return fmt.Errorf("%w: pg.database", ErrMissing)
	}
	return nil
}

func (c *Moderation) validateStorage() error {
	switch c.Storage.Provider {
	case StorageProviderStream:
		return validateStreamCredentials(c.Storage.AccountID, c.Storage.AccessKey)
	case StorageProviderMinIO:
		m := c.Storage.MinIO
		if strings.TrimSpace(m.Host) == "" {
			return fmt.Errorf("%w: storage.minio.host", ErrMissing)
		}
		if m.User == "" || m.Password == "" {
			return fmt.Errorf("%w: storage.minio.user/password", ErrMissing)
		}
		if strings.TrimSpace(m.BucketName) == "" {
			return fmt.Errorf("%w: storage.minio.bucket_name", ErrMissing)
		}
		return nil
	default:
		return fmt.Errorf("%w: storage.provider %q (want %q or %q)", ErrMalformed, c.Storage.Provider, StorageProviderStream, StorageProviderMinIO)
	}
}

func validateStreamCredentials(accountID, accessKey string) error {
	accountID = strings.TrimSpace(accountID)
	accessKey = strings.TrimSpace(accessKey)
	if accountID == "" {
		return fmt.Errorf("%w: storage.account_id", ErrMissing)
	}
	if accessKey == "" {
		return fmt.Errorf("%w: storage.access_key", ErrMissing)
	}

	idOK := accountIDPattern.MatchString(accountID)
	keyOK := accessKeyPattern.MatchString(accessKey)
	if idOK && keyOK {
		return nil
	}
	if !idOK && !keyOK && accessKeyPattern.MatchString(accountID) && accountIDPattern.MatchString(accessKey) {
		return ErrSwapped
	}
	if !idOK {
		return fmt.Errorf("%w: storage.account_id must be 3-10 digits", ErrMalformed)
	}
	return fmt.Errorf("%w: storage.access_key must be at least 32 characters of [A-Za-z0-9-]", ErrMalformed)
}

func (c *Moderation) validateClassifier() error {
	cl := c.Classifier
	if strings.TrimSpace(cl.Region) == "" {
		return fmt.Errorf("%w: classifier.region", ErrMissing)
	}
	if !regionPattern.MatchString(cl.Region) {
		return fmt.Errorf("%w: classifier.region %q", ErrMalformed, cl.Region)
	}
	if strings.TrimSpace(cl.AccessKeyID) == "" {
		return fmt.Errorf("%w: classifier.access_key_id", ErrMissing)
	}
	if strings.TrimSpace(cl.SecretAccessKey) == "" {
		return fmt.Errorf("%w: classifier.secret_access_key", ErrMissing)
	}
	if cl.MinConfidence < 0 || cl.MinConfidence > 100 {
		return fmt.Errorf("%w: classifier.min_confidence must be between 0 and 100", ErrMalformed)
	}
	return nil
}

func (c *Moderation) validatePipeline() error {
	p := c.Pipeline
	if len(p.Timestamps) == 0 {
		return fmt.Errorf("%w: pipeline.timestamps", ErrMissing)
	}
	prev := -1
	for _, ts := range p.Timestamps {
		if ts < 0 || ts <= prev {
			return fmt.Errorf("%w: pipeline.timestamps must be non-negative and strictly increasing", ErrMalformed)
		}
		prev = ts
	}
	if len(p.Denylist) == 0 {
		return fmt.Errorf("%w: pipeline.denylist", ErrMissing)
	}
	if p.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: pipeline.retry.max_attempts must be >= 1", ErrMalformed)
	}
	if p.Retry.Jitter < 0 || p.Retry.Jitter > 1 {
		return fmt.Errorf("%w: pipeline.retry.jitter must be between 0 and 1", ErrMalformed)
	}
	return nil
}

func (c *Moderation) validateMessaging() error {
	if strings.TrimSpace(c.RabbitMQ.IP) == "" {
		return fmt.Errorf("%w: rabbitmq.ip", ErrMissing)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("%w: kafka.brokers (kafka.enabled is true)", ErrMissing)
	}
	if c.Mongo.Enabled && strings.TrimSpace(c.Mongo.URI) == "" {
		return fmt.Errorf("%w: mongo.uri (mongo.enabled is true)", ErrMissing)
	}
	return nil
}
