package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	AuthModeJWT  = "jwt"
	AuthModeOIDC = "oidc"

	EventsDriverRabbitMQ = "rabbitmq"
	EventsDriverNATS     = "nats"
	EventsDriverNone     = "none"
)

type (
	APP struct {
		Name          string
		Host          string
		Port          string
		Env           string
		PublicBaseURL string
	}
	Auth struct {
		Mode         string
		JWTSecret    string
		OIDCIssuer   string
		OIDCClientID string
	}
	DB struct {
		User     string
		Password string
		Name     string
		Host     string
		Port     string
		SSLMode  string
	}
	S3 struct {
		Endpoint        string
		Region          string
		AccessKeyID     string
		SecretAccessKey string
		BucketUploads   string
		UseSSL          bool
	}
	Share struct {
		SignedURLTTL      time.Duration
		TokenAttempts     int
		MaxUploadBytes    int64
		AccountingTimeout time.Duration
	}
	Cache struct {
		OwnerNamesSize int
		OwnerNamesTTL  time.Duration
	}
	Events struct {
		Driver string
	}
	MQ struct {
		User         string
		Password     string
		Vhost        string
		Host         string
		AmqpPort     string
		Exchange     string
		ExchangeType string
		QueueName    string
	}
	NATS struct {
		URL     string
		Stream  string
		Subject string
	}

	Config struct {
		App    APP
		Auth   Auth
		DB     DB
		S3     S3
		Share  Share
		Cache  Cache
		Events Events
		MQ     MQ
		NATS   NATS
	}
)

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func Load() Config {
	app := APP{
		Name:          getEnv("SERVICE_NAME", "fileshare"),
		Host:          getEnv("SERVICE_HOST", ""),
		Port:          getEnv("SERVICE_PORT", "8080"),
		Env:           getEnv("SERVICE_ENV", ""),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
	}
	auth := Auth{
		Mode:         strings.ToLower(getEnv("AUTH_MODE", AuthModeJWT)),
		JWTSecret:    getEnv("SERVICE_JWT_SECRET", ""),
		OIDCIssuer:   getEnv("OIDC_ISSUER_URL", ""),
		OIDCClientID: getEnv("OIDC_CLIENT_ID", ""),
	}
	db := DB{
		User:     getEnv("POSTGRES_USER", ""),
		Password: getEnv("POSTGRES_PASSWORD", ""),
		Name:     getEnv("POSTGRES_DB", ""),
		Host:     getEnv("POSTGRES_HOST", ""),
		Port:     getEnv("POSTGRES_PORT", "5432"),
		SSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),
	}
	s3 := S3{
		Endpoint:        getEnv("S3_ENDPOINT", "localhost:9000"),
		Region:          getEnv("S3_REGION", "us-east-1"),
		AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		BucketUploads:   getEnv("S3_BUCKET_UPLOADS", "file-uploads"),
		UseSSL:          getEnv("S3_USE_SSL", "false") == "true",
	}
	share := Share{
		SignedURLTTL:      getEnvDuration("SIGNED_URL_TTL", 60*time.Second),
		TokenAttempts:     getEnvInt("SHARE_TOKEN_ATTEMPTS", 5),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_BYTES", 50<<20)),
		AccountingTimeout: getEnvDuration("ACCOUNTING_TIMEOUT", 5*time.Second),
	}
	cache := Cache{
		OwnerNamesSize: getEnvInt("OWNER_CACHE_SIZE", 1024),
		OwnerNamesTTL:  getEnvDuration("OWNER_CACHE_TTL", 5*time.Minute),
	}
	events := Events{
		Driver: strings.ToLower(getEnv("EVENTS_DRIVER", EventsDriverNone)),
	}
	mq := MQ{
		User:         getEnv("RABBITMQ_USER", ""),
		Password:     getEnv("RABBITMQ_PASSWORD", ""),
		Vhost:        getEnv("RABBITMQ_VHOST", ""),
		Host:         getEnv("RABBITMQ_HOST", ""),
		AmqpPort:     getEnv("RABBITMQ_AMQP_PORT", "5672"),
		Exchange:     getEnv("RABBITMQ_EXCHANGE", "file-events"),
		ExchangeType: getEnv("RABBITMQ_EXCHANGE_TYPE", "topic"),
		QueueName:    getEnv("RABBITMQ_QUEUE_NAME", "file-events-audit"),
	}
	nts := NATS{
		URL:     getEnv("NATS_URL", "nats://localhost:4222"),
		Stream:  getEnv("NATS_STREAM", "file-events"),
		Subject: getEnv("NATS_SUBJECT_PREFIX", "files"),
	}

	return Config{
		App:    app,
		Auth:   auth,
		DB:     db,
		S3:     s3,
		Share:  share,
		Cache:  cache,
		Events: events,
		MQ:     mq,
		NATS:   nts,
	}
}

func (c Config) DBDSN() (string, error) {
	if c.DB.User == "" || c.DB.Name == "" || c.DB.Host == "" || c.DB.Port == "" {
		return "", fmt.Errorf("incomplete DB config")
	}
	return fmt.Sprintf(
		"postgres://%s@%s:%s/%s?sslmode=%s",
		url.UserPassword(c.DB.User, c.DB.Password).String(),
		c.DB.Host,
		c.DB.Port,
		c.DB.Name,
		c.DB.SSLMode,
	), nil
}

// MigrateDSN is the same database addressed through the golang-migrate pgx5 driver.
func (c Config) MigrateDSN() (string, error) {
	dsn, err := c.DBDSN()
	if err != nil {
		return "", err
	}
	return "pgx5" + strings.TrimPrefix(dsn, "postgres"), nil
}

func (c Config) AMQPDSN() (string, error) {
	if c.MQ.User == "" || c.MQ.Host == "" || c.MQ.AmqpPort == "" {
		return "", fmt.Errorf("invalid MQ config: user, host and amqp port are required")
	}

	return fmt.Sprintf(
		"%s://%s@%s:%s/%s",
		"amqp",
		url.UserPassword(c.MQ.User, c.MQ.Password).String(),
		c.MQ.Host,
		c.MQ.AmqpPort,
		url.PathEscape(c.MQ.Vhost),
	), nil
}

// ShareURL is the public link a share token is handed out as.
func (c Config) ShareURL(token string) string {
	return c.App.PublicBaseURL + "/view/" + url.PathEscape(token)
}

func (c Config) Validate() error {
	switch c.Auth.Mode {
	case AuthModeJWT:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("invalid auth config: SERVICE_JWT_SECRET is required for jwt mode")
		}
	case AuthModeOIDC:
		if c.Auth.OIDCIssuer == "" {
			return fmt.Errorf("invalid auth config: OIDC_ISSUER_URL is required for oidc mode")
		}
	default:
		return fmt.Errorf("invalid auth config: unknown mode %q", c.Auth.Mode)
	}

	switch c.Events.Driver {
	case EventsDriverRabbitMQ, EventsDriverNATS, EventsDriverNone:
	default:
		return fmt.Errorf("invalid events config: unknown driver %q", c.Events.Driver)
	}

	if c.S3.BucketUploads == "" {
		return fmt.Errorf("invalid S3 config: bucket is required")
	}
	if c.Share.TokenAttempts < 1 {
		return fmt.Errorf("invalid share config: SHARE_TOKEN_ATTEMPTS must be positive")
	}
	if c.Share.SignedURLTTL <= 0 {
		return fmt.Errorf("invalid share config: SIGNED_URL_TTL must be positive")
	}

	return nil
}
