package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	RedisAddr       string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Cognito Auth
	CognitoUserPoolID string `envconfig:"COGNITO_USER_POOL_ID"`
	CognitoClientID   string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL  string `envconfig:"COGNITO_ISSUER_URL"`

	// S3 image storage
	S3BucketName string `envconfig:"S3_BUCKET_NAME" default:"greencycle-images"`
	S3Region     string `envconfig:"S3_REGION" default:"us-east-1"`

	// Chat assistant
	AssistantAPIKey   string `envconfig:"ASSISTANT_API_KEY"`
	AssistantEndpoint string `envconfig:"ASSISTANT_ENDPOINT" default:"https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:generateContent"`

	// Auth Configuration
	SessionCookieName string `envconfig:"SESSION_COOKIE_NAME" default:"gc_session"`
	TokenCookieName   string `envconfig:"TOKEN_COOKIE_NAME" default:"gc_access_token"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes
}
