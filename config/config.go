package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv    string
	Port      string
	DB        DatabaseConfig
	Auth      AuthConfig
	Cookie    CookieConfig
	CORS      CORSConfig
	Valkey    ValkeyConfig
	Telemetry TelemetryConfig
	Chat      ChatConfig
	Contact   ContactConfig
	Storage   StorageConfig
}

type DatabaseConfig struct {
	Engine   string
	Host     string
	Port     string
	Name     string
	Username string
	Password string
	SSLMode  string
}

type AuthConfig struct {
	AdminUsername     string
	AdminPasswordHash []byte
	AccessTokenSecret []byte
	Issuer            string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	AccessCookieName  string
	RefreshCookieName string
}

type CookieConfig struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
	Path     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type ValkeyConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type TelemetryConfig struct {
	ServiceName          string
	ServiceVersion       string
	OTLPEndpoint         string
	OTLPTracesEndpoint   string
	OTLPMetricsEndpoint  string
	OTLPProtocol         string
	OTLPHeaders          map[string]string
	OTLPInsecure         bool
	ExportTimeout        time.Duration
	MetricExportInterval time.Duration
}

// ChatConfig configures the chat relay. An empty APIKey is not a startup
// error: the relay answers every message with a failure instead.
type ChatConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	MaxTokens    int64
	FallbackName string
}

type ContactConfig struct {
	FormURL string
	Timeout time.Duration
}

type StorageConfig struct {
	ProfileImageBucket string
	CVBucket           string
	PublicBaseURL      string
	EmulatorHost       string
	MaxImageBytes      int64
	MaxDocumentBytes   int64
}

func Load() (Config, error) {
	appEnv := getEnv("APP_ENV", "dev")
	port := getEnv("APP_PORT", "8080")

	dbName := getEnv("DB_NAME", "")
	if dbName == "" {
		dbName = os.Getenv("DB_INSTANCE_IDENTIFIER")
	}

	accessSecret := os.Getenv("JWT_ACCESS_SECRET")
	if accessSecret == "" {
		return Config{}, errors.New("JWT_ACCESS_SECRET must be set")
	}

	passwordHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if passwordHash == "" {
		return Config{}, errors.New("ADMIN_PASSWORD_HASH must be set")
	}

	accessTTL, err := time.ParseDuration(getEnv("JWT_ACCESS_TTL", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid JWT_ACCESS_TTL: %w", err)
	}
	refreshTTL, err := time.ParseDuration(getEnv("JWT_REFRESH_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid JWT_REFRESH_TTL: %w", err)
	}

	cookieSecure := getEnvBool("COOKIE_SECURE", appEnv == "prod")
	sameSite, err := parseSameSite(getEnv("COOKIE_SAMESITE", "lax"))
	if err != nil {
		return Config{}, err
	}

	corsOrigins := parseCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"))

	valkeyDB, err := strconv.Atoi(getEnv("VALKEY_DB", "0"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid VALKEY_DB: %w", err)
	}

	dbSSLMode := getEnv("DB_SSLMODE", "")
	if dbSSLMode == "" {
		if appEnv == "prod" {
			dbSSLMode = "require"
		} else {
			dbSSLMode = "disable"
		}
	}

	exportTimeout, err := time.ParseDuration(getEnv("OTEL_EXPORTER_OTLP_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid OTEL_EXPORTER_OTLP_TIMEOUT: %w", err)
	}
	metricInterval, err := time.ParseDuration(getEnv("OTEL_METRIC_EXPORT_INTERVAL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid OTEL_METRIC_EXPORT_INTERVAL: %w", err)
	}

	maxTokens, err := strconv.ParseInt(getEnv("CHAT_MAX_TOKENS", "500"), 10, 64)
	if err != nil || maxTokens <= 0 {
		return Config{}, fmt.Errorf("invalid CHAT_MAX_TOKENS: %s", os.Getenv("CHAT_MAX_TOKENS"))
	}

	contactTimeout, err := time.ParseDuration(getEnv("CONTACT_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid CONTACT_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv: appEnv,
		Port:   port,
		DB: DatabaseConfig{
			Engine:   getEnv("DB_ENGINE", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     dbName,
			Username: getEnv("DB_USERNAME", ""),
			Password: getEnv("DB_PASSWORD", ""),
			SSLMode:  dbSSLMode,
		},
		Auth: AuthConfig{
			AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
			AdminPasswordHash: []byte(passwordHash),
			AccessTokenSecret: []byte(accessSecret),
			Issuer:            getEnv("JWT_ISSUER", "portfolio-service"),
			AccessTokenTTL:    accessTTL,
			RefreshTokenTTL:   refreshTTL,
			AccessCookieName:  getEnv("AUTH_ACCESS_COOKIE_NAME", "admin_access"),
			RefreshCookieName: getEnv("AUTH_REFRESH_COOKIE_NAME", "admin_refresh"),
		},
		Cookie: CookieConfig{
			Domain:   getEnv("COOKIE_DOMAIN", ""),
			Secure:   cookieSecure,
			SameSite: sameSite,
			Path:     getEnv("COOKIE_PATH", "/"),
		},
		CORS: CORSConfig{
			AllowedOrigins: corsOrigins,
		},
		Valkey: ValkeyConfig{
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: getEnv("VALKEY_PASSWORD", ""),
			DB:       valkeyDB,
			Prefix:   getEnv("VALKEY_PREFIX", "portfolio:admin"),
		},
		Telemetry: TelemetryConfig{
			ServiceName:          getEnv("OTEL_SERVICE_NAME", "portfolio-service"),
			ServiceVersion:       getEnv("SERVICE_VERSION", "dev"),
			OTLPEndpoint:         getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			OTLPTracesEndpoint:   getEnv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", ""),
			OTLPMetricsEndpoint:  getEnv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", ""),
			OTLPProtocol:         getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			OTLPHeaders:          parseHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", "")),
			OTLPInsecure:         getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", appEnv != "prod"),
			ExportTimeout:        exportTimeout,
			MetricExportInterval: metricInterval,
		},
		Chat: ChatConfig{
			APIKey:       getEnv("ANTHROPIC_API_KEY", ""),
			BaseURL:      getEnv("ANTHROPIC_BASE_URL", ""),
			Model:        getEnv("CHAT_MODEL", "claude-3-haiku-20240307"),
			MaxTokens:    maxTokens,
			FallbackName: getEnv("CHAT_FALLBACK_NAME", "Iza"),
		},
		Contact: ContactConfig{
			FormURL: getEnv("CONTACT_FORM_URL", ""),
			Timeout: contactTimeout,
		},
		Storage: StorageConfig{
			ProfileImageBucket: getEnv("PROFILE_IMAGE_BUCKET", "profile-images"),
			CVBucket:           getEnv("CV_BUCKET", "cv-files"),
			PublicBaseURL:      strings.TrimRight(getEnv("OBJECT_STORAGE_PUBLIC_BASE_URL", "https://storage.googleapis.com"), "/"),
			EmulatorHost:       getEnv("STORAGE_EMULATOR_HOST", ""),
			MaxImageBytes:      getEnvInt64("UPLOAD_MAX_IMAGE_BYTES", 5<<20),
			MaxDocumentBytes:   getEnvInt64("UPLOAD_MAX_DOCUMENT_BYTES", 10<<20),
		},
	}

	if cfg.DB.Name == "" || cfg.DB.Username == "" {
		return Config{}, errors.New("DB_NAME (or DB_INSTANCE_IDENTIFIER) and DB_USERNAME must be set")
	}
	if cfg.Contact.FormURL == "" {
		return Config{}, errors.New("CONTACT_FORM_URL must be set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	var results []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

// parseHeaders reads the OTLP "k1=v1,k2=v2" header format.
func parseHeaders(value string) map[string]string {
	headers := map[string]string{}
	for _, pair := range parseCSV(value) {
		key, val, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		headers[key] = strings.TrimSpace(val)
	}
	return headers
}

func parseSameSite(value string) (http.SameSite, error) {
	switch strings.ToLower(value) {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return http.SameSiteDefaultMode, fmt.Errorf("invalid COOKIE_SAMESITE: %s", value)
	}
}
