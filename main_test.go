package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"portfolio-service/config"
	"portfolio-service/content"
	"portfolio-service/logger"
	"portfolio-service/routes"
	"portfolio-service/store"
	"portfolio-service/telemetry"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

const (
	authSecretJSON     = `{"JWT_ACCESS_SECRET":"secret","ADMIN_PASSWORD_HASH":"hash"}`
	postgresSecretJSON = `{"username":"user","password":"pass","engine":"postgres","host":"localhost","port":5432,"dbInstanceIdentifier":"db"}`
)

type nopBucket struct {
	closed bool
}

func (b *nopBucket) Put(ctx context.Context, bucket, key, contentType string, body io.Reader) error {
	return nil
}

func (b *nopBucket) PublicURL(bucket, key string) string {
	return "https://storage.test/" + bucket + "/" + key
}

func (b *nopBucket) Close() error {
	b.closed = true
	return nil
}

func testConfig() config.Config {
	return config.Config{
		AppEnv: "dev",
		Auth: config.AuthConfig{
			AccessTokenSecret: []byte("secret"),
			AccessCookieName:  "access",
			RefreshCookieName: "refresh",
		},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost"}},
		Telemetry: config.TelemetryConfig{ServiceName: "portfolio-service"},
	}
}

// stubRun replaces every external dependency of run with a working fake.
// Tests override individual vars afterwards to inject failures.
func stubRun(t *testing.T) *nopBucket {
	t.Helper()
	originalLoadEnv := loadEnv
	originalLoadConfig := loadConfig
	originalNewLogger := newLogger
	originalInitTelemetry := initTelemetry
	originalConnectDB := connectDB
	originalEnsureSchema := ensureSchema
	originalLoadContent := loadContent
	originalNewValkeyStore := newValkeyStore
	originalNewBucket := newBucket
	originalSetupRoutes := setupRoutes
	originalListenAndServe := listenAndServe
	t.Cleanup(func() {
		loadEnv = originalLoadEnv
		loadConfig = originalLoadConfig
		newLogger = originalNewLogger
		initTelemetry = originalInitTelemetry
		connectDB = originalConnectDB
		ensureSchema = originalEnsureSchema
		loadContent = originalLoadContent
		newValkeyStore = originalNewValkeyStore
		newBucket = originalNewBucket
		setupRoutes = originalSetupRoutes
		listenAndServe = originalListenAndServe
	})

	bucket := &nopBucket{}
	loadEnv = func(_ ...string) error { return errors.New("no env") }
	loadConfig = func() (config.Config, error) { return testConfig(), nil }
	newLogger = func(mode string) (*logger.Logger, error) { return logger.NewNop(), nil }
	initTelemetry = func(ctx context.Context, cfg config.Config, log *logger.Logger) (telemetry.ShutdownFunc, error) {
		return func(context.Context) error { return nil }, nil
	}
	connectDB = func(cfg config.DatabaseConfig) error { return nil }
	ensureSchema = func(ctx context.Context, conn *sql.DB) error { return nil }
	loadContent = func(ctx context.Context, s *content.Store) error { return nil }
	newValkeyStore = func(cfg config.ValkeyConfig) (*store.ValkeyStore, error) { return &store.ValkeyStore{}, nil }
	newBucket = func(ctx context.Context, cfg config.StorageConfig) (objectBucket, error) { return bucket, nil }
	setupRoutes = func(cfg config.Config, h routes.Handlers) *mux.Router { return mux.NewRouter() }
	listenAndServe = func(addr string, handler http.Handler) error { return nil }
	return bucket
}

func TestLoadSecretMapErrors(t *testing.T) {
	originalGetSecret := getSecret
	getSecret = func(name string) (string, error) {
		return "", errors.New("secret error")
	}
	defer func() { getSecret = originalGetSecret }()

	_, err := loadSecretMap("prod/jwt")
	assert.Error(t, err)

	getSecret = func(name string) (string, error) {
		return "not-json", nil
	}
	_, err = loadSecretMap("prod/jwt")
	assert.Error(t, err)
}

func TestLoadProdSecretsSuccess(t *testing.T) {
	for _, key := range []string{"JWT_ACCESS_SECRET", "ADMIN_PASSWORD_HASH", "DB_USERNAME", "DB_PASSWORD", "DB_ENGINE", "DB_HOST", "DB_PORT", "DB_INSTANCE_IDENTIFIER", "VALKEY_ADDR", "ANTHROPIC_API_KEY"} {
		t.Setenv(key, "")
	}
	originalGetSecret := getSecret
	getSecret = func(name string) (string, error) {
		switch name {
		case "prod/jwt":
			return authSecretJSON, nil
		case "prod/postgres":
			return postgresSecretJSON, nil
		case "prod/valkey":
			return `{"VALKEY_ADDR":"localhost:6379"}`, nil
		case "prod/portfolio":
			return `{"ANTHROPIC_API_KEY":"sk-test"}`, nil
		default:
			return "", errors.New("unknown")
		}
	}
	defer func() { getSecret = originalGetSecret }()

	assert.NoError(t, loadProdSecrets())
	assert.Equal(t, "secret", os.Getenv("JWT_ACCESS_SECRET"))
	assert.Equal(t, "hash", os.Getenv("ADMIN_PASSWORD_HASH"))
	assert.Equal(t, "user", os.Getenv("DB_USERNAME"))
	assert.Equal(t, "localhost", os.Getenv("DB_HOST"))
	assert.Equal(t, "5432", os.Getenv("DB_PORT"))
	assert.Equal(t, "localhost:6379", os.Getenv("VALKEY_ADDR"))
	assert.Equal(t, "sk-test", os.Getenv("ANTHROPIC_API_KEY"))
}

func TestLoadProdSecretsInvalidPostgresJSON(t *testing.T) {
	originalGetSecret := getSecret
	getSecret = func(name string) (string, error) {
		switch name {
		case "prod/jwt":
			return authSecretJSON, nil
		case "prod/postgres":
			return "not-json", nil
		default:
			return "", errors.New("unknown")
		}
	}
	defer func() { getSecret = originalGetSecret }()

	assert.Error(t, loadProdSecrets())
}

func TestLoadProdSecretsPostgresError(t *testing.T) {
	originalGetSecret := getSecret
	getSecret = func(name string) (string, error) {
		switch name {
		case "prod/jwt":
			return authSecretJSON, nil
		case "prod/postgres":
			return "", errors.New("postgres error")
		default:
			return "", errors.New("unknown")
		}
	}
	defer func() { getSecret = originalGetSecret }()

	assert.Error(t, loadProdSecrets())
}

func TestLoadProdSecretsError(t *testing.T) {
	originalGetSecret := getSecret
	getSecret = func(name string) (string, error) {
		return "", errors.New("secret error")
	}
	defer func() { getSecret = originalGetSecret }()

	assert.Error(t, loadProdSecrets())
}

func TestRunSuccess(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	bucket := stubRun(t)

	var addr string
	var handler http.Handler
	listenAndServe = func(a string, h http.Handler) error {
		addr = a
		handler = h
		return nil
	}

	assert.NoError(t, run())
	assert.Equal(t, ":8080", addr)
	assert.NotNil(t, handler)
	assert.True(t, bucket.closed)
}

func TestRunUsesConfiguredPort(t *testing.T) {
	t.Setenv("APP_ENV", "")
	stubRun(t)
	loadConfig = func() (config.Config, error) {
		cfg := testConfig()
		cfg.Port = "9090"
		cfg.Chat.APIKey = "sk-test"
		return cfg, nil
	}
	var addr string
	listenAndServe = func(a string, h http.Handler) error {
		addr = a
		return nil
	}

	assert.NoError(t, run())
	assert.Equal(t, ":9090", addr)
}

func TestRunWiresAllHandlers(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	stubRun(t)
	var wired routes.Handlers
	setupRoutes = func(cfg config.Config, h routes.Handlers) *mux.Router {
		wired = h
		return mux.NewRouter()
	}

	assert.NoError(t, run())
	assert.NotNil(t, wired.Site)
	assert.NotNil(t, wired.Auth)
	assert.NotNil(t, wired.Admin)
	assert.NotNil(t, wired.Chat)
	assert.NotNil(t, wired.Contact)
	assert.NotNil(t, wired.Upload)
}

func TestRunContentLoadFailureIsNotFatal(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	stubRun(t)
	loadContent = func(ctx context.Context, s *content.Store) error { return errors.New("db unreachable") }

	assert.NoError(t, run())
}

func TestRunProdSecretsError(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	stubRun(t)
	originalGetSecret := getSecret
	getSecret = func(name string) (string, error) { return "", errors.New("secret error") }
	defer func() { getSecret = originalGetSecret }()

	assert.Error(t, run())
}

func TestRunLoggerError(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	stubRun(t)
	newLogger = func(mode string) (*logger.Logger, error) { return nil, errors.New("logger error") }

	assert.Error(t, run())
}

func TestRunConfigError(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	stubRun(t)
	loadConfig = func() (config.Config, error) { return config.Config{}, errors.New("config error") }

	assert.Error(t, run())
}

func TestRunTelemetryError(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	stubRun(t)
	initTelemetry = func(ctx context.Context, cfg config.Config, log *logger.Logger) (telemetry.ShutdownFunc, error) {
		return nil, errors.New("telemetry error")
	}

	assert.Error(t, run())
}

func TestRunConnectDBError(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	stubRun(t)
	connectDB = func(cfg config.DatabaseConfig) error { return errors.New("db error") }

	assert.Error(t, run())
}

func TestRunSchemaError(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	stubRun(t)
	ensureSchema = func(ctx context.Context, conn *sql.DB) error { return errors.New("schema error") }

	err := run()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "schema error")
}

func TestRunValkeyError(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	stubRun(t)
	newValkeyStore = func(cfg config.ValkeyConfig) (*store.ValkeyStore, error) { return nil, errors.New("valkey error") }

	assert.Error(t, run())
}

func TestRunBucketError(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	stubRun(t)
	newBucket = func(ctx context.Context, cfg config.StorageConfig) (objectBucket, error) {
		return nil, errors.New("storage error")
	}

	assert.Error(t, run())
}

func TestRunListenError(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	stubRun(t)
	listenAndServe = func(addr string, handler http.Handler) error { return errors.New("listen error") }

	assert.Error(t, run())
}

func TestRunServerClosedIsNotAnError(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	stubRun(t)
	listenAndServe = func(addr string, handler http.Handler) error { return http.ErrServerClosed }

	assert.NoError(t, run())
}

func TestMainFunction(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	stubRun(t)
	originalLogFatal := logFatal
	called := false
	logFatal = func(args ...interface{}) { called = true }
	defer func() { logFatal = originalLogFatal }()

	main()
	assert.False(t, called)
}

func TestMainFunctionError(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	stubRun(t)
	loadConfig = func() (config.Config, error) { return config.Config{}, errors.New("config error") }
	originalLogFatal := logFatal
	called := false
	logFatal = func(args ...interface{}) {
		called = true
	}
	defer func() { logFatal = originalLogFatal }()

	main()
	assert.True(t, called)
}
