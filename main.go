package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"portfolio-service/chat"
	"portfolio-service/config"
	"portfolio-service/contact"
	"portfolio-service/content"
	"portfolio-service/db"
	"portfolio-service/handlers"
	"portfolio-service/logger"
	"portfolio-service/middleware"
	"portfolio-service/repository"
	"portfolio-service/routes"
	"portfolio-service/secretmanager"
	"portfolio-service/store"
	"portfolio-service/telemetry"
	"portfolio-service/upload"
	"portfolio-service/views"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// objectBucket is the storage the upload service writes to.
type objectBucket interface {
	upload.Bucket
	Close() error
}

var (
	loadEnv        = godotenv.Load
	loadConfig     = config.Load
	newLogger      = logger.New
	initTelemetry  = telemetry.Init
	connectDB      = db.Connect
	ensureSchema   = db.EnsureSchema
	loadContent    = func(ctx context.Context, s *content.Store) error { return s.Load(ctx) }
	newValkeyStore = store.NewValkeyStore
	newBucket      = func(ctx context.Context, cfg config.StorageConfig) (objectBucket, error) {
		bucket, err := upload.NewGCSBucket(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return bucket, nil
	}
	setupRoutes    = routes.SetupRoutes
	listenAndServe = http.ListenAndServe
	getSecret      = secretmanager.GetSecret
	setEnv         = os.Setenv
	logFatal       = func(args ...interface{}) { zap.S().Fatal(args...) }
)

type postgresSecret struct {
	Username             string `json:"username"`
	Password             string `json:"password"`
	Engine               string `json:"engine"`
	Host                 string `json:"host"`
	Port                 int    `json:"port"`
	DBInstanceIdentifier string `json:"dbInstanceIdentifier"`
}

func loadSecretMap(secretName string) (map[string]string, error) {
	secretJSON, err := getSecret(secretName)
	if err != nil {
		return nil, err
	}
	secrets := make(map[string]string)
	if err := json.Unmarshal([]byte(secretJSON), &secrets); err != nil {
		return nil, err
	}
	return secrets, nil
}

func setEnvFromMap(values map[string]string) error {
	for key, value := range values {
		if err := setEnv(key, value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

func validatePostgresSecret(secret postgresSecret) error {
	var missing []string
	for name, value := range map[string]string{
		"username":             secret.Username,
		"password":             secret.Password,
		"engine":               secret.Engine,
		"host":                 secret.Host,
		"dbInstanceIdentifier": secret.DBInstanceIdentifier,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("postgres secret is missing %s", strings.Join(missing, ", "))
	}
	if secret.Port <= 0 {
		return fmt.Errorf("postgres secret has invalid port %d", secret.Port)
	}
	return nil
}

func loadPostgresSecret() (postgresSecret, error) {
	raw, err := getSecret("prod/postgres")
	if err != nil {
		return postgresSecret{}, fmt.Errorf("error retrieving Postgres secret: %w", err)
	}
	var secret postgresSecret
	if err := json.Unmarshal([]byte(raw), &secret); err != nil {
		return postgresSecret{}, fmt.Errorf("error parsing Postgres secret JSON: %w", err)
	}
	if err := validatePostgresSecret(secret); err != nil {
		return postgresSecret{}, err
	}
	return secret, nil
}

// loadProdSecrets exports the production secrets into the environment before
// config.Load reads it. prod/valkey and prod/portfolio are optional.
func loadProdSecrets() error {
	authSecrets, err := loadSecretMap("prod/jwt")
	if err != nil {
		return fmt.Errorf("error retrieving JWT secret: %w", err)
	}
	if err := setEnvFromMap(authSecrets); err != nil {
		return err
	}

	pg, err := loadPostgresSecret()
	if err != nil {
		return err
	}
	for _, kv := range [][2]string{
		{"DB_USERNAME", pg.Username},
		{"DB_PASSWORD", pg.Password},
		{"DB_ENGINE", pg.Engine},
		{"DB_HOST", pg.Host},
		{"DB_PORT", fmt.Sprintf("%d", pg.Port)},
		{"DB_INSTANCE_IDENTIFIER", pg.DBInstanceIdentifier},
	} {
		if err := setEnv(kv[0], kv[1]); err != nil {
			return fmt.Errorf("set %s: %w", kv[0], err)
		}
	}

	for _, name := range []string{"prod/valkey", "prod/portfolio"} {
		values, err := loadSecretMap(name)
		if err != nil {
			continue
		}
		if err := setEnvFromMap(values); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		logFatal(err)
	}
}

func run() error {
	envErr := loadEnv()
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	log, err := newLogger(appEnv)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()
	restoreGlobals := zap.ReplaceGlobals(log.SugaredLogger.Desugar())
	defer restoreGlobals()
	middleware.SetLogger(log)

	if envErr != nil {
		log.Info("no .env file found; using system environment variables")
	}
	log.Info("starting", "environment", appEnv)

	if appEnv == "prod" {
		if err := loadProdSecrets(); err != nil {
			return err
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	ctx := context.Background()
	shutdownTelemetry, err := initTelemetry(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("telemetry error: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	if err := connectDB(cfg.DB); err != nil {
		return err
	}
	schemaCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = ensureSchema(schemaCtx, db.DB)
	cancel()
	if err != nil {
		return fmt.Errorf("schema error: %w", err)
	}

	valkeyStore, err := newValkeyStore(cfg.Valkey)
	if err != nil {
		return fmt.Errorf("valkey connection error: %w", err)
	}
	defer valkeyStore.Close()

	bucket, err := newBucket(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("object storage error: %w", err)
	}
	defer bucket.Close()

	repo := repository.NewPostgres(db.DB)
	contentStore := content.NewStore(repo, log)
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = loadContent(loadCtx, contentStore)
	cancel()
	if err != nil {
		// The site renders its error state; admin edits or a manual refresh
		// can recover.
		log.Error("initial content load failed", "error", err)
	}

	router, err := buildRouter(cfg, log, repo, contentStore, valkeyStore, bucket)
	if err != nil {
		return err
	}

	handler := otelhttp.NewHandler(
		middleware.RequestLogger(routes.WithCORS(cfg, router)),
		cfg.Telemetry.ServiceName,
	)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Info("listening", "port", port, "environment", cfg.AppEnv, "cors", strings.Join(cfg.CORS.AllowedOrigins, ","))
	if err := listenAndServe(":"+port, handler); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func buildRouter(cfg config.Config, log *logger.Logger, repo *repository.Postgres, contentStore *content.Store, tokens store.RefreshTokenStore, bucket upload.Bucket) (*mux.Router, error) {
	renderer, err := views.NewRenderer()
	if err != nil {
		return nil, err
	}

	var completer chat.Completer
	if cfg.Chat.APIKey != "" {
		completer = chat.NewAnthropicCompleter(cfg.Chat)
	} else {
		log.Warn("ANTHROPIC_API_KEY is empty; chat replies will fail")
	}

	return setupRoutes(cfg, routes.Handlers{
		Site:    handlers.NewSiteHandler(contentStore, renderer),
		Auth:    handlers.NewAuthHandler(cfg, tokens),
		Admin:   handlers.NewAdminHandler(contentStore, log),
		Chat:    handlers.NewChatHandler(chat.NewRelay(repo, completer, cfg.Chat.FallbackName, log), log),
		Contact: handlers.NewContactHandler(contact.NewClient(cfg.Contact, log)),
		Upload:  handlers.NewUploadHandler(upload.NewService(cfg.Storage, bucket, contentStore, log)),
	}), nil
}
