package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"medidocs/internal/config"
	"medidocs/internal/database"
	"medidocs/internal/models"
	"medidocs/internal/repository"
	"medidocs/internal/service"
	"medidocs/internal/signing"
	"medidocs/internal/vault"
	"medidocs/migrations"
	"medidocs/pkg/validator"
)

func getContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// directoryStore is the directory surface the API and its seeding need
type directoryStore interface {
	service.Directory
	ListByDepartment(ctx context.Context, department string) ([]models.DirectoryUser, error)
	Upsert(ctx context.Context, user *models.DirectoryUser) error
	SetUnitHead(ctx context.Context, unit string, headUserID *string) error
}

// stores bundles the persistence backend
type stores struct {
	submissions service.SubmissionStore
	shares      service.ShareStore
	audit       service.AuditStore
	directory   directoryStore
	tx          service.Transactor
	health      healthCheck
	close       func() error
}

// openStores connects the configured backend and runs migrations for postgres
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.Store.Backend == "memory" {
		slog.Warn("Using in-memory store, data is lost on restart")
		return &stores{
			submissions: repository.NewMemorySubmissionStore(),
			shares:      repository.NewMemoryShareStore(),
			audit:       repository.NewMemoryAuditStore(),
			directory:   repository.NewMemoryDirectory(),
			tx:          repository.NewMemoryTx(),
			close:       func() error { return nil },
		}, nil
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("Database connection established")

	migrator := database.NewMigrationExecutor(db.DB)
	if err := migrator.RunMigrations(ctx, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database migrations completed")

	return &stores{
		submissions: repository.NewSubmissionRepository(db.DB),
		shares:      repository.NewShareRepository(db.DB),
		audit:       repository.NewAuditRepository(db.DB),
		directory:   repository.NewUserRepository(db.DB),
		tx:          repository.NewTxManager(db.DB),
		health:      db.HealthCheck,
		close:       db.Close,
	}, nil
}

// directorySeed is the JSON layout of STORE_SEED_FILE
type directorySeed struct {
	Users []models.DirectoryUser `json:"users"`
	Units []models.Unit          `json:"units"`
}

// seedDirectory upserts users and unit heads from a JSON file
func seedDirectory(ctx context.Context, dir directoryStore, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed directorySeed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i := range seed.Users {
		u := &seed.Users[i]
		if err := validator.ValidateRequired("seed user id", u.ID); err != nil {
			return err
		}
		if !u.Role.Valid() {
			return fmt.Errorf("seed user %s has unknown role %q", u.ID, u.Role)
		}
		if u.CreatedAt.IsZero() {
			u.CreatedAt = time.Now().UTC()
		}
		if err := dir.Upsert(ctx, u); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.ID, err)
		}
	}
	for _, unit := range seed.Units {
		if err := dir.SetUnitHead(ctx, unit.Name, unit.HeadUserID); err != nil {
			return fmt.Errorf("failed to seed unit %s: %w", unit.Name, err)
		}
	}

	slog.Info("Directory seeded", "users", len(seed.Users), "units", len(seed.Units))
	return nil
}

// newSigner builds the decision signer. It returns a nil signer for "none" and a
// health check when Vault is involved.
func newSigner(ctx context.Context, cfg *config.Config) (service.Signer, healthCheck, error) {
	switch cfg.Signing.Backend {
	case "none":
		slog.Warn("Decision signing is disabled")
		return nil, nil, nil

	case "vault":
		client, err := vault.NewClient(ctx, &vault.Config{
			Address:      cfg.Vault.Address,
			Token:        cfg.Vault.Token,
			TransitMount: cfg.Vault.TransitMount,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Vault client: %w", err)
		}
		if err := client.EnsureSigningKey(ctx, cfg.Vault.SigningKey); err != nil {
			return nil, nil, err
		}
		slog.Info("Signing decisions with Vault transit", "vault_addr", cfg.Vault.Address, "key", cfg.Vault.SigningKey)
		return signing.NewVaultSigner(client, cfg.Vault.SigningKey), client.Health, nil

	default:
		secret := []byte(cfg.Signing.Secret)
		if len(secret) == 0 {
			// signatures made with a generated secret cannot be verified after a restart
			slog.Warn("SIGNING_SECRET is not set, generating an ephemeral signing secret")
			secret = make([]byte, 32)
			if _, err := rand.Read(secret); err != nil {
				return nil, nil, fmt.Errorf("failed to generate signing secret: %w", err)
			}
		}
		signer, err := signing.NewLocalSigner(secret)
		if err != nil {
			return nil, nil, err
		}
		return signer, nil, nil
	}
}

// newRedisClient connects to Redis and verifies the connection
func newRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
