package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mohammadpnp/user-pipeline/internal/application/auth"
	"github.com/mohammadpnp/user-pipeline/internal/application/migration"
	app "github.com/mohammadpnp/user-pipeline/internal/application/user"
	"github.com/mohammadpnp/user-pipeline/internal/config"
	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/db"
	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/dedup"
	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/metrics"
	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/repository"
	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/session"
	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/spreadsheet"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Container owns every long-lived dependency of the process.
type Container struct {
	Config   *config.Configuration
	Logger   logrus.FieldLogger
	Registry *prometheus.Registry

	newDB    *gorm.DB
	legacyDB *gorm.DB
	pool     *pgxpool.Pool
	redis    *redis.Client

	Users       *repository.UserRepository
	Legacy      *repository.LegacyUserRepository
	State       *repository.MigrationStateRepository
	BatchWriter domain.BatchWriter
	Dedup       domain.DedupIndex
	Metrics     *metrics.PipelineMetrics
	Sessions    *session.Store

	RecordWriter *app.RecordWriter
	Import       app.ImportUsersFromSpreadsheet
	GetUser      app.GetUserByID
	ListUsers    app.ListUsers
	CreateUser   app.CreateUser
	DeleteUser   app.DeleteUser
	BulkMigrate  migration.BulkMigrate
	MigrateUser  migration.MigrateUser
	Progress     *migration.Progress
	Auth         *auth.Service
}

func NewContainer(ctx context.Context, cfg *config.Configuration, logger logrus.FieldLogger) (_ *Container, err error) {
	c := &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	if err = c.openStores(ctx); err != nil {
		return nil, err
	}
	if err = c.openDedup(ctx); err != nil {
		return nil, err
	}
	if cfg.Metrics.Enabled {
		c.Registry = prometheus.NewRegistry()
		if c.Metrics, err = metrics.NewPipelineMetrics(c.Registry); err != nil {
			return nil, err
		}
	}

	c.wireUseCases()
	return c, nil
}

func (c *Container) openStores(ctx context.Context) error {
	var err error
	cfg := c.Config

	if c.newDB, err = db.Open(cfg.Database.Driver, cfg.Database.URL); err != nil {
		return err
	}
	if err = db.MigrateNewStore(c.newDB); err != nil {
		return err
	}
	if c.legacyDB, err = db.Open(cfg.Legacy.Driver, cfg.Legacy.URL); err != nil {
		return err
	}

	c.Users = repository.NewUserRepository(c.newDB)
	c.Legacy = repository.NewLegacyUserRepository(c.legacyDB)
	c.State = repository.NewMigrationStateRepository(c.newDB)
	c.BatchWriter = c.Users

	if cfg.Database.Driver != db.DriverPostgres {
		return nil
	}

	// Postgres gets the COPY based writer for bulk batches.
	c.pool, err = pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("create pgx pool: %w", err)
	}
	bulk := repository.NewUserBulkImportRepository(c.pool)
	if err = bulk.EnsureStagingTable(ctx); err != nil {
		return err
	}
	c.BatchWriter = bulk
	return nil
}

func (c *Container) openDedup(ctx context.Context) error {
	if c.Config.Dedup.Backend != config.DedupRedis {
		c.Dedup = dedup.NewMemoryIndex(c.Users)
		return nil
	}

	opts, err := redis.ParseURL(c.Config.Dedup.RedisURL)
	if err != nil {
		return fmt.Errorf("parse REDIS_URL: %w", err)
	}
	c.redis = redis.NewClient(opts)
	if err := c.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	c.Dedup = dedup.NewRedisIndex(c.redis, c.Users, c.Config.Dedup.ReservationTTL)
	return nil
}

func (c *Container) wireUseCases() {
	cfg := c.Config
	validator := domain.DefaultValidator()

	// A nil *PipelineMetrics is a valid no-op recorder.
	var importMetrics app.ImportMetrics = c.Metrics
	var migrationMetrics migration.Metrics = c.Metrics

	c.RecordWriter = app.NewRecordWriter(validator, c.Dedup, c.Users, c.Logger.WithField("component", "record_writer"))
	c.Import = app.NewImportUsersFromSpreadsheet(
		spreadsheet.NewReader(),
		c.RecordWriter,
		importMetrics,
		c.Logger.WithField("component", "import"),
		app.ImportConfig{Workers: cfg.Import.Workers},
	)
	c.GetUser = app.NewGetUserByID(c.Users)
	c.ListUsers = app.NewListUsers(c.Users)
	c.CreateUser = app.NewCreateUser(c.RecordWriter)
	c.DeleteUser = app.NewDeleteUser(c.Users)

	c.BulkMigrate = migration.NewBulkMigrate(
		c.Legacy,
		c.Users,
		c.BatchWriter,
		c.Dedup,
		c.State,
		validator,
		migrationMetrics,
		c.Logger.WithField("component", "migration"),
		migration.BulkConfig{BatchSize: cfg.Migration.BatchSize, Lease: cfg.Migration.Lease},
	)
	c.MigrateUser = migration.NewMigrateUser(c.Legacy, c.RecordWriter, migrationMetrics)
	c.Progress = migration.NewProgress(c.Legacy, c.Users, c.State, cfg.Migration.BatchSize, cfg.Migration.RecordsMaxLimit)

	c.Sessions = session.NewStore(cfg.Auth.SessionDuration)
	c.Auth = auth.NewService(auth.Credentials{
		AdminEmail:        cfg.Auth.AdminEmail,
		AdminPasswordHash: cfg.Auth.AdminPasswordHash,
	}, c.Sessions)
}

// Close releases connections in reverse order of acquisition.
func (c *Container) Close() error {
	var errs []error
	if c.redis != nil {
		errs = append(errs, c.redis.Close())
	}
	if c.pool != nil {
		c.pool.Close()
	}
	for _, g := range []*gorm.DB{c.legacyDB, c.newDB} {
		if g == nil {
			continue
		}
		if sqlDB, err := g.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
