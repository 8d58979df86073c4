package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/inficom-solutions/portfolio-backend/config"
	"github.com/inficom-solutions/portfolio-backend/errs"
	zlog "github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

const (
	TypePostgres = "postgres"
	TypeSupabase = "supa"
	TypeSQLite   = "sqlite"
	TypeMongo    = "mongo"
)

// Open connects to the store selected by DB_TYPE and returns the repositories.
func Open(ctx context.Context, cfg map[string]string) (Database, error) {
	if config.GetString(cfg, "DB_TYPE", TypePostgres) == TypeMongo {
		db, err := OpenMongo(ctx, cfg)
		if err != nil {
			return Database{}, err
		}
		return withIndexes(ctx, NewMongo(db))
	}

	db, err := OpenGorm(cfg)
	if err != nil {
		return Database{}, err
	}
	return New(db), nil
}

// withIndexes creates the indexes of current, closing it when that fails.
func withIndexes(ctx context.Context, current Database) (Database, error) {
	if err := current.EnsureIndexes(ctx); err != nil {
		if closeErr := current.Close(context.WithoutCancel(ctx)); closeErr != nil {
			zlog.Warn().Err(closeErr).Msg("Could not close database after index failure")
		}
		return Database{}, fmt.Errorf("ensure indexes: %w", err)
	}
	return current, nil
}

// OpenGorm opens a relational connection for DB_TYPE postgres, supa or sqlite.
// Read replicas listed in DB_REPLICA_DSNS are registered with dbresolver.
func OpenGorm(cfg map[string]string) (*gorm.DB, error) {
	dbType := config.GetString(cfg, "DB_TYPE", TypePostgres)
	zlog.Info().Str("dbType", dbType).Msg("Connecting to database")

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	gormConfig := &gorm.Config{
		PrepareStmt: false,
		Logger:      newLogger,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch dbType {
	case TypeSQLite:
		db, err = gorm.Open(sqlite.Open(config.GetString(cfg, "SQLITE_PATH", "portfolio.db")), gormConfig)
	case TypePostgres, TypeSupabase:
		connStr, dsnErr := postgresDSN(cfg, dbType)
		if dsnErr != nil {
			return nil, dsnErr
		}
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  connStr,
			PreferSimpleProtocol: true,
		}), gormConfig)
		if err == nil {
			err = registerReplicas(db, config.GetStrings(cfg, "DB_REPLICA_DSNS", nil))
		}
	default:
		return nil, errs.NewInvalidConfigError("DB_TYPE", fmt.Sprintf("unsupported value %q", dbType))
	}
	if err != nil {
		return nil, errs.NewDatabaseError("connect", dbType, err)
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, errs.NewDatabaseError("ping", dbType, err)
	}
	return db, nil
}

// postgresDSN builds the connection string, preferring DATABASE_URL when set.
func postgresDSN(cfg map[string]string, dbType string) (string, error) {
	if dsn := config.GetString(cfg, "DATABASE_URL", ""); dsn != "" {
		return dsn, nil
	}

	prefix, sslMode := "DB_", config.GetString(cfg, "DB_SSLMODE", "disable")
	if dbType == TypeSupabase {
		prefix, sslMode = "SUPABASE_DB_", "require"
	}
	host := config.GetString(cfg, prefix+"HOST", "")
	if host == "" {
		return "", errs.NewConfigError(prefix + "HOST")
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host,
		config.GetString(cfg, prefix+"USER", ""),
		config.GetString(cfg, prefix+"PASSWORD", ""),
		config.GetString(cfg, prefix+"NAME", ""),
		config.GetString(cfg, prefix+"PORT", "5432"),
		sslMode,
	), nil
}

func registerReplicas(db *gorm.DB, dsns []string) error {
	if len(dsns) == 0 {
		return nil
	}
	replicas := make([]gorm.Dialector, 0, len(dsns))
	for _, dsn := range dsns {
		replicas = append(replicas, postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}))
	}
	zlog.Info().Int("replicas", len(replicas)).Msg("Registering read replicas")
	return db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   dbresolver.RandomPolicy{},
	}))
}

// OpenMongo connects to MONGODB_URI and returns the MONGODB_DATABASE handle.
func OpenMongo(ctx context.Context, cfg map[string]string) (*mongo.Database, error) {
	uri := config.GetString(cfg, "MONGODB_URI", "")
	if uri == "" {
		return nil, errs.NewConfigError("MONGODB_URI")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errs.NewDatabaseError("connect", TypeMongo, err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errs.NewDatabaseError("ping", TypeMongo, err)
	}

	name := config.GetString(cfg, "MONGODB_DATABASE", "portfolio")
	zlog.Info().Str("database", name).Msg("Connected to MongoDB")
	return client.Database(name), nil
}
