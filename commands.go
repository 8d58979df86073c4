package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/inficom-solutions/portfolio-backend/api"
	"github.com/inficom-solutions/portfolio-backend/config"
	"github.com/inficom-solutions/portfolio-backend/database"
	"github.com/inficom-solutions/portfolio-backend/media"
	"github.com/inficom-solutions/portfolio-backend/models"
	"github.com/inficom-solutions/portfolio-backend/services"
)

func newRootCommand() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "portfolio",
		Short:         "Content API for the portfolio site",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	load := func(cmd *cobra.Command) (map[string]string, error) {
		return loadConfig(cmd.Context(), envFile)
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the orphaned image sweeper",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	root.RunE = serveCmd.RunE

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the relational schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			db, err := database.OpenGorm(cfg)
			if err != nil {
				return err
			}
			defer database.New(db).Close(cmd.Context())
			return models.Migrate(db)
		},
	}

	var outPath string
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate typed query helpers for the models",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			db, err := database.OpenGorm(cfg)
			if err != nil {
				return err
			}
			defer database.New(db).Close(cmd.Context())
			return models.GenerateModels(db, outPath)
		},
	}
	generateCmd.Flags().StringVar(&outPath, "out", "./query", "output directory for generated code")

	columnReportCmd := &cobra.Command{
		Use:   "column-report",
		Short: "List database columns that no model field maps to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			db, err := database.OpenGorm(cfg)
			if err != nil {
				return err
			}
			defer database.New(db).Close(cmd.Context())
			_, err = models.GenerateColumnMismatchReport(db, cmd.OutOrStdout())
			return err
		},
	}

	seedFeaturesCmd := &cobra.Command{
		Use:   "seed-features",
		Short: "Insert the default landing page features into an empty store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close(cmd.Context())
			n, err := seedDefaultFeatures(cmd.Context(), db.FeatureRepo(), time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d features\n", n)
			return nil
		},
	}

	hashPasswordCmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash to use as ADMIN_PASSWORD_HASH",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			hash, err := services.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	root.AddCommand(serveCmd, migrateCmd, generateCmd, columnReportCmd, seedFeaturesCmd, hashPasswordCmd)
	return root
}

// loadConfig reads the dotenv file, the environment and, when
// SSM_PARAMETER_PATH is set, AWS Parameter Store. It also configures logging.
func loadConfig(ctx context.Context, envFile string) (map[string]string, error) {
	if err := godotenv.Load(envFile); err != nil {
		log.Debug().Err(err).Str("path", envFile).Msg("No .env file loaded, using existing environment variables")
	}

	cfg := config.New()
	if path := config.GetString(cfg, "SSM_PARAMETER_PATH", ""); path != "" {
		if err := config.LoadSSM(ctx, cfg, path); err != nil {
			return nil, err
		}
	}

	setupLogger(cfg)
	return cfg, nil
}

func setupLogger(cfg map[string]string) {
	level, err := zerolog.ParseLevel(config.GetString(cfg, "LOG_LEVEL", "info"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.GetString(cfg, "LOG_FORMAT", "console") == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func serve(ctx context.Context, cfg map[string]string) error {
	log.Info().Msg("Initializing app...")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	currentDB, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer currentDB.Close(context.Background())

	host, err := media.NewHost(ctx, cfg)
	if err != nil {
		return err
	}
	queue, err := media.NewQueue(cfg)
	if err != nil {
		return err
	}
	lifecycle := media.NewLifecycle(host, queue)
	sweeper := media.NewSweeperFromConfig(host, queue, cfg)

	auth, err := newAuthenticator(cfg)
	if err != nil {
		return err
	}

	app := api.App{
		Database:  currentDB,
		Media:     lifecycle,
		Auth:      auth,
		Contact:   services.NewContactRelay(newMailer(cfg), contactRecipients(cfg)),
		UploadDir: media.UploadDir(cfg),
	}

	server, err := api.NewServer(app, cfg)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, config.GetSeconds(cfg, "SHUTDOWN_TIMEOUT_SECONDS", 30))
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})

	err = g.Wait()
	log.Info().Err(err).Msg("Closing server")
	return err
}

// openDatabase connects to the configured store. Relational schemas are
// migrated unless DB_AUTO_MIGRATE is false.
func openDatabase(ctx context.Context, cfg map[string]string) (database.Database, error) {
	if config.GetString(cfg, "DB_TYPE", database.TypePostgres) == database.TypeMongo {
		return database.Open(ctx, cfg)
	}

	db, err := database.OpenGorm(cfg)
	if err != nil {
		return database.Database{}, err
	}
	current := database.New(db)
	if config.GetBool(cfg, "DB_AUTO_MIGRATE", true) {
		if err := models.Migrate(db); err != nil {
			current.Close(ctx)
			return database.Database{}, err
		}
	}
	return current, nil
}

func newAuthenticator(cfg map[string]string) (*services.Authenticator, error) {
	hash := config.GetString(cfg, "ADMIN_PASSWORD_HASH", "")
	if hash == "" {
		if password := config.GetString(cfg, "ADMIN_PASSWORD", ""); password != "" {
			log.Warn().Msg("ADMIN_PASSWORD is set in plain text, prefer ADMIN_PASSWORD_HASH")
			var err error
			if hash, err = services.HashPassword(password); err != nil {
				return nil, err
			}
		}
	}
	return services.NewAuthenticator(
		config.GetString(cfg, "ADMIN_EMAIL", ""),
		hash,
		config.GetString(cfg, "JWT_SECRET", ""),
		time.Duration(config.GetInt(cfg, "JWT_TTL_HOURS", 24))*time.Hour,
	)
}

func newMailer(cfg map[string]string) services.Mailer {
	apiKey := config.GetString(cfg, "RESEND_API_KEY", "")
	from := config.GetString(cfg, "RESEND_FROM_EMAIL", "")
	if apiKey == "" || from == "" {
		log.Warn().Msg("RESEND_API_KEY or RESEND_FROM_EMAIL missing, contact requests will only be logged")
		return services.LogMailer{}
	}
	return services.NewResendMailer(apiKey, from)
}

func contactRecipients(cfg map[string]string) []string {
	return config.GetStrings(cfg, "CONTACT_RECIPIENTS", config.GetStrings(cfg, "ADMIN_EMAIL", nil))
}

// seedDefaultFeatures inserts the default features when the store has none.
func seedDefaultFeatures(ctx context.Context, store database.Store[*models.Feature], now time.Time) (int, error) {
	existing, err := store.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		log.Info().Int("existing", len(existing)).Msg("Features already present, skipping seed")
		return 0, nil
	}

	features := models.DefaultFeatures()
	for i, f := range features {
		f.SetID(uuid.NewString())
		// Spaced out so the list keeps the seed order, first feature newest.
		f.Touch(now.Add(-time.Duration(i) * time.Second))
		if err := store.Add(ctx, f); err != nil {
			return i, err
		}
	}
	return len(features), nil
}
