package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eldercare/eldercare/internal/config"
	"github.com/eldercare/eldercare/internal/domain/accesslog"
	"github.com/eldercare/eldercare/internal/domain/appointment"
	"github.com/eldercare/eldercare/internal/domain/medicalrecord"
	"github.com/eldercare/eldercare/internal/domain/medication"
	"github.com/eldercare/eldercare/internal/domain/patient"
	"github.com/eldercare/eldercare/internal/domain/prescription"
	"github.com/eldercare/eldercare/internal/domain/progressreport"
	"github.com/eldercare/eldercare/internal/domain/user"
	"github.com/eldercare/eldercare/internal/platform/auth"
	"github.com/eldercare/eldercare/internal/platform/db"
	"github.com/eldercare/eldercare/internal/platform/middleware"
	"github.com/eldercare/eldercare/internal/platform/telemetry"
	"github.com/eldercare/eldercare/migrations"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "eldercare-server",
		Short: "Eldercare records API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg != nil && cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	level := zerolog.InfoLevel
	if cfg != nil {
		if l, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
			level = l
		}
	}
	return logger.Level(level)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// openPool loads the configuration and connects to the database.
func openPool(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return cfg, pool, nil
}

func newMigrator(pool *pgxpool.Pool, dir string) *db.Migrator {
	if dir == "" {
		return db.NewMigratorFS(pool, migrations.FS)
	}
	return db.NewMigrator(pool, dir)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}
	cmd.PersistentFlags().String("schema", "", "Target schema (defaults to DB_SCHEMA)")
	cmd.PersistentFlags().String("dir", "", "Migrations directory (defaults to the migrations compiled into the binary)")

	target := func(cmd *cobra.Command, cfg *config.Config) (string, string) {
		schema, _ := cmd.Flags().GetString("schema")
		dir, _ := cmd.Flags().GetString("dir")
		if schema == "" {
			schema = cfg.DBSchema
		}
		return schema, dir
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			schema, dir := target(cmd, cfg)
			to, _ := cmd.Flags().GetInt("to")
			fmt.Printf("Running migrations on schema: %s\n", schema)

			count, err := newMigrator(pool, dir).UpTo(ctx, schema, to)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().Int("to", 0, "Stop after this version (0 applies everything)")
	cmd.AddCommand(upCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			schema, dir := target(cmd, cfg)
			statuses, err := newMigrator(pool, dir).Status(ctx, schema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("Migration status for schema: %s\n", schema)
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	})

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			schema, dir := target(cmd, cfg)
			steps, _ := cmd.Flags().GetInt("steps")
			fmt.Printf("Rolling back %d migration(s) on schema: %s\n", steps, schema)

			count, err := newMigrator(pool, dir).Down(ctx, schema, steps)
			if err != nil {
				return fmt.Errorf("rollback failed after %d migration(s): %w", count, err)
			}
			fmt.Printf("Rolled back %d migration(s).\n", count)
			return nil
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(downCmd)

	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account, e.g. the first overseer",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &user.RegisterRequest{}
			req.Username, _ = cmd.Flags().GetString("username")
			req.Password, _ = cmd.Flags().GetString("password")
			req.Email, _ = cmd.Flags().GetString("email")
			req.Role, _ = cmd.Flags().GetString("role")
			req.Privileges, _ = cmd.Flags().GetString("privileges")
			if first, _ := cmd.Flags().GetString("first-name"); first != "" {
				req.FirstName = &first
			}
			if second, _ := cmd.Flags().GetString("second-name"); second != "" {
				req.SecondName = &second
			}

			ctx := context.Background()
			cfg, pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			ctx, release, err := db.WithSchemaConn(ctx, pool, cfg.DBSchema)
			if err != nil {
				return err
			}
			defer release()

			svc := user.NewService(
				user.NewUserRepoPG(pool),
				auth.NewPasswordHasher(cfg.BcryptCost),
				auth.NewTokenIssuer(cfg.SigningKey(), cfg.JWTIssuer, cfg.JWTTTL),
				db.NewTransactor(pool),
				nil,
				newLogger(cfg),
			)
			u, err := svc.Register(ctx, req)
			if err != nil {
				return err
			}
			fmt.Printf("Created %s (%s/%s) with id %s\n", u.Username, u.Role, u.Privileges, u.ID)
			return nil
		},
	}
	createCmd.Flags().String("username", "", "Account username")
	createCmd.Flags().String("password", "", "Account password")
	createCmd.Flags().String("email", "", "Account email")
	createCmd.Flags().String("role", auth.RoleNurse, "patient, doctor or nurse")
	createCmd.Flags().String("privileges", auth.PrivilegeViewer, "viewer, editor, supervisor, admin or overseer")
	createCmd.Flags().String("first-name", "", "First name")
	createCmd.Flags().String("second-name", "", "Second name")
	_ = createCmd.MarkFlagRequired("username")
	_ = createCmd.MarkFlagRequired("password")
	_ = createCmd.MarkFlagRequired("email")

	cmd.AddCommand(createCmd)
	return cmd
}

// services bundles everything the router needs.
type services struct {
	users         *user.Service
	patients      *patient.Service
	records       *medicalrecord.Service
	medications   *medication.Service
	prescriptions *prescription.Service
	appointments  *appointment.Service
	progress      *progressreport.Service
	accessLog     *accesslog.Service
	metrics       *telemetry.Metrics
	tokens        *auth.TokenIssuer
}

func buildServices(cfg *config.Config, pool *pgxpool.Pool, metrics *telemetry.Metrics, logger zerolog.Logger) *services {
	tx := db.NewTransactor(pool)
	tokens := auth.NewTokenIssuer(cfg.SigningKey(), cfg.JWTIssuer, cfg.JWTTTL)

	userRepo := user.NewUserRepoPG(pool)
	patientRepo := patient.NewPatientRepoPG(pool)
	recordRepo := medicalrecord.NewMedicalRecordRepoPG(pool)
	medRepo := medication.NewMedicationRepoPG(pool)

	return &services{
		users:       user.NewService(userRepo, auth.NewPasswordHasher(cfg.BcryptCost), tokens, tx, metrics, logger),
		patients:    patient.NewService(patientRepo, newAccountDirectory(userRepo), tx, logger),
		records:     medicalrecord.NewService(recordRepo, patientRepo, userRepo, logger),
		medications: medication.NewService(medRepo, recordRepo, cfg.MedicationExpiryDays, logger),
		prescriptions: prescription.NewService(
			prescription.NewPrescriptionRepoPG(pool), recordRepo, medRepo, userRepo, logger),
		appointments: appointment.NewService(
			appointment.NewAppointmentRepoPG(pool), userRepo, patientRepo, tx, cfg.AppointmentSlot(), logger),
		progress:  progressreport.NewService(progressreport.NewProgressReportRepoPG(pool), patientRepo, userRepo, logger),
		accessLog: accesslog.NewService(accesslog.NewAccessLogRepoPG(pool), logger),
		metrics:   metrics,
		tokens:    tokens,
	}
}

// registerRoutes mounts every domain handler under /api/v1.
func registerRoutes(api *echo.Group, s *services) {
	user.NewHandler(s.users).RegisterRoutes(api)
	patient.NewHandler(s.patients).RegisterRoutes(api)
	medicalrecord.NewHandler(s.records).RegisterRoutes(api)
	medication.NewHandler(s.medications).RegisterRoutes(api)
	prescription.NewHandler(s.prescriptions).RegisterRoutes(api)
	appointment.NewHandler(s.appointments).RegisterRoutes(api)
	progressreport.NewHandler(s.progress).RegisterRoutes(api)
	accesslog.NewHandler(s.accessLog).RegisterRoutes(api)
}

func healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version,
	})
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Str("schema", cfg.DBSchema).Msg("connected to database")

	metrics := telemetry.NewMetrics()
	go metrics.WatchPool(ctx, 15*time.Second, func() (int32, int32, int32) {
		s := pool.Stat()
		return s.AcquiredConns(), s.IdleConns(), s.TotalConns()
	})

	svc := buildServices(cfg, pool, metrics, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.Middleware())
	e.Use(middleware.SecurityHeaders(cfg.TLSEnabled))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.Sanitize(logger))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// Auth middleware
	if cfg.ResolvedAuthMode() == config.AuthModeDevelopment {
		e.Use(auth.DevAuthMiddleware(svc.tokens, auth.AuthSkipper))
	} else {
		e.Use(auth.JWTMiddleware(svc.tokens, auth.AuthSkipper))
	}

	// Request-scoped connection, then the access log that writes through it
	e.Use(db.SchemaMiddleware(pool, cfg.DBSchema, auth.InfraSkipper))
	e.Use(middleware.Audit(logger, svc.accessLog))

	// Infrastructure
	e.GET("/health", healthHandler)
	e.GET("/health/db", db.PoolHealthHandler(pool))
	e.GET("/metrics", metrics.Handler())

	// API
	apiV1 := e.Group("/api/v1")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))
	registerRoutes(apiV1, svc)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("auth_mode", cfg.ResolvedAuthMode()).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
