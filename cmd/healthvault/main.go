package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	adapthttp "healthvault/internal/adapter/http"
	"healthvault/internal/adapter/memory"
	"healthvault/internal/adapter/postgres"
	"healthvault/internal/adapter/redis"
	"healthvault/internal/adapter/sqlite"
	"healthvault/internal/app"
	"healthvault/internal/config"
	"healthvault/internal/domain"
	"healthvault/internal/metrics"
)

func main() {
	root := &cobra.Command{
		Use:           "healthvault",
		Short:         "Family health record service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE:  runServe,
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version)
		},
	})

	if err := root.Execute(); err != nil {
		log := zerolog.New(os.Stderr)
		log.Error().Err(err).Msg("fatal")
		os.Exit(1)
	}
}

// version is stamped by the build via -ldflags "-X main.version=...".
var version = "dev"

// repos bundles the driver-specific repository set behind the domain ports.
type repos struct {
	bmi      domain.BmiRepository
	vaccines domain.VaccineRepository
	appts    domain.AppointmentRepository
	profiles domain.ProfileRepository
	notes    domain.NoteRepository
	users    domain.UserRepository
	sessions domain.SessionRepository

	close func() error
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := openRepos(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = r.close() }()

	bmi := app.NewBmiService(r.bmi)
	charts := app.NewChartService(r.bmi)
	vaccines := app.NewVaccineService(r.vaccines, r.profiles)
	appts := app.NewAppointmentService(r.appts)
	profiles := app.NewProfileService(r.profiles, r.notes)
	dashboard := app.NewDashboardService(vaccines, appts, profiles, nil)
	export := app.NewExportService(bmi, vaccines, appts)
	authSvc := app.NewAuthService(r.users, r.sessions)

	oidcCfg, err := adapthttp.NewOIDC(ctx, cfg.OIDCIssuer, cfg.OIDCClientID, cfg.OIDCClientSecret, cfg.OIDCRedirectURL)
	if err != nil {
		return err
	}

	srv := adapthttp.New(bmi, charts, vaccines, appts, profiles, dashboard, export, authSvc, adapthttp.Options{
		OIDC:         oidcCfg,
		Metrics:      metrics.New(),
		Log:          log,
		WebDir:       cfg.WebDir,
		SyncInterval: cfg.SyncInterval,
	})
	defer srv.Close()

	// sqlite runs single-user with no users table, so auth cannot work there.
	if cfg.DisableAuth || cfg.Driver == "sqlite" {
		srv.WithoutAuth()
		log.Warn().Msg("authentication disabled")
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("driver", cfg.Driver).Msg("listening")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Logger{}, err
	}
	var out = os.Stderr
	log := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if cfg.IsDev() {
		log = log.Output(zerolog.ConsoleWriter{Out: out})
	}
	return log, nil
}

func openRepos(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*repos, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		profileRepo := postgres.NewProfileRepo(db)

		r := &repos{
			bmi:      postgres.NewBmiRepo(db),
			vaccines: postgres.NewVaccineRepo(db),
			appts:    postgres.NewAppointmentRepo(db),
			profiles: profileRepo,
			notes:    profileRepo,
			users:    db,
			sessions: postgres.NewSessionRepo(db),
			close:    db.Close,
		}

		// Sessions move to redis when configured, which lets multiple
		// replicas share login state.
		if cfg.RedisURL != "" {
			sessions, err := redis.Open(ctx, cfg.RedisURL)
			if err != nil {
				_ = db.Close()
				return nil, err
			}
			log.Info().Msg("redis session store enabled")
			r.sessions = sessions
			r.close = func() error {
				_ = sessions.Close()
				return db.Close()
			}
		}
		return r, nil

	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		profileRepo := db.NewProfileRepo()

		// No users or sessions tables in local mode; auth is disabled and
		// these repos only satisfy the wiring.
		mem := memory.New()
		return &repos{
			bmi:      db.NewBmiRepo(),
			vaccines: db.NewVaccineRepo(),
			appts:    db.NewAppointmentRepo(),
			profiles: profileRepo,
			notes:    profileRepo,
			users:    mem,
			sessions: mem.NewSessionRepo(),
			close:    db.Close,
		}, nil

	case "memory":
		mem := memory.New()
		profileRepo := mem.NewProfileRepo()
		return &repos{
			bmi:      mem.NewBmiRepo(),
			vaccines: mem.NewVaccineRepo(),
			appts:    mem.NewAppointmentRepo(),
			profiles: profileRepo,
			notes:    profileRepo,
			users:    mem,
			sessions: mem.NewSessionRepo(),
			close:    func() error { return nil },
		}, nil

	default:
		return nil, errors.New("unknown driver " + cfg.Driver)
	}
}
