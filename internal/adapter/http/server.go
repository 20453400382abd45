// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"healthvault/internal/app"
	"healthvault/internal/metrics"
)

// OIDCConfig carries the single sign-on provider wiring. Enabled is false
// when no issuer is configured.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// NewOIDC discovers the issuer and builds the OAuth2 configuration.
func NewOIDC(ctx context.Context, issuer, clientID, clientSecret, redirectURL string) (*OIDCConfig, error) {
	if issuer == "" {
		return &OIDCConfig{}, nil
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, err
	}
	return &OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	bmi       *app.BmiService
	charts    *app.ChartService
	vaccines  *app.VaccineService
	appts     *app.AppointmentService
	profiles  *app.ProfileService
	dashboard *app.DashboardService
	export    *app.ExportService
	authSvc   *app.AuthService

	oidcConfig   *OIDCConfig
	metrics      *metrics.Metrics
	log          zerolog.Logger
	webDir       string
	disableAuth  bool
	syncInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	syncers map[int64]*app.Syncer
}

// Options carries the non-service knobs for New.
type Options struct {
	OIDC         *OIDCConfig
	Metrics      *metrics.Metrics
	Log          zerolog.Logger
	WebDir       string
	SyncInterval time.Duration
}

// New creates a Server wired to the given application services.
func New(bmi *app.BmiService, charts *app.ChartService, vaccines *app.VaccineService, appts *app.AppointmentService, profiles *app.ProfileService, dashboard *app.DashboardService, export *app.ExportService, authSvc *app.AuthService, opts Options) *Server {
	if opts.OIDC == nil {
		opts.OIDC = &OIDCConfig{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		bmi:          bmi,
		charts:       charts,
		vaccines:     vaccines,
		appts:        appts,
		profiles:     profiles,
		dashboard:    dashboard,
		export:       export,
		authSvc:      authSvc,
		oidcConfig:   opts.OIDC,
		metrics:      opts.Metrics,
		log:          opts.Log,
		webDir:       opts.WebDir,
		syncInterval: opts.SyncInterval,
		ctx:          ctx,
		cancel:       cancel,
		syncers:      make(map[int64]*app.Syncer),
	}
}

// WithoutAuth disables session validation; requests run as the local user.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// Close stops the background syncers.
func (s *Server) Close() {
	s.cancel()
}

// syncerFor returns the user's snapshot syncer, starting its poll loop on
// first use.
func (s *Server) syncerFor(userID int64) *app.Syncer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sy, ok := s.syncers[userID]; ok {
		return sy
	}
	sy := app.NewSyncer(userID, s.bmi, s.vaccines, s.syncInterval, s.log)
	sy.OnRefresh(s.metrics.SyncRefreshes.Inc)
	s.syncers[userID] = sy
	go sy.Run(s.ctx)
	return sy
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	api.HandleFunc("/config", s.handleConfig)

	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/setup", s.handleSetupUser)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	protected := http.NewServeMux()
	protected.HandleFunc("/profile", s.handleProfile)
	protected.HandleFunc("/profile/notes", s.handleNotes)

	protected.HandleFunc("/bmi", s.handleBmi)
	protected.HandleFunc("/bmi/update", s.handleBmiUpdate)
	protected.HandleFunc("/bmi/delete", s.handleBmiDelete)
	protected.HandleFunc("/bmi/chart", s.handleBmiChart)
	protected.HandleFunc("/bmi/status", s.handleBmiStatus)

	protected.HandleFunc("/vaccines", s.handleVaccines)
	protected.HandleFunc("/vaccines/eligible", s.handleVaccinesEligible)
	protected.HandleFunc("/vaccines/custom", s.handleVaccineCustom)
	protected.HandleFunc("/vaccines/update", s.handleVaccineUpdate)
	protected.HandleFunc("/vaccines/delete", s.handleVaccineDelete)
	protected.HandleFunc("/vaccines/administered", s.handleVaccineAdministered)

	protected.HandleFunc("/appointments", s.handleAppointments)
	protected.HandleFunc("/appointments/update", s.handleAppointmentUpdate)
	protected.HandleFunc("/appointments/delete", s.handleAppointmentDelete)
	protected.HandleFunc("/appointments/completed", s.handleAppointmentCompleted)

	protected.HandleFunc("/dashboard", s.handleDashboard)
	protected.HandleFunc("/export", s.handleExport)

	api.Handle("/", s.authMiddleware(protected))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/metrics", s.metrics.Handler())
	root.Handle("/", spaFromDisk(s.webDir))

	return withNoCache(s.loggingMiddleware(s.metricsMiddleware(root)))
}
