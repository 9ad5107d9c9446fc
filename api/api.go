// Package api Pay Transparency Admin API
//
//	@title			Pay Transparency Admin API
//	@version		1.0
//	@description	API for searching pay transparency reports, managing report status, and publishing announcements
//
// @host		localhost:8080
// @BasePath	/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"paygap/config"
	"paygap/service"
	"paygap/storage"
)

// rateLimiterEntry holds a per-client rate limiter with last seen time
type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// API holds the HTTP server and its dependencies
type API struct {
	router          *mux.Router
	server          *http.Server
	reportSvc       *service.ReportService
	announcementSvc *service.AnnouncementService
	adminUsers      storage.AdminUserStore
	config          *config.Config
	logger          *zap.SugaredLogger
	rateLimiters    map[string]*rateLimiterEntry
	rateLimitersMu  sync.Mutex
	stopCh          chan struct{}
}

// NewAPI creates the API server and registers its routes
func NewAPI(reportSvc *service.ReportService, announcementSvc *service.AnnouncementService, adminUsers storage.AdminUserStore, config *config.Config, logger *zap.SugaredLogger) *API {
	api := &API{
		router:          mux.NewRouter(),
		reportSvc:       reportSvc,
		announcementSvc: announcementSvc,
		adminUsers:      adminUsers,
		config:          config,
		logger:          logger,
		rateLimiters:    make(map[string]*rateLimiterEntry),
		stopCh:          make(chan struct{}),
	}
	api.setupRoutes()
	go api.cleanupRateLimiters()
	return api
}

// setupRoutes registers all routes
func (a *API) setupRoutes() {
	a.router.Use(a.corsMiddleware)
	a.router.Use(a.rateLimitMiddleware)
	a.router.Use(a.metricsMiddleware)

	a.router.HandleFunc("/v1/auth/login", a.login).Methods("POST")

	a.router.HandleFunc("/v1/reports", a.withAuth(a.searchReports, false)).Methods("GET")
	a.router.HandleFunc("/v1/reports/{id}", a.withAuth(a.getReport, true)).Methods("GET")
	a.router.HandleFunc("/v1/reports/{id}", a.withAuth(a.patchReport, true)).Methods("PATCH")
	a.router.HandleFunc("/v1/reports/{id}/admin-action-history", a.withAuth(a.getReportActionHistory, true)).Methods("GET")

	a.router.HandleFunc("/v1/announcements", a.withAuth(a.searchAnnouncements, false)).Methods("GET")
	a.router.HandleFunc("/v1/announcements", a.withAuth(a.createAnnouncement, true)).Methods("POST")
	a.router.HandleFunc("/v1/announcements", a.withAuth(a.patchAnnouncements, true)).Methods("PATCH")
	a.router.HandleFunc("/v1/announcements/{id}", a.withAuth(a.updateAnnouncement, true)).Methods("PUT")

	a.router.HandleFunc("/health", a.healthCheck).Methods("GET")
	a.router.Handle("/metrics", promhttp.Handler())
	a.router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
}

// Handler exposes the router for tests
func (a *API) Handler() http.Handler {
	return a.router
}

// Start starts the API server
func (a *API) Start(addr string) error {
	a.server = &http.Server{
		Addr:         addr,
		Handler:      a.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return a.server.ListenAndServe()
}

// StartTLS starts the API server with TLS
func (a *API) StartTLS(addr, certFile, keyFile string) error {
	a.server = &http.Server{
		Addr:         addr,
		Handler:      a.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return a.server.ListenAndServeTLS(certFile, keyFile)
}

// Stop stops the API server
func (a *API) Stop(ctx context.Context) error {
	close(a.stopCh)
	if a.server != nil {
		return a.server.Shutdown(ctx)
	}
	return nil
}

// healthCheck godoc
//
//	@Summary		Health check
//	@Description	Returns service liveness
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
func (a *API) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
