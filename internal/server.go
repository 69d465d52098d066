package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/multierr"

	"github.com/2beens/workoutplan/internal/auth"
	"github.com/2beens/workoutplan/internal/calendar"
	"github.com/2beens/workoutplan/internal/character"
	"github.com/2beens/workoutplan/internal/config"
	"github.com/2beens/workoutplan/internal/db"
	"github.com/2beens/workoutplan/internal/middleware"
	"github.com/2beens/workoutplan/internal/routine"
	"github.com/2beens/workoutplan/internal/schedule"
	"github.com/2beens/workoutplan/internal/telemetry/metrics"
	"github.com/2beens/workoutplan/internal/telemetry/tracing"
	"github.com/2beens/workoutplan/internal/workoutlog"
	"github.com/2beens/workoutplan/pkg"
)

const sessionsCleanupInterval = 8 * time.Hour

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config *config.Config
	dbPool *pgxpool.Pool

	redisClient *redis.Client
	authService *auth.Service
	buffers     *routine.BufferStore

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	DBPassword              string
	RedisPassword           string
	MailerAPIKey            string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		DBUser:         params.Config.PostgresUser,
		DBPassword:     params.DBPassword,
		MaxConns:       params.Config.PostgresMaxConns,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("postgres not reachable yet: %s", err)
	}

	if err := db.Migrate(ctx, dbPool); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("backend", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
	})
	if params.HoneycombTracingEnabled {
		rdb.AddHook(redisotel.NewTracingHook())
	}

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Errorf("redis at [%s] not reachable: %s", rdb.Options().Addr, err)
	}

	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "workoutplan-backend")
	if err != nil {
		return nil, err
	}

	var mailer auth.Mailer = auth.LogMailer{}
	if params.Config.MailerRelayURL != "" {
		mailer = auth.NewHTTPMailer(params.Config.MailerRelayURL, params.MailerAPIKey)
	} else {
		log.Warnln("mailer relay url not set, mails will only be logged")
	}

	sessions := auth.NewSessionStore(params.Config.SessionTTL(), rdb)
	go sessions.RunCleaner(ctx, sessionsCleanupInterval)

	authService := auth.NewService(auth.ServiceParams{
		Users:         auth.NewUserRepo(dbPool),
		Sessions:      sessions,
		Tokens:        auth.NewTokenStore(rdb),
		Mailer:        mailer,
		Metrics:       metricsManager,
		PublicBaseURL: params.Config.PublicBaseURL,
		MailSender:    params.Config.MailerSender,
	})

	// pending routine edits live as long as the session they belong to
	buffers := routine.NewBufferStore(rdb, params.Config.SessionTTL())
	authService.OnLogout(buffers.Clear)

	return &Server{
		config:      params.Config,
		dbPool:      dbPool,
		versionInfo: params.VersionInfo,

		redisClient: rdb,
		authService: authService,
		buffers:     buffers,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, s.versionInfo)
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/", s.handleRoot).Methods("GET").Name("root")
	r.HandleFunc("/version", s.handleVersion).Methods("GET").Name("version")

	authRouter := r.PathPrefix("/a").Subrouter()
	auth.NewHandler(s.authService).SetupRoutes(authRouter)
	authRouter.Use(middleware.RateLimit(
		redis_rate.NewLimiter(s.redisClient),
		"auth",
		s.config.LoginRateLimitAllowedPerMin,
		s.metricsManager,
	))

	scheduleRepo := schedule.NewRepo(s.dbPool)
	schedule.NewHandler(scheduleRepo).SetupRoutes(r.PathPrefix("/schedule").Subrouter())

	routineHandler := routine.NewHandler(
		routine.NewService(scheduleRepo, s.metricsManager),
		s.buffers,
	)
	routineHandler.SetupRoutes(r.PathPrefix("/routine").Subrouter())

	logRepo := workoutlog.NewRepo(s.dbPool)
	calendarService := calendar.NewService(scheduleRepo, logRepo)
	calendar.NewHandler(calendarService, calendarService.Reconciler()).
		SetupRoutes(r.PathPrefix("/calendar").Subrouter())

	workoutlog.NewHandler(logRepo, s.metricsManager).SetupRoutes(r.PathPrefix("/log").Subrouter())

	characterService := character.NewService(character.NewRepo(s.dbPool), s.config.CharacterCacheSize)
	character.NewHandler(characterService).SetupRoutes(r.PathPrefix("/character").Subrouter())

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.NewAuthMiddlewareHandler(s.authService).AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

const (
	shutdownTimeout    = 15 * time.Second
	sentryFlushTimeout = 5 * time.Second
)

// listen runs srv in the background. Failing to listen is fatal, closing is not.
func listen(name string, srv *http.Server) {
	go func() {
		log.Infof("%s listening on [%s]", name, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("%s, listen and serve: %s", name, err)
		}
	}()
}

// Serve starts the API server on host:port and the metrics server on the configured
// prometheus address. It does not block.
func (s *Server) Serve(host string, port int) {
	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(host, strconv.Itoa(port)),
		Handler:      s.routerSetup(),
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{
		Registry:          s.promRegistry,
		EnableOpenMetrics: true,
	}))
	s.metricsHttpServer = &http.Server{
		Addr:              net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort),
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	listen("api server", s.httpServer)
	listen("metrics server", s.metricsHttpServer)

	s.metricsManager.GaugeLifeSignal.Set(1)
}

// GracefulShutdown stops accepting requests, waits for running ones and then releases
// tracing, redis and the db pool, in that order.
func (s *Server) GracefulShutdown() {
	log.Infoln("graceful shutdown ...")
	s.metricsManager.GaugeLifeSignal.Set(0)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error
	for name, srv := range map[string]*http.Server{"api server": s.httpServer, "metrics server": s.metricsHttpServer} {
		if srv == nil {
			continue
		}
		if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown %s: %w", name, shutdownErr))
		}
	}

	if s.otelShutdown != nil {
		s.otelShutdown()
	}

	if s.redisClient != nil {
		if closeErr := s.redisClient.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("close redis client: %w", closeErr))
		}
	}

	if s.dbPool != nil {
		// blocks until every acquired conn is released
		s.dbPool.Close()
	}

	if !sentry.Flush(sentryFlushTimeout) {
		log.Debugln("sentry flush timed out or sentry not set up")
	}

	if err != nil {
		log.Errorf("graceful shutdown: %s", err)
		return
	}
	log.Infoln("shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
