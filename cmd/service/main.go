package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/2beens/workoutplan/internal"
	"github.com/2beens/workoutplan/internal/config"
	"github.com/2beens/workoutplan/internal/logging"

	log "github.com/sirupsen/logrus"
)

// secrets are never part of config.toml
type secrets struct {
	dbPassword       string
	redisPassword    string
	mailerAPIKey     string
	sentryDSN        string
	honeycombEnabled bool
}

func readSecrets(cfg *config.Config) secrets {
	s := secrets{
		dbPassword:       os.Getenv("WORKOUTPLAN_DB_PASS"),
		redisPassword:    os.Getenv("WORKOUTPLAN_REDIS_PASS"),
		mailerAPIKey:     os.Getenv("MAILER_API_KEY"),
		sentryDSN:        os.Getenv("SENTRY_DSN"),
		honeycombEnabled: os.Getenv("HONEYCOMB_ENABLED") == "true",
	}

	if s.dbPassword == "" && cfg.PostgresUser != "" && cfg.PostgresUser != "postgres" {
		log.Warnf("db password not set for user [%s], use WORKOUTPLAN_DB_PASS", cfg.PostgresUser)
	}
	if s.redisPassword == "" {
		log.Errorln("redis password not set, use WORKOUTPLAN_REDIS_PASS")
	}
	if s.mailerAPIKey == "" && cfg.MailerRelayURL != "" {
		log.Errorln("mailer api key not set, use MAILER_API_KEY")
	}
	if s.sentryDSN == "" && cfg.SentryEnabled {
		log.Warnln("sentry enabled but SENTRY_DSN not set")
	}

	if !s.honeycombEnabled {
		log.Debugln("honeycomb tracing disabled")
	} else {
		if os.Getenv("HONEYCOMB_API_KEY") == "" {
			log.Warnln("HONEYCOMB_API_KEY env var not set")
		}
		if os.Getenv("OTEL_SERVICE_NAME") == "" {
			log.Warnln("OTEL_SERVICE_NAME env var not set")
		}
	}

	return s
}

func main() {
	fmt.Println("starting workoutplan service ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development | ddev | dockerdev ]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	sec := readSecrets(cfg)

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        sec.sentryDSN,
		SentryServerName: "workoutplan-service",
	})
	log.Infof("running in [%s] environment, listening on %s:%d", cfg.Environment, cfg.Host, cfg.Port)

	versionInfo, err := lastCommitHash()
	if err != nil {
		log.Tracef("no version info from git: %s", err)
	} else {
		log.Debugf("running version: %s", versionInfo)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := internal.NewServer(ctx, internal.NewServerParams{
		Config:                  cfg,
		VersionInfo:             versionInfo,
		DBPassword:              sec.dbPassword,
		RedisPassword:           sec.redisPassword,
		MailerAPIKey:            sec.mailerAPIKey,
		HoneycombTracingEnabled: sec.honeycombEnabled,
	})
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(cfg.Host, cfg.Port)

	<-ctx.Done()
	log.Warnln("shutdown signal received, stopping ...")
	server.GracefulShutdown()
}

// lastCommitHash reads HEAD of the repo the binary is started from.
func lastCommitHash() (string, error) {
	out, err := exec.Command("git", "rev-parse", "HEAD").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
