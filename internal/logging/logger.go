package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/2beens/workoutplan/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileMaxSizeMB  = 50
	logFileMaxBackups = 20
	sentrySampleRate  = 0.2
)

type LoggerSetupParams struct {
	LogFileName      string
	LogToStdout      bool
	LogLevel         string
	LogFormatJSON    bool
	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string
}

// Setup configures the global logrus logger: format, level, outputs and the sentry hook.
func Setup(params LoggerSetupParams) {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetLevel(GetLevel(params.LogLevel))

	if params.SentryEnabled {
		if err := setupSentry(params); err != nil {
			logrus.Errorf("sentry init: %s", err)
		} else {
			logrus.Infoln("sentry set up successfully")
		}
	}

	out, description := newOutput(params.LogFileName, params.LogToStdout)
	logrus.SetOutput(out)
	logrus.Infof("writing logs to %s", description)
}

func setupSentry(params LoggerSetupParams) error {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              params.SentryDSN,
		Environment:      params.Environment,
		ServerName:       params.SentryServerName,
		TracesSampleRate: sentrySampleRate,
	})
	if err != nil {
		return err
	}

	logrus.AddHook(NewSentryHook([]logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}))
	return nil
}

// newOutput picks the log writer: stdout alone when no file is set, otherwise a rotating
// file, optionally mirrored to stdout.
func newOutput(fileName string, toStdout bool) (io.Writer, string) {
	if fileName == "" {
		return os.Stdout, "stdout"
	}

	if filepath.Ext(fileName) != ".log" {
		fileName += ".log"
	}

	rotating := &lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    logFileMaxSizeMB,
		MaxBackups: logFileMaxBackups,
		Compress:   true,
	}

	if toStdout {
		return pkg.NewCombinedWriter(os.Stdout, rotating), fileName + " and stdout"
	}
	return rotating, fileName
}

// GetLevel maps a config level name to a logrus level, falling back to trace.
func GetLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.TraceLevel
	}
	return parsed
}
