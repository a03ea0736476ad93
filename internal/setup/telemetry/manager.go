package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/robalyx/fuzzy/internal/setup/config"
	"github.com/robalyx/fuzzy/internal/setup/telemetry/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceType represents the type of service being initialized.
type ServiceType int

const (
	ServiceBot ServiceType = iota
	ServiceDB
)

func (s ServiceType) String() string {
	switch s {
	case ServiceBot:
		return "bot"
	case ServiceDB:
		return "db"
	default:
		return "unknown"
	}
}

// GetRequestTimeout returns the Discord request timeout for the given service type.
func (s ServiceType) GetRequestTimeout(cfg *config.Config) time.Duration {
	timeout := 5000
	if s == ServiceBot && cfg.Bot.RequestTimeout > 0 {
		timeout = cfg.Bot.RequestTimeout
	}
	return time.Duration(timeout) * time.Millisecond
}

// Manager handles the creation and management of log files and directories.
// Every run writes into its own timestamped session directory.
type Manager struct {
	instanceID        string // Unique identifier for this program instance
	componentName     string // Component identifier for this instance
	currentSessionDir string // Path to the current session's log directory
	logDir            string // Base directory for all logs
	level             string // Logging level (debug, info, warn, error)
	maxLogsToKeep     int    // Maximum number of log sessions to retain
	maxLogLines       int    // Maximum number of lines to keep in each log file
	tracing           bool   // Forward errors to OpenTelemetry
}

// NewManager creates a new Manager instance.
func NewManager(serviceType ServiceType, logDir string, debugCfg *config.Debug, tracing bool) *Manager {
	return &Manager{
		instanceID:    uuid.New().String(),
		componentName: serviceType.String(),
		logDir:        logDir,
		level:         debugCfg.LogLevel,
		maxLogsToKeep: debugCfg.MaxLogsToKeep,
		maxLogLines:   debugCfg.MaxLogLines,
		tracing:       tracing,
	}
}

// GetLoggers initializes the main and database loggers.
func (lm *Manager) GetLoggers() (*zap.Logger, *zap.Logger, error) {
	if err := lm.setupLogDirectories(); err != nil {
		return nil, nil, err
	}

	mainLogger, err := lm.initLogger(filepath.Join(lm.currentSessionDir, "main.log"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize main logger: %w", err)
	}

	dbLogger, err := lm.initLogger(filepath.Join(lm.currentSessionDir, "database.log"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database logger: %w", err)
	}

	return mainLogger, dbLogger, nil
}

// GetCurrentSessionDir returns the current session directory.
func (lm *Manager) GetCurrentSessionDir() string {
	return lm.currentSessionDir
}

// GetInstanceID returns the unique instance identifier for this program run.
// It doubles as the heartbeat worker id.
func (lm *Manager) GetInstanceID() string {
	return lm.instanceID
}

// setupLogDirectories ensures the base directory exists, removes old sessions
// and creates the directory for this one.
func (lm *Manager) setupLogDirectories() error {
	if err := os.MkdirAll(lm.logDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	if err := lm.rotateLogSessions(); err != nil {
		return fmt.Errorf("failed to rotate log sessions: %w", err)
	}

	name := fmt.Sprintf("%s_%s", time.Now().Format("2006-01-02_15-04-05"), lm.componentName)
	lm.currentSessionDir = filepath.Join(lm.logDir, name)
	if err := os.MkdirAll(lm.currentSessionDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	return nil
}

// initLogger creates a zap logger writing to path, plus the remote error
// reporting cores that are enabled.
func (lm *Manager) initLogger(path string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(lm.level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(logger.NewLogRotator(file, lm.maxLogLines, path)),
			zapLevel,
		),
	}

	errorLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})
	if lm.tracing {
		cores = append(cores, NewCore(errorLevel))
	}
	if sentry.CurrentHub().Client() != nil {
		cores = append(cores, NewSentryCore(errorLevel))
	}

	return zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Development(),
	).With(zap.String("instance_id", lm.instanceID)), nil
}

// rotateLogSessions removes the oldest sessions so that, with the one about
// to be created, at most maxLogsToKeep remain.
func (lm *Manager) rotateLogSessions() error {
	if lm.maxLogsToKeep <= 0 {
		return nil
	}

	sessions, err := filepath.Glob(filepath.Join(lm.logDir, "*"))
	if err != nil {
		return err
	}

	if len(sessions) < lm.maxLogsToKeep {
		return nil
	}

	modTimes := make(map[string]time.Time, len(sessions))
	for _, session := range sessions {
		if info, err := os.Stat(session); err == nil {
			modTimes[session] = info.ModTime()
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return modTimes[sessions[i]].Before(modTimes[sessions[j]])
	})

	for _, session := range sessions[:len(sessions)-lm.maxLogsToKeep+1] {
		if err := os.RemoveAll(session); err != nil {
			return err
		}
	}

	return nil
}
