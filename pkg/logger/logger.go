package logger

import (
	"fmt"

	"go.uber.org/zap"
)

var InfoLogger, FatalLogger *zap.Logger

var (
	serviceName = "default"
)

// Init builds the process loggers. Must be called once before any logging;
// calls before Init fall through to a lazily built production logger.
func Init() error {
	l, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("build zap logger: %w", err)
	}
	InfoLogger = l
	FatalLogger = l
	return nil
}

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

func ensure() {
	if InfoLogger == nil {
		InfoLogger = zap.Must(zap.NewProduction())
	}
	if FatalLogger == nil {
		FatalLogger = InfoLogger
	}
}

func Info(format string, args ...interface{}) {
	ensure()

	msg := fmt.Sprintf(format, args...)
	InfoLogger.With(
		zap.String("service", serviceName),
	).Info(msg)
}

func Error(format string, args ...interface{}) {
	ensure()

	msg := fmt.Sprintf(format, args...)
	InfoLogger.With(
		zap.String("service", serviceName),
	).Error(msg)
}

func Fatal(format string, args ...interface{}) {
	ensure()

	msg := fmt.Sprintf(format, args...)
	FatalLogger.With(
		zap.String("service", serviceName),
	).Fatal(msg)
}
