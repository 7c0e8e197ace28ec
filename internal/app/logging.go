package app

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns the console logger handed to the sensor layer. debug
// enables the driver's step-by-step init trace.
func NewLogger(debug bool) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		cfg.Level.SetLevel(zapcore.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		log.Printf("zap logger: %v, sensor logs disabled", err)
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

func newSensorLogger() *zap.SugaredLogger {
	return NewLogger(false)
}
