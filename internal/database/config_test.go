package database

import (
	"testing"

	"leadcaller/internal/config"
	"leadcaller/internal/store"

	"github.com/rs/zerolog"
	"gorm.io/gorm/logger"
)

func TestGormLevel(t *testing.T) {
	tests := []struct {
		in   zerolog.Level
		want logger.LogLevel
	}{
		{zerolog.TraceLevel, logger.Info},
		{zerolog.DebugLevel, logger.Info},
		{zerolog.InfoLevel, logger.Warn},
		{zerolog.WarnLevel, logger.Warn},
		{zerolog.ErrorLevel, logger.Error},
	}
	for _, tt := range tests {
		if got := gormLevel(tt.in); got != tt.want {
			t.Fatalf("gormLevel(%s) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOpenStoreMemory(t *testing.T) {
	cfg := &config.Config{Database: config.Database{Driver: config.DriverMemory}}
	st, closeStore, err := OpenStore(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenStore returned error: %v", err)
	}
	if _, ok := st.(*store.Memory); !ok {
		t.Fatalf("expected memory store, got %T", st)
	}
	if err := closeStore(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
