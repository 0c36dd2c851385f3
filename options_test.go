package md5vault

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func TestDefaultStoreConfig(t *testing.T) {
	cfg := defaultStoreConfig()

	if cfg.path != MemoryPath {
		t.Errorf("path = %q, want %q", cfg.path, MemoryPath)
	}
	if cfg.maxUsernameLength != 32 {
		t.Errorf("maxUsernameLength = %d, want 32", cfg.maxUsernameLength)
	}
	if cfg.loginLimit != rate.Inf {
		t.Errorf("loginLimit = %v, want rate.Inf", cfg.loginLimit)
	}
	if cfg.logger == nil || cfg.clock == nil {
		t.Error("logger and clock must have defaults")
	}
	if cfg.registerer != nil {
		t.Error("registerer should default to nil")
	}
}

func TestWithPath(t *testing.T) {
	cfg := defaultStoreConfig()
	WithPath("/tmp/vault.db")(cfg)
	if cfg.path != "/tmp/vault.db" {
		t.Errorf("path = %q, want /tmp/vault.db", cfg.path)
	}
}

func TestWithLogger(t *testing.T) {
	cfg := defaultStoreConfig()
	logger := zap.NewExample()
	WithLogger(logger)(cfg)
	if cfg.logger != logger {
		t.Error("logger was not set")
	}

	WithLogger(nil)(cfg)
	if cfg.logger == nil {
		t.Error("WithLogger(nil) should fall back to a nop logger")
	}
}

func TestWithRegisterer(t *testing.T) {
	cfg := defaultStoreConfig()
	reg := prometheus.NewRegistry()
	WithRegisterer(reg)(cfg)
	if cfg.registerer != reg {
		t.Error("registerer was not set")
	}
}

func TestWithLoginRateLimit(t *testing.T) {
	cfg := defaultStoreConfig()
	WithLoginRateLimit(5, 10)(cfg)
	if cfg.loginLimit != 5 {
		t.Errorf("loginLimit = %v, want 5", cfg.loginLimit)
	}
	if cfg.loginBurst != 10 {
		t.Errorf("loginBurst = %d, want 10", cfg.loginBurst)
	}
}

func TestWithMaxUsernameLength(t *testing.T) {
	cfg := defaultStoreConfig()
	WithMaxUsernameLength(8)(cfg)
	if cfg.maxUsernameLength != 8 {
		t.Errorf("maxUsernameLength = %d, want 8", cfg.maxUsernameLength)
	}
}

func TestWithClock(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	cfg := defaultStoreConfig()
	WithClock(func() time.Time { return fixed })(cfg)
	if got := cfg.clock(); !got.Equal(fixed) {
		t.Errorf("clock() = %v, want %v", got, fixed)
	}

	WithClock(nil)(cfg)
	if got := cfg.clock(); !got.Equal(fixed) {
		t.Error("WithClock(nil) should keep the previous clock")
	}
}
