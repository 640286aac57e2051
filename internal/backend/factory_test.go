package backend

import (
	"context"
	"testing"

	"tripledger/internal/config"
)

func TestBackendTypeIsValid(t *testing.T) {
	tests := []struct {
		bt   BackendType
		want bool
	}{
		{MemoryBackend, true},
		{SQLiteBackend, true},
		{BackendType("sheets"), false},
		{BackendType(""), false},
	}
	for _, tt := range tests {
		if got := tt.bt.IsValid(); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.bt, got, tt.want)
		}
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "/tmp/x.db"})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "/tmp/x.db" {
		t.Errorf("FromAppConfig() = %+v", cfg)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "bogus"}); err == nil {
		t.Error("FromAppConfig() accepted invalid backend type")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("FromAppConfig() accepted nil config")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Type: MemoryBackend}).Validate(); err != nil {
		t.Errorf("Validate() memory error = %v", err)
	}
	if err := (Config{Type: SQLiteBackend}).Validate(); err == nil {
		t.Error("Validate() sqlite without path did not fail")
	}
}

func TestCreateMemoryStore(t *testing.T) {
	factory := NewFactory(nil)
	result, err := factory.CreateStore(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateStore() error = %v", err)
	}
	if result.Store == nil {
		t.Fatal("CreateStore() returned nil store")
	}
	if result.Cleanup != nil {
		t.Error("memory store should not need cleanup")
	}
}
