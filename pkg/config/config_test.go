package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parthk/blockvault/pkg/errors"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Metadata.Backend != MetadataMemory {
		t.Errorf("metadata backend = %q", cfg.Metadata.Backend)
	}
	if cfg.Objects.Backend != ObjectsFS || cfg.Objects.Dir == "" {
		t.Errorf("objects = %+v", cfg.Objects)
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg != Default() {
		t.Error("empty path should return defaults")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockvault.toml")
	content := `
[server]
addr = ":9090"
block_size = 65536

[metadata]
backend = "mongo"
uri = "mongodb://localhost:27017"

[objects]
backend = "s3"
bucket = "vault-blocks"
region = "eu-central-1"

[cache]
backend = "redis"
addr = "localhost:6379"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.BlockSize != 65536 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Metadata.Backend != MetadataMongo || cfg.Metadata.URI == "" {
		t.Errorf("metadata = %+v", cfg.Metadata)
	}
	if cfg.Objects.Bucket != "vault-blocks" {
		t.Errorf("objects = %+v", cfg.Objects)
	}
	// Unset sections keep their defaults.
	if cfg.Metadata.Database != "blockvault" {
		t.Errorf("database default lost: %q", cfg.Metadata.Database)
	}
	if cfg.Seal.Salt != "blockvault-v1" {
		t.Errorf("salt default lost: %q", cfg.Seal.Salt)
	}
}

func TestLoad_InvalidBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[metadata]\nbackend = \"postgres\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestValidate_Requirements(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"mongo without uri", func(c *Config) { c.Metadata = Metadata{Backend: MetadataMongo} }},
		{"s3 without bucket", func(c *Config) { c.Objects = Objects{Backend: ObjectsS3} }},
		{"redis without addr", func(c *Config) { c.Cache = CacheCfg{Backend: CacheRedis} }},
		{"zero block size", func(c *Config) { c.Server.BlockSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestPassphrase(t *testing.T) {
	t.Setenv(KeyEnvVar, "")
	if _, err := Passphrase(); !errors.Is(err, errors.ErrCodeInvalidKey) {
		t.Errorf("expected INVALID_KEY when unset, got %v", err)
	}

	t.Setenv(KeyEnvVar, "hunter2")
	key, err := Passphrase()
	if err != nil {
		t.Fatalf("Passphrase error: %v", err)
	}
	if key != "hunter2" {
		t.Errorf("key = %q", key)
	}
}
