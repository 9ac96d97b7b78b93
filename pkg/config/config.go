// Package config loads BlockVault configuration from TOML files and the
// environment.
//
// Everything has a sensible default, so `blockvault serve` works with no
// config file at all: an in-memory metadata store, a filesystem object store
// under the user cache directory, and no response cache. The vault
// passphrase is never stored in the file; it comes from the BLOCKVAULT_KEY
// environment variable.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/parthk/blockvault/pkg/block"
	"github.com/parthk/blockvault/pkg/errors"
)

// KeyEnvVar names the environment variable holding the vault passphrase.
const KeyEnvVar = "BLOCKVAULT_KEY"

// Backend names for the metadata, object store, and cache sections.
const (
	MetadataMemory = "memory"
	MetadataMongo  = "mongo"

	ObjectsFS = "fs"
	ObjectsS3 = "s3"

	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the root configuration.
type Config struct {
	Server   Server   `toml:"server"`
	Metadata Metadata `toml:"metadata"`
	Objects  Objects  `toml:"objects"`
	Cache    CacheCfg `toml:"cache"`
	Seal     Seal     `toml:"seal"`
}

// Server configures the HTTP API.
type Server struct {
	// Addr to listen on, e.g. ":8080".
	Addr string `toml:"addr"`
	// BlockSize for server-side file splitting, in bytes.
	BlockSize int `toml:"block_size"`
}

// Metadata configures the metadata store.
type Metadata struct {
	// Backend is "memory" or "mongo".
	Backend  string `toml:"backend"`
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Objects configures the object store.
type Objects struct {
	// Backend is "fs" or "s3".
	Backend string `toml:"backend"`

	// Dir for the fs backend.
	Dir string `toml:"dir"`

	// S3 settings.
	Bucket          string `toml:"bucket"`
	Region          string `toml:"region"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	UsePathStyle    bool   `toml:"use_path_style"`
}

// CacheCfg configures the server-side response cache.
type CacheCfg struct {
	// Backend is "none", "file", or "redis".
	Backend string `toml:"backend"`

	// Dir for the file backend.
	Dir string `toml:"dir"`

	// Redis settings.
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Seal configures key derivation.
type Seal struct {
	// Salt for PBKDF2 key derivation. The passphrase itself comes from
	// the BLOCKVAULT_KEY environment variable.
	Salt string `toml:"salt"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return Config{
		Server: Server{
			Addr:      ":8080",
			BlockSize: block.DefaultSize,
		},
		Metadata: Metadata{
			Backend:  MetadataMemory,
			Database: "blockvault",
		},
		Objects: Objects{
			Backend: ObjectsFS,
			Dir:     filepath.Join(cacheDir, "blockvault", "objects"),
		},
		Cache: CacheCfg{
			Backend: CacheNone,
			Dir:     filepath.Join(cacheDir, "blockvault", "cache"),
		},
		Seal: Seal{
			Salt: "blockvault-v1",
		},
	}
}

// Load reads a TOML config file, applying defaults for anything unset.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Passphrase returns the vault passphrase from the environment.
func Passphrase() (string, error) {
	key := os.Getenv(KeyEnvVar)
	if key == "" {
		return "", errors.New(errors.ErrCodeInvalidKey, "%s is not set", KeyEnvVar)
	}
	return key, nil
}

// Validate checks backend names and required fields.
func (c Config) Validate() error {
	switch c.Metadata.Backend {
	case MetadataMemory:
	case MetadataMongo:
		if c.Metadata.URI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "metadata.uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown metadata backend %q", c.Metadata.Backend)
	}

	switch c.Objects.Backend {
	case ObjectsFS:
		if c.Objects.Dir == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "objects.dir is required for the fs backend")
		}
	case ObjectsS3:
		if c.Objects.Bucket == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "objects.bucket is required for the s3 backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown objects backend %q", c.Objects.Backend)
	}

	switch c.Cache.Backend {
	case CacheNone:
	case CacheFile:
		if c.Cache.Dir == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.dir is required for the file backend")
		}
	case CacheRedis:
		if c.Cache.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}

	if c.Server.BlockSize <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.block_size must be positive")
	}
	return nil
}
