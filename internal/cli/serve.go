package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/parthk/blockvault/internal/api"
	"github.com/parthk/blockvault/pkg/cache"
	"github.com/parthk/blockvault/pkg/config"
	"github.com/parthk/blockvault/pkg/metadata"
	"github.com/parthk/blockvault/pkg/objstore"
	"github.com/parthk/blockvault/pkg/vault"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the BlockVault HTTP API server",
		Long: `Serve starts the HTTP API. Backends come from the config file:
metadata in MongoDB or memory, block bytes in S3 or the local filesystem,
and an optional Redis or file cache for search and verification responses.

The vault passphrase is read from the BLOCKVAULT_KEY environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides config)")

	return cmd
}

func (c *CLI) runServer(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	sealer, err := newSealer(cfg)
	if err != nil {
		return err
	}

	meta, err := newMetadataStore(ctx, cfg)
	if err != nil {
		return err
	}

	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		meta.Close(context.Background())
		return err
	}

	respCache, err := newServerCache(ctx, cfg)
	if err != nil {
		meta.Close(context.Background())
		return err
	}

	svc := vault.New(meta, objects, sealer, vault.Options{
		BlockSize: cfg.Server.BlockSize,
		Cache:     respCache,
		Backend:   cfg.Objects.Backend,
	})
	defer svc.Close(context.Background())

	logger.Info("starting server",
		"metadata", cfg.Metadata.Backend,
		"objects", cfg.Objects.Backend,
		"cache", cfg.Cache.Backend,
		"block_size", cfg.Server.BlockSize)

	return api.New(svc, cfg.Server.Addr, logger).ListenAndServe(ctx)
}

func newMetadataStore(ctx context.Context, cfg config.Config) (metadata.Store, error) {
	switch cfg.Metadata.Backend {
	case config.MetadataMongo:
		return metadata.NewMongoStore(ctx, metadata.MongoConfig{
			URI:      cfg.Metadata.URI,
			Database: cfg.Metadata.Database,
		})
	default:
		return metadata.NewMemoryStore(), nil
	}
}

func newObjectStore(ctx context.Context, cfg config.Config) (objstore.BlockStore, error) {
	switch cfg.Objects.Backend {
	case config.ObjectsS3:
		return objstore.NewS3Store(ctx, objstore.S3Config{
			Bucket:          cfg.Objects.Bucket,
			Region:          cfg.Objects.Region,
			Endpoint:        cfg.Objects.Endpoint,
			AccessKeyID:     cfg.Objects.AccessKeyID,
			SecretAccessKey: cfg.Objects.SecretAccessKey,
			UsePathStyle:    cfg.Objects.UsePathStyle,
		})
	default:
		return objstore.NewFSStore(cfg.Objects.Dir)
	}
}

func newServerCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
	case config.CacheFile:
		return cache.NewFileCache(cfg.Cache.Dir)
	default:
		return cache.NewNullCache(), nil
	}
}
