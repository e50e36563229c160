package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"semdex/config"
	"semdex/internal/adapter/cache"
	"semdex/internal/adapter/embedding"
	"semdex/internal/adapter/memstore"
	"semdex/internal/adapter/secrets"
	"semdex/internal/adapter/store"
	"semdex/internal/port"
	"semdex/internal/usecase"
)

// openStore opens the configured chunk store backend.
func openStore(cfg *config.Config, root string) (port.ChunkStore, error) {
	dim := cfg.Embedding.CanonicalDim

	switch cfg.Store.Driver {
	case "memory":
		return memstore.NewMemoryStore(dim), nil
	case "sqlite":
		path := config.IndexPath(root, "sqlite")
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		return store.NewSQLiteStore(path, dim)
	case "", "bolt":
		path := config.IndexPath(root, "bolt")
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		return store.NewBoltStore(path, dim)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

// newResolver builds the secret resolver: vault primary when
// configured, environment fallback always.
func newResolver(cfg *config.Config) *secrets.Resolver {
	var primary port.SecretSource
	if cfg.Secrets.VaultURL != "" {
		serviceKey := os.Getenv(cfg.Secrets.VaultKeyEnv)
		primary = secrets.NewVaultSource(cfg.Secrets.VaultURL, serviceKey, 0)
	}
	fallback := secrets.NewEnvSource(cfg.Secrets.Static)
	return secrets.NewResolver(primary, fallback, time.Duration(cfg.Secrets.TTLMinutes)*time.Minute)
}

// newEmbedder wires the provider fallback chain, reconciler, and
// caches into the embedding pipeline.
func newEmbedder(cfg *config.Config, resolver *secrets.Resolver) (*usecase.EmbedUseCase, error) {
	loader := cache.NewProviderCache()

	primary, err := newProvider(cfg.Embedding.Primary, cfg, loader, resolver)
	if err != nil {
		return nil, err
	}

	var secondary port.Embedder
	if cfg.Embedding.Secondary != "" && cfg.Embedding.Secondary != cfg.Embedding.Primary {
		secondary, err = newProvider(cfg.Embedding.Secondary, cfg, loader, resolver)
		if err != nil {
			return nil, err
		}
	}

	chain := embedding.NewFallbackChain(primary, secondary)

	warnf := func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
	}
	reconciler := embedding.NewReconciler(cfg.Embedding.CanonicalDim, warnf)

	var texts *cache.VectorCache
	if cfg.Embedding.Cache.Enabled {
		texts = cache.NewVectorCache(cfg.Embedding.Cache.MaxSize, time.Duration(cfg.Embedding.Cache.TTLMinutes)*time.Minute)
	}

	return usecase.NewEmbedUseCase(chain, reconciler, texts), nil
}

func newProvider(name string, cfg *config.Config, loader *cache.ProviderCache, resolver *secrets.Resolver) (port.Embedder, error) {
	switch name {
	case "local":
		return embedding.NewLocalProvider("local", cfg.Embedding.Local.Dimension, cfg.Embedding.Local.ModelPath, loader), nil
	case "remote":
		r := cfg.Embedding.Remote
		return embedding.NewRemoteProvider("remote:"+r.Model, r.Model, r.BaseURL, r.Dimension, r.Secret, resolver, time.Duration(r.TimeoutSeconds)*time.Second), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", name)
	}
}
