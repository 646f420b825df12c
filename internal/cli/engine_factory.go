package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/adapters/file"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/adapters/badger"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ids"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
)

// Session bundles an initialized engine with the resources backing it.
type Session struct {
	Engine   *arbor.Engine
	Store    ports.BlobStore
	Config   config.Config
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	Registry *prometheus.Registry

	closers []func() error

	mu      sync.Mutex
	saveErr error
}

// CreateLogger builds the application logger from the log settings.
func CreateLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.ForFormat(cfg.Format, level), nil
}

// OpenStore builds the configured backend, wrapped in encryption when a key is set.
// The returned func releases the backend.
func OpenStore(cfg config.Config, logger *slog.Logger) (ports.BlobStore, func() error, error) {
	var store ports.BlobStore
	closeFn := func() error { return nil }

	switch strings.ToLower(cfg.Store.Backend) {
	case config.BackendMemory:
		store = memory.NewStore()
	case config.BackendFile:
		store = file.New(cfg.Store.Path)
	case config.BackendRedis:
		var opts []redis.Option
		if cfg.Store.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Store.Redis.Prefix))
		}
		rs := redis.New(cfg.Store.Redis.Addr, cfg.Store.Redis.Password, cfg.Store.Redis.DB, opts...)
		store, closeFn = rs, rs.Close
	case config.BackendBadger:
		bcfg := badger.DefaultConfig(filepath.Join(cfg.Store.Path, "badger"))
		bcfg.Logger = logger
		bs, err := badger.Open(bcfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open badger store: %w", err)
		}
		store, closeFn = bs, bs.Close
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	if cfg.EncryptionKey != "" {
		key, err := middleware.ParseKey(cfg.EncryptionKey)
		if err != nil {
			_ = closeFn()
			return nil, nil, err
		}
		store = middleware.Chain(store, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	return store, closeFn, nil
}

// Open loads the configuration, opens the store, and initializes an engine.
// The caller must Close the session.
func Open(ctx context.Context, opts Options) (*Session, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger, err := CreateLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	return OpenWithConfig(ctx, cfg, logger)
}

// OpenWithConfig is Open for an already resolved configuration.
func OpenWithConfig(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Session, error) {
	store, closeFn, err := OpenStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Store:    store,
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
		closers:  []func() error{closeFn},
	}
	s.Metrics = observability.NewMetrics(s.Registry)

	engine, err := arbor.New(store,
		arbor.WithLogger(logger),
		arbor.WithKey(cfg.Store.Key),
		arbor.WithIDGenerator(ids.ForKind(cfg.IDs)),
		arbor.WithStrictLoad(cfg.StrictLoad),
		arbor.WithLifecycleHooks(observability.Combine(
			s.Metrics.Hooks(),
			createDebugHooks(logger),
			domain.LifecycleHooks{OnPersist: s.recordPersist},
		)),
	)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	s.Engine = engine

	if _, err := engine.Initialize(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) recordPersist(_ context.Context, e *domain.PersistEvent) {
	if e.Op != domain.PersistSave {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = e.Err
}

// SaveErr reports the outcome of the most recent write-through save.
func (s *Session) SaveErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveErr
}

// Close releases the store.
func (s *Session) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMutation: func(ctx context.Context, e *domain.MutationEvent) {
			logger.Debug("Mutation", "command", e.Command, "node_id", e.NodeID, "parent_id", e.ParentID, "changed", e.Changed, "size", e.Size)
		},
		OnPersist: func(ctx context.Context, e *domain.PersistEvent) {
			if e.Err != nil {
				logger.Debug("Persist (Error)", "op", e.Op, "key", e.Key, "err", e.Err)
				return
			}
			logger.Debug("Persist", "op", e.Op, "key", e.Key, "bytes", e.Bytes)
		},
	}
}
