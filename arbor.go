package arbor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/pkg/codec"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ids"
	"github.com/aretw0/arbor/pkg/ports"
)

// DefaultKey is the record key the tree is stored under.
const DefaultKey = "categoryTree"

// maxIDAttempts bounds how often a colliding id is re-drawn.
const maxIDAttempts = 16

// Engine owns the current tree snapshot and writes it through to a BlobStore
// after every mutation. It assumes a single logical caller and performs no
// locking; adapters serving concurrent clients must serialize their calls.
type Engine struct {
	store      ports.BlobStore
	key        string
	ids        ports.IDGenerator
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	strictLoad bool
	now        func() time.Time

	tree   domain.Tree
	issued map[string]struct{}
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithKey sets the record key the tree is persisted under (default: "categoryTree").
func WithKey(key string) Option {
	return func(e *Engine) {
		e.key = key
	}
}

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(gen ports.IDGenerator) Option {
	return func(e *Engine) {
		e.ids = gen
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithStrictLoad makes Initialize report malformed stored data as
// domain.ErrMalformedTree instead of starting from an empty forest.
func WithStrictLoad(strict bool) Option {
	return func(e *Engine) {
		e.strictLoad = strict
	}
}

// New creates an engine persisting to store. Call Initialize before issuing commands.
func New(store ports.BlobStore, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("arbor: store is required")
	}

	eng := &Engine{
		store:  store,
		key:    DefaultKey,
		ids:    ids.UUID{},
		now:    time.Now,
		tree:   domain.Tree{},
		issued: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.key == "" {
		return nil, errors.New("arbor: record key cannot be empty")
	}

	// Ensure logger is initialized so call sites never check for nil
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	eng.logger = eng.logger.With("key", eng.key)

	return eng, nil
}

// Initialize loads the last saved tree from the store and makes it current.
//
// A missing record or a failing read yields an empty forest. Malformed bytes
// yield an empty forest too, unless strict loading is enabled, in which case
// the decode error (wrapping domain.ErrMalformedTree) is returned.
func (e *Engine) Initialize(ctx context.Context) (domain.Tree, error) {
	e.tree = domain.Tree{}
	e.issued = make(map[string]struct{})

	data, err := e.store.Load(ctx, e.key)
	e.firePersist(ctx, domain.PersistLoad, len(data), ignoreNotFound(err))

	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		e.logger.Debug("no stored tree, starting empty")
		return e.tree, nil
	case err != nil:
		e.logger.Warn("failed to load tree, starting empty", "err", err)
		return e.tree, nil
	}

	tree, err := codec.Decode(data)
	if err != nil {
		if e.strictLoad {
			return e.tree, err
		}
		e.logger.Warn("stored tree is malformed, starting empty", "err", err, "bytes", len(data))
		return e.tree, nil
	}

	e.tree = tree
	for _, id := range domain.IDs(tree) {
		e.issued[id] = struct{}{}
	}

	e.logger.Debug("tree loaded", "nodes", len(e.issued))
	return domain.Clone(e.tree), nil
}

// Tree returns a copy of the current snapshot. Editing the copy never
// changes engine state; use the mutation methods instead.
func (e *Engine) Tree() domain.Tree {
	return domain.Clone(e.tree)
}

// FindNode looks up a node in the current snapshot and returns a copy of it.
func (e *Engine) FindNode(id string) (domain.Node, bool) {
	n, ok := domain.FindNode(e.tree, id)
	if ok {
		n.Children = domain.Clone(n.Children)
	}
	return n, ok
}

// AddNode appends a new node named name under parentID, or at the root when
// parentID is empty. An unknown parent leaves the tree unchanged.
func (e *Engine) AddNode(ctx context.Context, parentID, name string) domain.Tree {
	node := domain.NewNode(e.newID(), name)
	next, changed := domain.AddNode(e.tree, parentID, node)
	return e.commit(ctx, domain.MutationEvent{
		Command:  domain.CommandAdd,
		NodeID:   node.ID,
		ParentID: parentID,
	}, next, changed)
}

// RenameNode replaces the name of the node with the given id.
func (e *Engine) RenameNode(ctx context.Context, id, newName string) domain.Tree {
	next, changed := domain.RenameNode(e.tree, id, newName)
	return e.commit(ctx, domain.MutationEvent{Command: domain.CommandRename, NodeID: id}, next, changed)
}

// DeleteNode removes the node with the given id and its entire subtree.
func (e *Engine) DeleteNode(ctx context.Context, id string) domain.Tree {
	next, changed := domain.DeleteNode(e.tree, id)
	return e.commit(ctx, domain.MutationEvent{Command: domain.CommandDelete, NodeID: id}, next, changed)
}

// ToggleExpand flips the expanded flag of the node with the given id.
func (e *Engine) ToggleExpand(ctx context.Context, id string) domain.Tree {
	next, changed := domain.ToggleExpand(e.tree, id)
	return e.commit(ctx, domain.MutationEvent{Command: domain.CommandToggle, NodeID: id}, next, changed)
}

// Sync writes the current snapshot to the store and returns the store error, if any.
func (e *Engine) Sync(ctx context.Context) error {
	return e.persist(ctx)
}

func (e *Engine) commit(ctx context.Context, event domain.MutationEvent, next domain.Tree, changed bool) domain.Tree {
	if changed {
		e.tree = next
		// The write-through failure is reported through logs and hooks; the
		// in-memory snapshot stays authoritative.
		_ = e.persist(ctx)
	}

	event.Timestamp = e.now()
	event.Changed = changed
	event.Size = domain.Count(e.tree)

	e.logger.Debug("command applied",
		"command", event.Command,
		"node_id", event.NodeID,
		"changed", changed,
	)
	if e.hooks.OnMutation != nil {
		e.hooks.OnMutation(ctx, &event)
	}

	return domain.Clone(e.tree)
}

func (e *Engine) persist(ctx context.Context) error {
	data, err := codec.Encode(e.tree)
	if err == nil {
		err = e.store.Save(ctx, e.key, data)
	}
	e.firePersist(ctx, domain.PersistSave, len(data), err)

	if err != nil {
		e.logger.Warn("failed to persist tree, continuing in memory", "err", err)
		return fmt.Errorf("persist tree: %w", err)
	}
	return nil
}

func (e *Engine) firePersist(ctx context.Context, op domain.PersistOp, size int, err error) {
	if e.hooks.OnPersist == nil {
		return
	}
	e.hooks.OnPersist(ctx, &domain.PersistEvent{
		Timestamp: e.now(),
		Op:        op,
		Key:       e.key,
		Bytes:     size,
		Err:       err,
	})
}

// newID draws ids until one has never been issued in this engine's lifetime.
func (e *Engine) newID() string {
	var id string
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id = e.ids.NewID()
		if _, taken := e.issued[id]; !taken && id != "" {
			break
		}
	}
	if _, taken := e.issued[id]; taken || id == "" {
		// The generator keeps colliding; fall back to a uuid, which cannot realistically collide.
		e.logger.Warn("id generator returned only issued ids, using uuid", "attempts", maxIDAttempts)
		id = ids.UUID{}.NewID()
	}
	e.issued[id] = struct{}{}
	return id
}

func ignoreNotFound(err error) error {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil
	}
	return err
}
