package snapshot

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/caveproject/bedrock"
	"github.com/caveproject/bedrock/blobstore"
	"github.com/caveproject/bedrock/resource"
)

// Manager saves and loads vector snapshots through a blob store.
type Manager struct {
	store      blobstore.Store
	logger     *slog.Logger
	controller *resource.Controller
	codec      Codec
	vecOpts    []bedrock.Option
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger for save/load operations. Defaults to a
// discarding logger.
func WithLogger(l *bedrock.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l.Logger
		}
	}
}

// WithController throttles snapshot IO against the controller's byte-rate
// limit.
func WithController(c *resource.Controller) ManagerOption {
	return func(m *Manager) {
		m.controller = c
	}
}

// WithManagerCodec sets the compression codec used by Save.
func WithManagerCodec(c Codec) ManagerOption {
	return func(m *Manager) {
		m.codec = c
	}
}

// WithVectorOptions sets the options applied to vectors reconstructed by
// Load, e.g. bedrock.WithController to charge them against a memory budget.
func WithVectorOptions(opts ...bedrock.Option) ManagerOption {
	return func(m *Manager) {
		m.vecOpts = opts
	}
}

// NewManager creates a Manager over the given store.
func NewManager(store blobstore.Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		logger: bedrock.NoopLogger().Logger,
		codec:  CodecNone,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Save serializes v and stores it under name.
func (m *Manager) Save(ctx context.Context, name string, v *bedrock.Vector) error {
	var buf bytes.Buffer
	w := resource.NewRateLimitedWriter(ctx, &buf, m.controller)
	if err := Write(w, v, WithCodec(m.codec)); err != nil {
		return err
	}
	if err := m.store.Put(ctx, name, buf.Bytes()); err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "snapshot saved",
		slog.String("name", name),
		slog.Int("elements", v.Len()),
		slog.Int("frame_bytes", buf.Len()),
		slog.String("codec", m.codec.String()),
	)
	return nil
}

// Load reads the snapshot stored under name and reconstructs the vector.
func (m *Manager) Load(ctx context.Context, name string) (*bedrock.Vector, error) {
	blob, err := m.store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return nil, err
	}

	r := resource.NewRateLimitedReader(ctx, bytes.NewReader(data), m.controller)
	v, err := Read(r, m.vecOpts...)
	if err != nil {
		return nil, err
	}
	m.logger.InfoContext(ctx, "snapshot loaded",
		slog.String("name", name),
		slog.Int("elements", v.Len()),
		slog.Int("frame_bytes", len(data)),
	)
	return v, nil
}
