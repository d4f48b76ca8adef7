package drawpipe

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/drawpipe/backend"
	"github.com/gogpu/drawpipe/gpu"
)

// stubBackend is enough of a gpu.Backend to create and release a context.
type stubBackend struct {
	gpu.Backend
	released bool
}

func (b *stubBackend) Name() string      { return "stub" }
func (b *stubBackend) Caps() *gpu.Caps   { return gpu.DefaultCaps() }
func (b *stubBackend) Release()          { b.released = true }
func (b *stubBackend) Submit(bool) error { return nil }

func stubRegistry(t *testing.T) (*backend.Registry, *[]*stubBackend) {
	t.Helper()
	var opened []*stubBackend
	r := backend.NewRegistry("stub")
	require.NoError(t, r.Register("stub", func() (gpu.Backend, error) {
		b := &stubBackend{}
		opened = append(opened, b)
		return b, nil
	}))
	return r, &opened
}

func TestNewContextOpensConfiguredBackend(t *testing.T) {
	r, opened := stubRegistry(t)

	ctx, err := NewContext(WithRegistry(r), WithBackend("stub"), WithMaxProgramCount(4), WithResourceBudget(1<<20))
	require.NoError(t, err)
	require.Len(t, *opened, 1)
	assert.Equal(t, "stub", ctx.Backend().Name())

	ctx.Release()
	assert.True(t, (*opened)[0].released)
}

func TestNewContextWithConfig(t *testing.T) {
	r, _ := stubRegistry(t)
	cfg := DefaultConfig()
	cfg.Backend = ""

	ctx, err := NewContext(WithRegistry(r), WithConfig(cfg), WithVerifyProgramKeys(true), WithSyncSubmit(false))
	require.NoError(t, err)
	defer ctx.Release()
	assert.Equal(t, "stub", ctx.Backend().Name())
}

func TestNewContextErrors(t *testing.T) {
	r, opened := stubRegistry(t)

	_, err := NewContext(WithRegistry(r), WithMaxProgramCount(0))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewContext(WithRegistry(r), WithBackend("missing"))
	assert.ErrorIs(t, err, backend.ErrBackendNotRegistered)
	assert.Empty(t, *opened)

	errDevice := errors.New("device lost")
	require.NoError(t, r.Register("broken", func() (gpu.Backend, error) { return nil, errDevice }))
	_, err = NewContext(WithRegistry(r), WithBackend("broken"))
	assert.ErrorIs(t, err, errDevice)
}

func TestNewContextInstallsLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })
	r, _ := stubRegistry(t)

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx, err := NewContext(WithRegistry(r), WithBackend("stub"), WithLogger(l))
	require.NoError(t, err)
	defer ctx.Release()

	assert.Same(t, l, Logger())
	assert.Contains(t, buf.String(), "drawpipe: context created")
	assert.Contains(t, buf.String(), "gpu: context created", "logger reaches the gpu package")
}
