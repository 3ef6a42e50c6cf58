package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burakyalinat/portfolio/internal/apperror"
)

type fakeGenerator struct {
	reply   string
	err     error
	block   bool
	system  string
	message string
}

func (f *fakeGenerator) Generate(ctx context.Context, system, message string) (string, error) {
	f.system, f.message = system, message
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

// newTestProxy returns a Proxy whose factory hands out gen and counts calls.
func newTestProxy(gen *fakeGenerator, key string, builds *int) *Proxy {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewProxy(Config{
		KeyFunc: func() string { return key },
		Timeout: 50 * time.Millisecond,
		Factory: func(ctx context.Context, apiKey, model string) (Generator, error) {
			if builds != nil {
				*builds++
			}
			return gen, nil
		},
	}, logger)
}

func TestReply_Success(t *testing.T) {
	gen := &fakeGenerator{reply: "Merhaba!"}
	p := newTestProxy(gen, "key", nil)

	got, err := p.Reply(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Merhaba!", got)
	assert.Equal(t, "hello", gen.message)
	assert.Equal(t, DefaultSystemPrompt, gen.system)
}

func TestReply_EmptyMessage(t *testing.T) {
	builds := 0
	p := newTestProxy(&fakeGenerator{}, "key", &builds)

	for _, msg := range []string{"", "   "} {
		_, err := p.Reply(context.Background(), msg)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	}
	assert.Zero(t, builds, "no provider call for an empty message")
}

func TestReply_MissingKey(t *testing.T) {
	builds := 0
	p := newTestProxy(&fakeGenerator{reply: "x"}, "", &builds)

	_, err := p.Reply(context.Background(), "hi")
	assert.ErrorIs(t, err, apperror.ErrUpstream)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Zero(t, builds)
}

func TestReply_ProviderErrorIsGeneric(t *testing.T) {
	p := newTestProxy(&fakeGenerator{err: errors.New("quota exceeded for key AIza...")}, "key", nil)

	_, err := p.Reply(context.Background(), "hi")
	require.ErrorIs(t, err, apperror.ErrUpstream)
	assert.NotContains(t, err.Error(), "quota")
}

func TestReply_Timeout(t *testing.T) {
	p := newTestProxy(&fakeGenerator{block: true}, "key", nil)

	start := time.Now()
	_, err := p.Reply(context.Background(), "hi")
	assert.ErrorIs(t, err, apperror.ErrUpstream)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestReply_ReusesGeneratorForSameKey(t *testing.T) {
	builds := 0
	p := newTestProxy(&fakeGenerator{reply: "ok"}, "key", &builds)

	for i := 0; i < 3; i++ {
		_, err := p.Reply(context.Background(), "hi")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, builds)
}

func TestReply_KeyReadOnEveryCall(t *testing.T) {
	key := ""
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := NewProxy(Config{
		KeyFunc: func() string { return key },
		Factory: func(ctx context.Context, apiKey, model string) (Generator, error) {
			return &fakeGenerator{reply: "with " + apiKey}, nil
		},
	}, logger)

	_, err := p.Reply(context.Background(), "hi")
	require.ErrorIs(t, err, ErrNotConfigured)

	key = "added-later"
	got, err := p.Reply(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "with added-later", got)
}

func TestNewProxy_Defaults(t *testing.T) {
	p := NewProxy(Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, DefaultTimeout, p.Timeout())
	assert.Equal(t, DefaultModel, p.cfg.Model)
}

func TestNewGeminiGenerator_RequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "", "")
	assert.Error(t, err)
}
