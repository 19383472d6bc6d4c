package barcode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_LengthAndCharset(t *testing.T) {
	for i := 0; i < 200; i++ {
		tok, err := Token()
		require.NoError(t, err)
		assert.Len(t, tok, Length)
		for _, r := range tok {
			ok := (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
			assert.True(t, ok, "unexpected character %q in token %q", r, tok)
		}
	}
}

func TestToken_NotConstant(t *testing.T) {
	a, err := Token()
	require.NoError(t, err)
	b, err := Token()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGenerate_FirstCandidateFree(t *testing.T) {
	g := NewGenerator(func(ctx context.Context, eventID uint64, barcode string) (bool, error) {
		return false, nil
	})
	tok, err := g.Generate(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, tok, Length)
}

func TestGenerate_RetriesOnCollision(t *testing.T) {
	calls := 0
	g := NewGenerator(func(ctx context.Context, eventID uint64, barcode string) (bool, error) {
		calls++
		return calls < 3, nil // first two candidates collide
	})
	tok, err := g.Generate(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, tok, Length)
	assert.Equal(t, 3, calls)
}

func TestGenerate_Exhaustion(t *testing.T) {
	g := NewGenerator(func(ctx context.Context, eventID uint64, barcode string) (bool, error) {
		return true, nil // everything collides
	})
	_, err := g.Generate(context.Background(), 7)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestGenerate_ProbeError(t *testing.T) {
	boom := errors.New("db down")
	g := NewGenerator(func(ctx context.Context, eventID uint64, barcode string) (bool, error) {
		return false, boom
	})
	_, err := g.Generate(context.Background(), 7)
	assert.ErrorIs(t, err, boom)
}
