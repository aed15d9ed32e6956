package idx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/threeds/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	t.Parallel()

	id := idx.New()
	require.NotEmpty(t, id.String())
	require.False(t, id.IsZero())

	parsed, err := idx.Parse(" " + id.String() + " ")
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestParseRejects(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "not-a-ulid", "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3Z"} {
		_, err := idx.Parse(raw)
		require.ErrorIs(t, err, idx.ErrInvalid, raw)
	}
	require.Panics(t, func() { idx.MustParse("nope") })
}

func TestOrdering(t *testing.T) {
	t.Parallel()

	a := idx.NewAt(time.Unix(1, 0))
	b := idx.NewAt(time.Unix(2, 0))

	require.Equal(t, -1, idx.Compare(a, b))
	require.Equal(t, 1, idx.Compare(b, a))
	require.Equal(t, 0, idx.Compare(a, a))
}

func TestGeneratorMonotonicWithinMillisecond(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)
	gen := idx.NewGenerator(func() time.Time { return fixed })

	prev := gen.New()
	for range 100 {
		next := gen.New()
		require.Equal(t, 1, idx.Compare(next, prev))
		prev = next
	}
	require.Equal(t, fixed, prev.Time())
}

func TestTimeExtraction(t *testing.T) {
	t.Parallel()

	tm := time.Unix(1700000000, 0).UTC()
	require.WithinDuration(t, tm, idx.NewAt(tm).Time(), time.Millisecond)
	require.True(t, idx.ID("garbage").Time().IsZero())
	require.True(t, idx.Zero.Time().IsZero())
}
