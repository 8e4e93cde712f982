package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-timeline/internal/core/event"
	"github.com/penwyp/go-timeline/internal/util"
)

func TestSerialize(t *testing.T) {
	tl := New()
	require.NoError(t, tl.Append(body(1408628762, "created")))
	require.NoError(t, tl.Append(body(1408628769, "processed")))

	assert.Equal(t, `[{"body":"created","_at":1408628762},{"body":"processed","_at":1408628769}]`, tl.String())

	data, err := tl.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, tl.String(), string(data))

	assert.Equal(t, `[]`, New().String())
}

func TestDeserialize(t *testing.T) {
	serialized := `[{"_at":1408628700, "body": "step1"}, {"_at":1408628700, "body": "step2"}]`
	tl, err := FromJSON([]byte(serialized))
	require.NoError(t, err)

	assert.Equal(t, 2, tl.Len())
	last, _ := tl.Get(-1)
	assert.Equal(t, "step2", bodyOf(t, last))
	assert.Equal(t, int64(1408628700), last.At())
}

func TestRoundTrip(t *testing.T) {
	tl := New()
	require.NoError(t, tl.Append(body(1408628762, "created")))
	require.NoError(t, tl.Append(event.New(1408628769, event.NewAttributes().
		With("status", "updated").
		With("changes", []any{"1", "2", "3"}).
		With("meta", map[string]any{"attempt": 2, "ok": true}), event.WithUntil(1408628779))))

	restored, err := FromJSON([]byte(tl.String()))
	require.NoError(t, err)
	assert.True(t, tl.Equal(restored))
}

func TestRoundTripTypedContainers(t *testing.T) {
	tl := New()
	require.NoError(t, tl.Append(event.New(1, event.NewAttributes().With("tags", []string{"a", "b"}))))
	require.NoError(t, tl.Append(event.New(2, event.NewAttributes().With("nums", []int{1, 2}))))
	require.NoError(t, tl.Append(event.New(3, event.NewAttributes().With("m", map[string]string{"k": "v"}))))
	require.NoError(t, tl.Append(event.New(4, event.NewAttributes().
		With("f", 1.5).
		With("nested", map[string]any{"items": []any{1, "x"}}))))

	restored, err := FromJSON([]byte(tl.String()))
	require.NoError(t, err)
	for i, e := range tl.Events() {
		back, _ := restored.Get(i)
		assert.True(t, e.Equal(back), "event %d", i)
	}
	assert.True(t, restored.Equal(tl))
}

func TestFromJSONKind(t *testing.T) {
	audit := event.NewKind("audit", nil)

	tl, err := FromJSON([]byte(`[{"_at": 1}]`), event.DecodeKind(audit))
	require.NoError(t, err)
	assert.Same(t, audit, tl.Kind())

	empty, err := FromJSON([]byte(`null`), event.DecodeKind(audit))
	require.NoError(t, err)
	assert.True(t, empty.Empty())
	assert.Same(t, audit, empty.Kind())
}

func TestFromJSONEmptyMarkers(t *testing.T) {
	for _, input := range []string{"null", "None", "[]"} {
		tl, err := FromJSON([]byte(input))
		require.NoError(t, err, input)
		assert.True(t, tl.Empty(), input)
	}
}

func TestFromJSONMalformed(t *testing.T) {
	for _, input := range []string{`{"_at": 1}`, `"text"`, `[1, 2]`, `[{"_at": 1}`, `nil`} {
		_, err := FromJSON([]byte(input))
		assert.ErrorIs(t, err, ErrMalformed, input)
		assert.ErrorIs(t, err, event.ErrMalformed, input)
	}
}

func TestFromJSONMissingAt(t *testing.T) {
	tl, err := FromJSON([]byte(`[{"body": "now"}]`), event.DecodeClock(util.NewFixedClock(1408628762)))
	require.NoError(t, err)
	first, _ := tl.FirstEvent()
	assert.Equal(t, int64(1408628762), first.At())
}
