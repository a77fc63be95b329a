// ABOUTME: Tests for the safe value formatter
// ABOUTME: Covers every rule branch plus inputs that cannot be rendered
package format

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/fichas/config"
	"github.com/harperreed/fichas/models"
)

type lazyStamp struct{ t time.Time }

func (l lazyStamp) Time() time.Time { return l.t }

type brokenStamp struct{}

func (brokenStamp) Time() time.Time { panic("no clock") }

// panicStringer is a func type so it reaches the coercion branch.
type panicStringer func()

func (panicStringer) String() string { panic("bad stringer") }

type complexBox struct{ C complex128 }

type panicMarshaler struct{}

func (panicMarshaler) MarshalJSON() ([]byte, error) { panic("boom") }

type marshalerBox struct{ B panicMarshaler }

func newTestFormatter() *Formatter {
	return New(config.DefaultDisplay()).WithLocation(time.UTC)
}

func TestFormat_Null(t *testing.T) {
	f := newTestFormatter()
	var nilPtr *string
	var nilSlice []int

	assert.Equal(t, "", f.Format(nil))
	assert.Equal(t, "", f.Format(nilPtr))
	assert.Equal(t, "", f.Format(nilSlice))
	assert.Equal(t, "N/A", f.FormatWithDefault(nil, "N/A"))

	res := f.Resolve(nil, "N/A")
	assert.True(t, res.Fallback)
	assert.Equal(t, "N/A", res.String())
}

func TestFormat_Scalars(t *testing.T) {
	f := newTestFormatter()
	s := "pointer"

	tests := []struct {
		in   any
		want string
	}{
		{"hello", "hello"},
		{"", ""},
		{&s, "pointer"},
		{42, "42"},
		{int64(-7), "-7"},
		{uint8(255), "255"},
		{3.25, "3.25"},
		{float64(100), "100"},
		{float32(0.5), "0.5"},
		{1e21, "1e+21"},
		{json.Number("12345678901234567890"), "12345678901234567890"},
		{true, "true"},
		{false, "false"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, f.Format(tt.in), "%#v", tt.in)
	}
}

func TestFormat_EmptyStringIsNotDefaulted(t *testing.T) {
	f := newTestFormatter()
	assert.Equal(t, "", f.FormatWithDefault("", "N/A"))
}

func TestFormatDisplay_Booleans(t *testing.T) {
	f := newTestFormatter()
	assert.Equal(t, "Sim", f.FormatDisplay(true))
	assert.Equal(t, "Não", f.FormatDisplay(false))
	assert.Equal(t, "42", f.FormatDisplay(42))
	assert.Equal(t, "", f.FormatDisplay(nil))

	cfg := config.DefaultDisplay()
	cfg.YesLabel, cfg.NoLabel = "Yes", "No"
	assert.Equal(t, "Yes", New(cfg).FormatDisplay(true))
}

func TestFormat_Temporal(t *testing.T) {
	f := newTestFormatter()
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	assert.Equal(t, "09/03/2024, 14:05:07", f.Format(at))
	assert.Equal(t, "09/03/2024, 14:05:07", f.Format(&at))
	assert.Equal(t, f.FormatTime(at), f.Format(lazyStamp{t: at}))
	assert.Equal(t, f.FormatTime(at), f.Format(models.TimestampOf(at)))
}

func TestFormat_TemporalUsesConfiguredZone(t *testing.T) {
	cfg := config.DefaultDisplay()
	cfg.TimeZone = "UTC"
	cfg.DateLayout = time.RFC3339
	f := New(cfg)

	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.FixedZone("X", 3600))
	assert.Equal(t, "2024-03-09T13:05:07Z", f.Format(at))
}

func TestFormat_BrokenLazyTimestampFallsBack(t *testing.T) {
	f := newTestFormatter()
	assert.Equal(t, "", f.Format(brokenStamp{}))
	assert.Equal(t, "-", f.FormatWithDefault(brokenStamp{}, "-"))
}

func TestFormat_ArraysCollapseToCount(t *testing.T) {
	f := newTestFormatter()
	assert.Equal(t, "[3 items]", f.Format([]any{1, 2, 3}))
	assert.Equal(t, "[3 items]", f.Format([]string{"a", "b", "c"}))
	assert.Equal(t, "[0 items]", f.Format([]any{}))
	assert.Equal(t, "[2 items]", f.Format([2]int{1, 2}))
	assert.Equal(t, "[1 items]", f.Format([]any{map[string]any{"deep": []any{1}}}))
}

func TestFormat_Objects(t *testing.T) {
	f := newTestFormatter()

	assert.Equal(t, `{"a":1,"b":"x"}`, f.Format(map[string]any{"b": "x", "a": 1}))

	rec := models.NewRecord(
		models.Field{Key: "z", Value: 1},
		models.Field{Key: "a", Value: true},
	)
	assert.Equal(t, `{"z":1,"a":true}`, f.Format(rec))
	assert.Equal(t, `{"A":1}`, f.Format(struct{ A int }{1}))
}

func TestFormat_UnserializableObjectsFallBack(t *testing.T) {
	f := newTestFormatter()

	cyclic := map[string]any{}
	cyclic["self"] = cyclic
	assert.Equal(t, "N/A", f.FormatWithDefault(cyclic, "N/A"))

	withFunc := map[string]any{"fn": func() {}}
	assert.Equal(t, "", f.Format(withFunc))

	assert.Equal(t, "?", f.FormatWithDefault(complexBox{C: 1i}, "?"))
}

func TestFormat_OtherValues(t *testing.T) {
	f := newTestFormatter()

	assert.Equal(t, "(1+2i)", f.Format(complex(1, 2)))
	assert.Equal(t, "fallback", f.FormatWithDefault(panicStringer(func() {}), "fallback"))
	assert.NotEmpty(t, f.Format(make(chan int)))
}

func TestFormat_PanickingMarshaler(t *testing.T) {
	f := newTestFormatter()

	for _, in := range []any{marshalerBox{}, panicMarshaler{}, map[string]any{"b": panicMarshaler{}}} {
		require.NotPanics(t, func() { _ = f.Format(in) }, "%#v", in)
		assert.Equal(t, "N/A", f.FormatWithDefault(in, "N/A"), "%#v", in)
		assert.Equal(t, "", f.FormatDisplay(in), "%#v", in)
	}
}

func TestFormat_NeverPanics(t *testing.T) {
	f := newTestFormatter()
	inputs := []any{
		nil, 0, "", []any{nil}, map[string]any{"a": nil}, brokenStamp{}, panicStringer(func() {}),
		make(chan struct{}), func() {}, complex64(1), struct{}{}, &struct{ P *int }{},
		map[any]any{1: 2}, [0]int{}, models.Record{}, (*models.Record)(nil),
	}
	for _, in := range inputs {
		require.NotPanics(t, func() { _ = f.Format(in) }, "%#v", in)
		require.NotPanics(t, func() { _ = f.FormatDisplay(in) }, "%#v", in)
	}
}
