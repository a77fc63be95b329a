// ABOUTME: Total conversion of any runtime value into a display string
// ABOUTME: Every branch ends in Ok or Fallback so no input can make it fail
package format

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/fichas/config"
	"github.com/harperreed/fichas/models"
)

// Result is the outcome of formatting one value. Fallback is set when the
// value could not be rendered and Text holds the caller's default.
type Result struct {
	Text     string
	Fallback bool
}

func (r Result) String() string {
	return r.Text
}

func ok(s string) Result {
	return Result{Text: s}
}

func fallback(def string) Result {
	return Result{Text: def, Fallback: true}
}

// Formatter renders values using the configured date layout, zone and
// yes/no labels. It holds no mutable state and is safe for concurrent use.
type Formatter struct {
	layout   string
	location *time.Location
	yes      string
	no       string
}

// New builds a formatter from display settings. A nil config uses defaults.
func New(cfg *config.DisplayConfig) *Formatter {
	if cfg == nil {
		cfg = config.DefaultDisplay()
	}
	f := &Formatter{
		layout:   cfg.DateLayout,
		location: cfg.Location(),
		yes:      cfg.YesLabel,
		no:       cfg.NoLabel,
	}
	if f.layout == "" {
		f.layout = config.DefaultDateLayout
	}
	return f
}

// WithLocation returns a copy rendering times in loc.
func (f *Formatter) WithLocation(loc *time.Location) *Formatter {
	c := *f
	if loc != nil {
		c.location = loc
	}
	return &c
}

// Format renders v, using "" when v is null or cannot be rendered.
func (f *Formatter) Format(v any) string {
	return f.Resolve(v, "").String()
}

// FormatWithDefault renders v, using def when v is null or cannot be rendered.
func (f *Formatter) FormatWithDefault(v any, def string) string {
	return f.Resolve(v, def).String()
}

// FormatDisplay renders booleans as the yes/no labels and everything else as Format.
func (f *Formatter) FormatDisplay(v any) string {
	val := models.ValueOf(v)
	if val.Kind == models.KindBool {
		if val.Raw().(bool) {
			return f.yes
		}
		return f.no
	}
	return f.resolveValue(val, "").String()
}

// FormatTime renders a time with the configured layout and zone.
func (f *Formatter) FormatTime(t time.Time) string {
	return t.In(f.location).Format(f.layout)
}

// Resolve renders v and reports whether the default was used.
func (f *Formatter) Resolve(v any, def string) Result {
	return f.resolveValue(models.ValueOf(v), def)
}

func (f *Formatter) resolveValue(val models.Value, def string) Result {
	switch val.Kind {
	case models.KindNull:
		return fallback(def)
	case models.KindString:
		return ok(val.Raw().(string))
	case models.KindBool:
		return ok(strconv.FormatBool(val.Raw().(bool)))
	case models.KindNumber:
		return ok(formatNumber(val.Raw()))
	case models.KindLazyTime, models.KindDate:
		t, materialized := val.Time()
		if !materialized {
			return fallback(def)
		}
		return ok(f.FormatTime(t))
	case models.KindArray:
		return ok(fmt.Sprintf("[%d items]", val.Len()))
	case models.KindObject:
		return marshalObject(val.Raw(), def)
	default:
		return coerce(val.Raw(), def)
	}
}

// marshalObject renders v as JSON. json.Marshal re-raises panics from
// MarshalJSON methods, so those count as a failure too.
func marshalObject(v any, def string) (res Result) {
	defer func() {
		if recover() != nil {
			res = fallback(def)
		}
	}()
	data, err := json.Marshal(v)
	if err != nil {
		return fallback(def)
	}
	return ok(string(data))
}

// coerce is the last resort. fmt recovers panics from Stringer/Error
// methods and marks them with "%!", which counts as a failure here.
func coerce(v any, def string) Result {
	s := fmt.Sprint(v)
	if strings.HasPrefix(s, "%!") {
		return fallback(def)
	}
	return ok(s)
}

func formatNumber(v any) string {
	switch n := v.(type) {
	case json.Number:
		return n.String()
	case float64:
		return formatFloat(n, 64)
	case float32:
		return formatFloat(float64(n), 32)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return formatFloat(rv.Float(), 32)
	default:
		return formatFloat(rv.Float(), 64)
	}
}

// formatFloat prints integral values without exponent up to 1e21, the
// same cut-over a JSON document producer uses.
func formatFloat(n float64, bits int) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e21 {
		return strconv.FormatFloat(n, 'f', -1, bits)
	}
	return strconv.FormatFloat(n, 'g', -1, bits)
}
