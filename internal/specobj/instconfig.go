package specobj

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultBinning is assumed when an exposure does not report its binning.
const DefaultBinning = "1x1"

// Row is one exposure's metadata, keyed by field name.
type Row interface {
	Lookup(field string) (any, bool)
}

// MapRow is a Row backed by a map.
type MapRow map[string]any

// Lookup implements Row.
func (r MapRow) Lookup(field string) (any, bool) {
	v, ok := r[field]
	return v, ok
}

// configFields is the ordered vocabulary of the configuration key.
var configFields = []struct {
	code  string
	field string
}{
	{"S", "slitwid"},
	{"D", "dichroic"},
	{"G", "dispname"},
	{"T", "dispangle"},
}

// InstConfig summarises the instrument setup of an exposure as
// S{d}-D{d}-G{d}-T{d}-B{d}, where each {d} keeps only the decimal digits of
// the corresponding metadata value. Missing fields (or a nil row) count as
// "0". An empty binning falls back to DefaultBinning with a warning.
//
// The key is deterministic but lossy: "600/7500" and "6007500" encode the
// same, and distinct setups can collide.
func InstConfig(row Row, binning string, log *Logger) string {
	var b strings.Builder
	for _, f := range configFields {
		comp := "0"
		if row != nil {
			if v, ok := row.Lookup(f.field); ok {
				comp = stringify(v)
			} else {
				log.Diagf("metadata field %s missing, using 0", f.field)
			}
		}
		b.WriteString(f.code)
		b.WriteString(digitsOf(comp))
		b.WriteString(nameSep)
	}
	if binning == "" {
		log.Opsf("Assuming %s binning for your detector", DefaultBinning)
		binning = DefaultBinning
	}
	b.WriteString("B")
	b.WriteString(digitsOf(binning))
	return b.String()
}

// digitsOf keeps the ASCII decimal digits of s in order.
func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stringify renders a metadata value the way the upstream header tables
// print it. Floats always carry a fractional part, so 1.0 gives "1.0" and
// therefore the digits "10", not "1".
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return x
	case float64:
		return formatFloat(x, 64)
	case float32:
		return formatFloat(float64(x), 32)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// formatFloat prints the shortest round-tripping form with a decimal point,
// switching to exponent form (1e-05, 1e+16) outside [1e-4, 1e16).
func formatFloat(f float64, bitSize int) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, bitSize)
	}
	if a := math.Abs(f); a != 0 && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, bitSize)
	}
	s := strconv.FormatFloat(f, 'f', -1, bitSize)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
