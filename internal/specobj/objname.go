package specobj

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Bounds of the fixed-width fields of an object name.
const (
	MaxObjID  = 999
	MaxSlitID = 9999
	MaxScIdx  = 9999
	MinDet    = 1
	MaxDet    = 99
)

// Field codes of an object name, in encoding order.
const (
	FieldObj   = "O"
	FieldSlit  = "S"
	FieldDet   = "D"
	FieldScIdx = "I"
)

const nameSep = "-"

// ObjKey holds the identity fields that make up an object name.
type ObjKey struct {
	ObjID  int `json:"objid"`
	SlitID int `json:"slitid"`
	Det    int `json:"det"`
	ScIdx  int `json:"scidx"`
}

// DetectorFormat renders a detector number the way an instrument names it.
type DetectorFormat func(det int) string

// DetNumber renders the detector as a plain integer ("1", "12").
func DetNumber(det int) string { return strconv.Itoa(det) }

// DetTwoDigit renders the detector zero-padded to two digits ("01", "12").
func DetTwoDigit(det int) string { return fmt.Sprintf("%02d", det) }

// EncodeName builds the object name O###-S####-D{det}-I#### for k.
// A nil format uses DetNumber.
func EncodeName(k ObjKey, format DetectorFormat) (string, error) {
	if k.ObjID < 0 || k.ObjID > MaxObjID {
		return "", fmt.Errorf("%w: objid %d not in [0, %d]", ErrEncodingBounds, k.ObjID, MaxObjID)
	}
	if k.SlitID < 0 || k.SlitID > MaxSlitID {
		return "", fmt.Errorf("%w: slitid %d not in [0, %d]", ErrEncodingBounds, k.SlitID, MaxSlitID)
	}
	if k.Det < MinDet || k.Det > MaxDet {
		return "", fmt.Errorf("%w: det %d not in [%d, %d]", ErrEncodingBounds, k.Det, MinDet, MaxDet)
	}
	if k.ScIdx < 0 || k.ScIdx > MaxScIdx {
		return "", fmt.Errorf("%w: scidx %d not in [0, %d]", ErrEncodingBounds, k.ScIdx, MaxScIdx)
	}
	if format == nil {
		format = DetNumber
	}
	return fmt.Sprintf("O%03d-S%04d-D%s-I%04d", k.ObjID, k.SlitID, format(k.Det), k.ScIdx), nil
}

// NameFields maps a field code (the first character of each fragment) to
// its integer value.
type NameFields map[string]int

// Key converts decoded fields back into an ObjKey. Fields other than
// O, S, D and I are ignored; any of those four that is missing is an error.
func (f NameFields) Key() (ObjKey, error) {
	var k ObjKey
	for _, c := range []struct {
		code string
		dst  *int
	}{
		{FieldObj, &k.ObjID},
		{FieldSlit, &k.SlitID},
		{FieldDet, &k.Det},
		{FieldScIdx, &k.ScIdx},
	} {
		v, ok := f[c.code]
		if !ok {
			return ObjKey{}, fmt.Errorf("%w: %s", ErrMissingField, c.code)
		}
		*c.dst = v
	}
	return k, nil
}

// Codes returns the field codes in sorted order.
func (f NameFields) Codes() []string {
	codes := make([]string, 0, len(f))
	for code := range f {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// DecodeName splits an object name on "-" and parses each fragment as a
// one-letter code followed by an integer. Unknown codes are kept; a repeated
// code keeps its last value.
func DecodeName(name string) (NameFields, error) {
	fields, _, err := decodeOrdered(name)
	return fields, err
}

// decodeOrdered is DecodeName that also reports the order in which codes
// first appear.
func decodeOrdered(name string) (NameFields, []string, error) {
	fields := make(NameFields)
	var order []string
	for i, frag := range strings.Split(name, nameSep) {
		if frag == "" {
			return nil, nil, fmt.Errorf("%w: %q: empty fragment %d", ErrDecodeParse, name, i)
		}
		r, size := utf8.DecodeRuneInString(frag)
		if r == utf8.RuneError {
			return nil, nil, fmt.Errorf("%w: %q: invalid code in fragment %q", ErrDecodeParse, name, frag)
		}
		v, err := strconv.Atoi(frag[size:])
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %q: fragment %q: %v", ErrDecodeParse, name, frag, err)
		}
		code := string(r)
		if _, seen := fields[code]; !seen {
			order = append(order, code)
		}
		fields[code] = v
	}
	return fields, order, nil
}

// NameTable is the column view of a batch of decoded names. Columns[code][i]
// is the value of code in the i-th input name.
type NameTable struct {
	Codes   []string         `json:"codes"`
	Columns map[string][]int `json:"columns"`
	Len     int              `json:"len"`
}

// Column returns the values for code, or nil if the batch has no such field.
func (t *NameTable) Column(code string) []int {
	if t == nil {
		return nil
	}
	return t.Columns[code]
}

// DecodeNames decodes every name and gathers the values column-wise in input
// order. The field set is fixed by the first name; any later name with a
// different set fails with ErrKeySetMismatch.
func DecodeNames(names []string) (*NameTable, error) {
	t := &NameTable{Columns: make(map[string][]int), Len: len(names)}
	for i, name := range names {
		fields, order, err := decodeOrdered(name)
		if err != nil {
			return nil, fmt.Errorf("name %d: %w", i, err)
		}
		if i == 0 {
			t.Codes = order
			for _, code := range order {
				t.Columns[code] = make([]int, 0, len(names))
			}
		} else if !sameCodes(t.Columns, fields) {
			return nil, fmt.Errorf("%w: name %d %q has fields %v, want %v",
				ErrKeySetMismatch, i, name, fields.Codes(), t.Codes)
		}
		for _, code := range t.Codes {
			t.Columns[code] = append(t.Columns[code], fields[code])
		}
	}
	return t, nil
}

func sameCodes(columns map[string][]int, fields NameFields) bool {
	if len(columns) != len(fields) {
		return false
	}
	for code := range fields {
		if _, ok := columns[code]; !ok {
			return false
		}
	}
	return true
}
