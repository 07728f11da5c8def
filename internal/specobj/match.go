package specobj

import "fmt"

// Default matching tolerances, in object-id and slit-id units.
const (
	DefaultObjTolerance  = 10
	DefaultSlitTolerance = 50
)

// Tolerance bounds how far apart two names may be and still match.
// A difference d satisfies a tolerance t when d < t or d == 0, so zero
// tolerances demand exact equality.
type Tolerance struct {
	Obj  int `json:"obj"`
	Slit int `json:"slit"`
}

// DefaultTolerance returns the default matching tolerances.
func DefaultTolerance() Tolerance {
	return Tolerance{Obj: DefaultObjTolerance, Slit: DefaultSlitTolerance}
}

func within(a, b, tol int) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d == 0 || d < tol
}

// Match lists the candidates that matched, with their positions in the
// candidate list, in candidate order.
type Match struct {
	Names   []string `json:"names"`
	Indices []int    `json:"indices"`
}

// MatchObject finds the candidates that may be the same object as query:
// object ids and slit ids within tolerance and an identical detector. The
// exposure index is ignored. ok is false when nothing matched.
func MatchObject(query string, candidates []string, tol Tolerance) (m Match, ok bool, err error) {
	if len(candidates) == 0 {
		return Match{}, false, ErrNoCandidates
	}
	q, err := DecodeName(query)
	if err != nil {
		return Match{}, false, fmt.Errorf("query: %w", err)
	}
	qo, qs, qd, err := matchFields(q)
	if err != nil {
		return Match{}, false, fmt.Errorf("query %q: %w", query, err)
	}
	tbl, err := DecodeNames(candidates)
	if err != nil {
		return Match{}, false, fmt.Errorf("candidates: %w", err)
	}
	objs, slits, dets := tbl.Column(FieldObj), tbl.Column(FieldSlit), tbl.Column(FieldDet)
	if objs == nil || slits == nil || dets == nil {
		return Match{}, false, fmt.Errorf("candidates: %w: need %s, %s and %s", ErrMissingField, FieldObj, FieldSlit, FieldDet)
	}
	for i := 0; i < tbl.Len; i++ {
		if within(objs[i], qo, tol.Obj) && within(slits[i], qs, tol.Slit) && dets[i] == qd {
			m.Names = append(m.Names, candidates[i])
			m.Indices = append(m.Indices, i)
		}
	}
	return m, len(m.Indices) > 0, nil
}

func matchFields(f NameFields) (obj, slit, det int, err error) {
	var ok bool
	if obj, ok = f[FieldObj]; !ok {
		return 0, 0, 0, fmt.Errorf("%w: %s", ErrMissingField, FieldObj)
	}
	if slit, ok = f[FieldSlit]; !ok {
		return 0, 0, 0, fmt.Errorf("%w: %s", ErrMissingField, FieldSlit)
	}
	if det, ok = f[FieldDet]; !ok {
		return 0, 0, 0, fmt.Errorf("%w: %s", ErrMissingField, FieldDet)
	}
	return obj, slit, det, nil
}
