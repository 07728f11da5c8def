package specobj

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DefaultRefRowFraction is the fractional spectral row at which slits and
// objects are located.
const DefaultRefRowFraction = 0.5

// SlitTrace is the object-finding output for one slit.
type SlitTrace struct {
	NObj int

	// Traces holds one column per object; rows are spectral rows and values
	// are spatial pixels.
	Traces *mat.Dense

	// Object is the optional backing image of the slit. Only its shape is used.
	Object mat.Matrix
}

// Exposure bundles the inputs for enumerating one exposure's objects.
type Exposure struct {
	// Shape is the detector image shape. A slit's own Object image, when
	// present, takes precedence.
	Shape     Shape
	Edges     SlitEdges
	MaskSlits []bool
	Traces    []SlitTrace
	Det       int
	ScIdx     int
	ObjType   ObjType
	Meta      Row
	Binning   string
}

func (e *Exposure) masked(slit int) bool {
	return slit < len(e.MaskSlits) && e.MaskSlits[slit]
}

// SlitKind tags why a slit did or did not produce records.
type SlitKind int

const (
	// SlitExcluded means the slit was masked out of the analysis.
	SlitExcluded SlitKind = iota
	// SlitEmpty means object finding reported no objects.
	SlitEmpty
	// SlitObjects means at least one record was built.
	SlitObjects
	// SlitFailed means the slit's geometry or traces were unusable.
	SlitFailed
)

func (k SlitKind) String() string {
	switch k {
	case SlitExcluded:
		return "excluded"
	case SlitEmpty:
		return "empty"
	case SlitObjects:
		return "objects"
	case SlitFailed:
		return "failed"
	default:
		return fmt.Sprintf("SlitKind(%d)", int(k))
	}
}

// SlitResult is the enumeration outcome for one slit. Err is set for failed
// slits, and for slits where some (not all) traces were rejected. Config is
// the exposure's configuration key, the same string stamped on every record.
type SlitResult struct {
	Slit    int
	Kind    SlitKind
	Config  string
	Objects []*SpecObj
	Err     error
}

// EnumeratorConfig holds enumeration settings.
type EnumeratorConfig struct {
	// RefRowFraction is the fractional spectral row used to read slit edges
	// and traces. Must be in [0, 1).
	RefRowFraction float64
}

// DefaultEnumeratorConfig returns the default enumeration settings.
func DefaultEnumeratorConfig() EnumeratorConfig {
	return EnumeratorConfig{RefRowFraction: DefaultRefRowFraction}
}

// Enumerator builds SpecObj records from slit-trace data. It holds no
// per-call state and is safe for concurrent use.
type Enumerator struct {
	cfg EnumeratorConfig
	log *Logger
}

// NewEnumerator creates an Enumerator. log may be nil.
func NewEnumerator(cfg EnumeratorConfig, log *Logger) (*Enumerator, error) {
	if cfg.RefRowFraction < 0 || cfg.RefRowFraction >= 1 {
		return nil, fmt.Errorf("reference row fraction must be in [0, 1), got %g", cfg.RefRowFraction)
	}
	return &Enumerator{cfg: cfg, log: log}, nil
}

// Enumerate returns one SlitResult per entry of exp.Traces, in slit order.
// Problems confined to a slit are reported in that slit's result; the
// returned error is reserved for inputs that make the whole call unusable.
func (e *Enumerator) Enumerate(exp *Exposure) ([]SlitResult, error) {
	if exp == nil {
		return nil, errors.New("nil exposure")
	}
	_, nslits, err := exp.Edges.Dims()
	if err != nil {
		return nil, err
	}
	if len(exp.Traces) > nslits {
		return nil, fmt.Errorf("%w: %d trace tables for %d slits", ErrInvalidGeometry, len(exp.Traces), nslits)
	}

	config := InstConfig(exp.Meta, exp.Binning, e.log)
	results := make([]SlitResult, len(exp.Traces))
	for sl := range exp.Traces {
		results[sl] = e.enumerateSlit(exp, sl, config)
		r := results[sl]
		switch r.Kind {
		case SlitFailed:
			e.log.Opsf("slit %d skipped: %v", sl+1, r.Err)
		case SlitObjects:
			e.log.Diagf("slit %d: %d object(s)", sl+1, len(r.Objects))
			if r.Err != nil {
				e.log.Opsf("slit %d: rejected traces: %v", sl+1, r.Err)
			}
		}
	}
	return results, nil
}

func (e *Enumerator) enumerateSlit(exp *Exposure, sl int, config string) SlitResult {
	res := SlitResult{Slit: sl, Config: config}
	if exp.masked(sl) {
		res.Kind = SlitExcluded
		return res
	}
	tr := exp.Traces[sl]
	if tr.NObj == 0 {
		e.log.Opsf("No objects for slit %d", sl+1)
		res.Kind = SlitEmpty
		return res
	}

	fail := func(err error) SlitResult {
		res.Kind = SlitFailed
		res.Err = err
		return res
	}
	if tr.Traces == nil {
		return fail(fmt.Errorf("%w: slit %d reports %d objects but has no traces", ErrInvalidGeometry, sl, tr.NObj))
	}
	shape, err := e.shapeFor(exp, sl)
	if err != nil {
		return fail(err)
	}
	geom, err := SlitAt(exp.Edges, shape.NSpat, sl, e.cfg.RefRowFraction)
	if err != nil {
		return fail(err)
	}
	nrows, ncols := tr.Traces.Dims()
	if geom.Row >= nrows {
		return fail(fmt.Errorf("%w: slit %d traces have %d rows, reference row is %d", ErrInvalidGeometry, sl, nrows, geom.Row))
	}

	spec := make([]float64, nrows)
	for i := range spec {
		spec[i] = float64(i)
	}
	var rejected []error
	for q := 0; q < ncols; q++ {
		xobj, err := geom.FracPos(tr.Traces.At(geom.Row, q))
		if err != nil {
			return fail(err)
		}
		rec, err := NewSpecObj(shape, geom.Bounds, float64(geom.Row), Placement{
			Det:         exp.Det,
			Config:      config,
			SlitID:      geom.SlitID,
			ScIdx:       exp.ScIdx,
			ObjType:     exp.ObjType,
			SpatFracPos: xobj,
		})
		if err != nil {
			rejected = append(rejected, fmt.Errorf("trace %d: %w", q, err))
			continue
		}
		rec.TraceSpec = spec
		rec.TraceSpat = mat.Col(nil, q, tr.Traces)
		res.Objects = append(res.Objects, rec.Copy())
	}
	if len(res.Objects) == 0 {
		return fail(errors.Join(rejected...))
	}
	res.Kind = SlitObjects
	res.Err = errors.Join(rejected...)
	return res
}

// shapeFor resolves the image shape for slit sl: the slit's own object
// image, then the exposure shape, then slit 0's object image.
func (e *Enumerator) shapeFor(exp *Exposure, sl int) (Shape, error) {
	if obj := exp.Traces[sl].Object; obj != nil {
		r, c := obj.Dims()
		return Shape{NSpec: r, NSpat: c}, nil
	}
	if exp.Shape.Valid() {
		return exp.Shape, nil
	}
	if obj := exp.Traces[0].Object; obj != nil {
		r, c := obj.Dims()
		e.log.Diagf("slit %d has no image or exposure shape; using slit 1 image %dx%d", sl+1, r, c)
		return Shape{NSpec: r, NSpat: c}, nil
	}
	return Shape{}, fmt.Errorf("%w: no image shape for slit %d", ErrInvalidGeometry, sl)
}

// ConfigKey returns the configuration key the enumeration used. ok is false
// when there are no slit results to take it from.
func ConfigKey(results []SlitResult) (key string, ok bool) {
	if len(results) == 0 {
		return "", false
	}
	return results[0].Config, true
}

// Records flattens the records of all slits in slit order.
func Records(results []SlitResult) []*SpecObj {
	var out []*SpecObj
	for _, r := range results {
		out = append(out, r.Objects...)
	}
	return out
}

// Names encodes every record in order.
func Names(objs []*SpecObj, format DetectorFormat) ([]string, error) {
	names := make([]string, 0, len(objs))
	for _, o := range objs {
		n, err := o.Name(format)
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, nil
}
