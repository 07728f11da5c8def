package specobj

import (
	"encoding/json"
	"fmt"
	"math"
)

// ObjType classifies the source behind a spectrum.
type ObjType int

const (
	ObjTypeUnknown ObjType = iota
	ObjTypeStandard
	ObjTypeScience
)

var objTypeNames = []string{"unknown", "standard", "science"}

func (t ObjType) String() string {
	if t < 0 || int(t) >= len(objTypeNames) {
		return fmt.Sprintf("ObjType(%d)", int(t))
	}
	return objTypeNames[t]
}

// ParseObjType parses "unknown", "standard" or "science". The empty string
// is unknown.
func ParseObjType(s string) (ObjType, error) {
	if s == "" {
		return ObjTypeUnknown, nil
	}
	for i, name := range objTypeNames {
		if s == name {
			return ObjType(i), nil
		}
	}
	return ObjTypeUnknown, fmt.Errorf("unknown object type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t ObjType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ObjType) UnmarshalText(b []byte) error {
	v, err := ParseObjType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Shape is the (spectral, spatial) pixel size of a detector image.
type Shape struct {
	NSpec int `json:"nspec"`
	NSpat int `json:"nspat"`
}

// Valid reports whether both dimensions are positive.
func (s Shape) Valid() bool { return s.NSpec > 0 && s.NSpat > 0 }

// SpatialBounds are a slit's left and right edges at the reference row,
// as fractions of the detector's spatial size.
type SpatialBounds struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// HandAperture holds user-forced extraction placement. Nil fields are unset.
type HandAperture struct {
	Spec *float64 `json:"spec,omitempty"`
	Spat *float64 `json:"spat,omitempty"`
	Det  *int     `json:"det,omitempty"`
	FWHM *float64 `json:"fwhm,omitempty"`
	Flag bool     `json:"flag"`
}

// Placement carries the identity inputs of a new record.
type Placement struct {
	Det     int
	Config  string
	SlitID  int
	ScIdx   int
	ObjType ObjType

	// SpatFracPos is the object's fractional position across its slit.
	SpatFracPos float64
}

// SpecObj is one spectroscopic object detected in one exposure.
//
// Geometry and identity are fixed at construction. Boxcar and Optimal are
// filled later by extraction; this type does no extraction itself.
type SpecObj struct {
	Shape       Shape
	SlitSpatPos SpatialBounds
	// SlitSpecPos is the spectral row at which the slit edges were read.
	SlitSpecPos float64
	Det         int
	Config      string
	ScIdx       int
	ObjType     ObjType
	SpatFracPos float64

	slitID int
	objID  int

	TraceSpec []float64
	TraceSpat []float64
	FWHM      float64

	Hand HandAperture

	Boxcar  Extraction
	Optimal Extraction
}

// NewSpecObj validates the geometry and identity inputs and derives the
// object id from p.SpatFracPos (round half to even of xobj·1000).
func NewSpecObj(shape Shape, slitSpatPos SpatialBounds, slitSpecPos float64, p Placement) (*SpecObj, error) {
	if !shape.Valid() {
		return nil, fmt.Errorf("%w: shape %dx%d", ErrInvalidGeometry, shape.NSpec, shape.NSpat)
	}
	if !(slitSpatPos.Left < slitSpatPos.Right) {
		return nil, fmt.Errorf("%w: slit bounds (%g, %g)", ErrDegenerateSlit, slitSpatPos.Left, slitSpatPos.Right)
	}
	if slitSpecPos < 0 || slitSpecPos >= float64(shape.NSpec) {
		return nil, fmt.Errorf("%w: reference row %g outside [0, %d)", ErrInvalidGeometry, slitSpecPos, shape.NSpec)
	}
	if p.Det < MinDet || p.Det > MaxDet {
		return nil, fmt.Errorf("%w: det %d", ErrEncodingBounds, p.Det)
	}
	if p.SlitID < 0 || p.SlitID > MaxSlitID {
		return nil, fmt.Errorf("%w: slitid %d", ErrEncodingBounds, p.SlitID)
	}
	if p.ScIdx < 1 || p.ScIdx > MaxScIdx {
		return nil, fmt.Errorf("%w: scidx %d", ErrEncodingBounds, p.ScIdx)
	}
	objID, err := ObjIDFromFrac(p.SpatFracPos)
	if err != nil {
		return nil, err
	}
	return &SpecObj{
		Shape:       shape,
		SlitSpatPos: slitSpatPos,
		SlitSpecPos: slitSpecPos,
		Det:         p.Det,
		Config:      p.Config,
		ScIdx:       p.ScIdx,
		ObjType:     p.ObjType,
		SpatFracPos: p.SpatFracPos,
		slitID:      p.SlitID,
		objID:       objID,
	}, nil
}

// fracTolerance absorbs rounding in (x-left)/(right-left) for traces
// sitting exactly on a slit edge.
const fracTolerance = 1e-9

// ObjIDFromFrac converts a fractional slit position into an object id.
// Positions in [0, 1] map to [0, 999]; positions that round to 1000 clamp
// to 999.
func ObjIDFromFrac(xobj float64) (int, error) {
	if math.IsNaN(xobj) || xobj < -fracTolerance || xobj > 1+fracTolerance {
		return 0, fmt.Errorf("%w: xobj %g", ErrTraceOutsideSlit, xobj)
	}
	id := int(math.RoundToEven(xobj * 1e3))
	return max(0, min(id, MaxObjID)), nil
}

// ObjID returns the object id within the slit.
func (o *SpecObj) ObjID() int { return o.objID }

// SlitID returns the slit id within the exposure.
func (o *SpecObj) SlitID() int { return o.slitID }

// Key returns the identity fields of the record.
func (o *SpecObj) Key() ObjKey {
	return ObjKey{ObjID: o.objID, SlitID: o.slitID, Det: o.Det, ScIdx: o.ScIdx}
}

// Name encodes the record's identity. It is recomputed on every call.
func (o *SpecObj) Name(format DetectorFormat) (string, error) {
	return EncodeName(o.Key(), format)
}

// SetHand records a user-forced aperture and raises the hand flag.
func (o *SpecObj) SetHand(spec, spat, fwhm float64, det int) {
	o.Hand = HandAperture{Spec: &spec, Spat: &spat, FWHM: &fwhm, Det: &det, Flag: true}
}

// Copy returns a record that shares no mutable state with o.
func (o *SpecObj) Copy() *SpecObj {
	c := *o
	c.TraceSpec = append([]float64(nil), o.TraceSpec...)
	c.TraceSpat = append([]float64(nil), o.TraceSpat...)
	c.Hand = o.Hand.clone()
	c.Boxcar = o.Boxcar.Clone()
	c.Optimal = o.Optimal.Clone()
	return &c
}

func (h HandAperture) clone() HandAperture {
	out := HandAperture{Flag: h.Flag}
	if h.Spec != nil {
		v := *h.Spec
		out.Spec = &v
	}
	if h.Spat != nil {
		v := *h.Spat
		out.Spat = &v
	}
	if h.Det != nil {
		v := *h.Det
		out.Det = &v
	}
	if h.FWHM != nil {
		v := *h.FWHM
		out.FWHM = &v
	}
	return out
}

// CheckTrace reports whether trace passes within toler pixels of the
// record's object position at the reference row.
func (o *SpecObj) CheckTrace(trace []float64, toler float64) bool {
	if len(trace) == 0 {
		return false
	}
	yfrac := o.SlitSpecPos / float64(o.Shape.NSpec)
	yidx := int(math.RoundToEven(yfrac * float64(len(trace))))
	if yidx >= len(trace) {
		yidx = len(trace) - 1
	}
	nspat := float64(o.Shape.NSpat)
	nslit := nspat * (o.SlitSpatPos.Right - o.SlitSpatPos.Left)
	xobjPix := nspat*o.SlitSpatPos.Left + nslit*o.SpatFracPos
	return math.Abs(trace[yidx]-xobjPix) < toler
}

func (o *SpecObj) String() string {
	return fmt.Sprintf("<SpecObj: Setup = %s, Slit = %d at spec = %7.2f & spat = (%7.2f,%7.2f) on det=%s, scidx=%d, objid = %d and objtype=%s>",
		o.Config, o.slitID, o.SlitSpecPos, o.SlitSpatPos.Left, o.SlitSpatPos.Right,
		DetTwoDigit(o.Det), o.ScIdx, o.objID, o.ObjType)
}

// specObjJSON is the serialised form of a record.
type specObjJSON struct {
	Shape       Shape         `json:"shape"`
	SlitSpatPos SpatialBounds `json:"slit_spat_pos"`
	SlitSpecPos float64       `json:"slit_spec_pos"`
	Det         int           `json:"det"`
	Config      string        `json:"config"`
	SlitID      int           `json:"slitid"`
	ScIdx       int           `json:"scidx"`
	ObjType     ObjType       `json:"objtype"`
	ObjID       int           `json:"objid"`
	SpatFracPos float64       `json:"spat_fracpos"`
	TraceSpec   []float64     `json:"trace_spec,omitempty"`
	TraceSpat   []float64     `json:"trace_spat,omitempty"`
	FWHM        float64       `json:"fwhm,omitempty"`
	Hand        HandAperture  `json:"hand"`
	Boxcar      Extraction    `json:"boxcar,omitempty"`
	Optimal     Extraction    `json:"optimal,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (o *SpecObj) MarshalJSON() ([]byte, error) {
	return json.Marshal(specObjJSON{
		Shape:       o.Shape,
		SlitSpatPos: o.SlitSpatPos,
		SlitSpecPos: o.SlitSpecPos,
		Det:         o.Det,
		Config:      o.Config,
		SlitID:      o.slitID,
		ScIdx:       o.ScIdx,
		ObjType:     o.ObjType,
		ObjID:       o.objID,
		SpatFracPos: o.SpatFracPos,
		TraceSpec:   o.TraceSpec,
		TraceSpat:   o.TraceSpat,
		FWHM:        o.FWHM,
		Hand:        o.Hand,
		Boxcar:      o.Boxcar,
		Optimal:     o.Optimal,
	})
}

// UnmarshalJSON implements json.Unmarshaler. The stored object id must agree
// with the stored fractional position.
func (o *SpecObj) UnmarshalJSON(b []byte) error {
	var raw specObjJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	rec, err := NewSpecObj(raw.Shape, raw.SlitSpatPos, raw.SlitSpecPos, Placement{
		Det:         raw.Det,
		Config:      raw.Config,
		SlitID:      raw.SlitID,
		ScIdx:       raw.ScIdx,
		ObjType:     raw.ObjType,
		SpatFracPos: raw.SpatFracPos,
	})
	if err != nil {
		return err
	}
	if rec.objID != raw.ObjID {
		return fmt.Errorf("objid %d does not match spat_fracpos %g", raw.ObjID, raw.SpatFracPos)
	}
	rec.TraceSpec = raw.TraceSpec
	rec.TraceSpat = raw.TraceSpat
	rec.FWHM = raw.FWHM
	rec.Hand = raw.Hand
	rec.Boxcar = raw.Boxcar
	rec.Optimal = raw.Optimal
	*o = *rec
	return nil
}
