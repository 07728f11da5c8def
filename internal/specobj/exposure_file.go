package specobj

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

// ExposureFile is the JSON form of an Exposure, as written by the slit
// tracing and object finding steps.
type ExposureFile struct {
	Shape      Shape           `json:"shape"`
	Det        int             `json:"det"`
	ScIdx      int             `json:"scidx"`
	ObjType    ObjType         `json:"objtype"`
	Binning    string          `json:"binning,omitempty"`
	Meta       map[string]any  `json:"meta,omitempty"`
	LeftEdges  [][]float64     `json:"left_edges"`
	RightEdges [][]float64     `json:"right_edges"`
	MaskSlits  []bool          `json:"mask_slits,omitempty"`
	Slits      []SlitTraceFile `json:"slits"`
}

// SlitTraceFile is the JSON form of a SlitTrace.
type SlitTraceFile struct {
	NObj   int         `json:"nobj"`
	Traces [][]float64 `json:"traces,omitempty"`
	Object [][]float64 `json:"object,omitempty"`
}

// LoadExposureFile reads an exposure from a .json file.
func LoadExposureFile(path string) (*Exposure, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("exposure file must have .json extension, got %q", ext)
	}
	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open exposure file: %w", err)
	}
	defer f.Close()
	return LoadExposure(f)
}

// LoadExposure decodes an ExposureFile from r and converts it.
func LoadExposure(r io.Reader) (*Exposure, error) {
	var ef ExposureFile
	dec := json.NewDecoder(r)
	// Keep metadata numbers as written so 8000 stays "8000" in the config key.
	dec.UseNumber()
	if err := dec.Decode(&ef); err != nil {
		return nil, fmt.Errorf("failed to parse exposure JSON: %w", err)
	}
	return ef.Exposure()
}

// Exposure converts the file form into matrices.
func (ef *ExposureFile) Exposure() (*Exposure, error) {
	left, err := denseFromRows(ef.LeftEdges)
	if err != nil {
		return nil, fmt.Errorf("left_edges: %w", err)
	}
	right, err := denseFromRows(ef.RightEdges)
	if err != nil {
		return nil, fmt.Errorf("right_edges: %w", err)
	}
	exp := &Exposure{
		Shape:     ef.Shape,
		Edges:     SlitEdges{Left: left, Right: right},
		MaskSlits: ef.MaskSlits,
		Det:       ef.Det,
		ScIdx:     ef.ScIdx,
		ObjType:   ef.ObjType,
		Binning:   ef.Binning,
	}
	if ef.Meta != nil {
		exp.Meta = MapRow(ef.Meta)
	}
	for i, s := range ef.Slits {
		st := SlitTrace{NObj: s.NObj}
		if len(s.Traces) > 0 {
			if st.Traces, err = denseFromRows(s.Traces); err != nil {
				return nil, fmt.Errorf("slit %d traces: %w", i, err)
			}
		}
		if len(s.Object) > 0 {
			obj, err := denseFromRows(s.Object)
			if err != nil {
				return nil, fmt.Errorf("slit %d object: %w", i, err)
			}
			st.Object = obj
		}
		exp.Traces = append(exp.Traces, st)
	}
	return exp, nil
}

// denseFromRows packs a rectangular [][]float64 into a *mat.Dense.
func denseFromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty array", ErrInvalidGeometry)
	}
	ncols := len(rows[0])
	data := make([]float64, 0, len(rows)*ncols)
	for i, row := range rows {
		if len(row) != ncols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidGeometry, i, len(row), ncols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), ncols, data), nil
}
