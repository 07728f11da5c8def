package specobj

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/banshee-data/specid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func newTestEnumerator(t *testing.T, log *Logger) *Enumerator {
	t.Helper()
	e, err := NewEnumerator(DefaultEnumeratorConfig(), log)
	require.NoError(t, err)
	return e
}

func TestEnumerate_EndToEnd(t *testing.T) {
	t.Parallel()

	const nspec = 2048
	exp := &Exposure{
		Shape: Shape{NSpec: nspec, NSpat: 1024},
		Edges: SlitEdges{
			Left:  testutil.ConstColumns(nspec, 300),
			Right: testutil.ConstColumns(nspec, 700),
		},
		Traces: []SlitTrace{{NObj: 1, Traces: testutil.ConstColumns(nspec, 500)}},
		Det:    1,
		ScIdx:  7,
	}

	results, err := newTestEnumerator(t, nil).Enumerate(exp)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, SlitObjects, results[0].Kind)
	require.NoError(t, results[0].Err)
	require.Len(t, results[0].Objects, 1)

	o := results[0].Objects[0]
	assert.InDelta(t, 0.5, o.SpatFracPos, 1e-12)
	assert.Equal(t, 500, o.ObjID())
	// Slit centre 500/1024 of the detector.
	assert.Equal(t, 4883, o.SlitID())
	assert.Equal(t, 1024.0, o.SlitSpecPos)
	assert.Equal(t, SpatialBounds{Left: 300.0 / 1024, Right: 700.0 / 1024}, o.SlitSpatPos)
	assert.Equal(t, Shape{NSpec: nspec, NSpat: 1024}, o.Shape)
	assert.Equal(t, "S0-D0-G0-T0-B11", o.Config)

	name, err := o.Name(nil)
	require.NoError(t, err)
	assert.Equal(t, "O500-S4883-D1-I0007", name)

	// The same identity with the slit numbered 12 reproduces the reference name.
	ref, err := EncodeName(ObjKey{ObjID: o.ObjID(), SlitID: 12, Det: o.Det, ScIdx: o.ScIdx}, nil)
	require.NoError(t, err)
	assert.Equal(t, "O500-S0012-D1-I0007", ref)

	require.Len(t, o.TraceSpat, nspec)
	require.Len(t, o.TraceSpec, nspec)
	assert.Equal(t, 500.0, o.TraceSpat[0])
	assert.Equal(t, float64(nspec-1), o.TraceSpec[nspec-1])
}

// mixedExposure has four slits: masked, empty, degenerate, and two objects.
func mixedExposure() *Exposure {
	const nspec = 100
	return &Exposure{
		Shape: Shape{NSpec: nspec, NSpat: 1024},
		Edges: SlitEdges{
			Left:  testutil.ConstColumns(nspec, 100, 250, 400, 600),
			Right: testutil.ConstColumns(nspec, 200, 350, 400, 900),
		},
		MaskSlits: []bool{true, false, false, false},
		Traces: []SlitTrace{
			{NObj: 1, Traces: testutil.ConstColumns(nspec, 150)},
			{NObj: 0},
			{NObj: 1, Traces: testutil.ConstColumns(nspec, 400)},
			{NObj: 2, Traces: testutil.ConstColumns(nspec, 675, 825)},
		},
		Det:     2,
		ScIdx:   3,
		ObjType: ObjTypeScience,
		Meta:    MapRow{"slitwid": 1.0, "dispname": "600/7500"},
		Binning: "2x2",
	}
}

func TestEnumerate_SlitKinds(t *testing.T) {
	t.Parallel()

	var ops bytes.Buffer
	results, err := newTestEnumerator(t, NewLogger(LogWriters{Ops: &ops})).Enumerate(mixedExposure())
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, r := range results {
		assert.Equal(t, i, r.Slit)
	}

	assert.Equal(t, SlitExcluded, results[0].Kind)
	assert.Empty(t, results[0].Objects)

	assert.Equal(t, SlitEmpty, results[1].Kind)
	assert.Empty(t, results[1].Objects)
	assert.Contains(t, ops.String(), "No objects for slit 2")

	assert.Equal(t, SlitFailed, results[2].Kind)
	assert.ErrorIs(t, results[2].Err, ErrDegenerateSlit)
	assert.Empty(t, results[2].Objects)

	assert.Equal(t, SlitObjects, results[3].Kind)
	require.Len(t, results[3].Objects, 2)
	objs := results[3].Objects
	assert.Equal(t, 250, objs[0].ObjID())
	assert.Equal(t, 750, objs[1].ObjID())
	for _, o := range objs {
		assert.Equal(t, 7324, o.SlitID())
		assert.Equal(t, ObjTypeScience, o.ObjType)
		assert.Equal(t, "S10-D0-G6007500-T0-B22", o.Config)
	}

	names, err := Names(Records(results), DetTwoDigit)
	require.NoError(t, err)
	assert.Equal(t, []string{"O250-S7324-D02-I0003", "O750-S7324-D02-I0003"}, names)
}

func TestEnumerate_ResultsCarryConfigKey(t *testing.T) {
	t.Parallel()

	results, err := newTestEnumerator(t, nil).Enumerate(mixedExposure())
	require.NoError(t, err)

	key, ok := ConfigKey(results)
	require.True(t, ok)
	assert.Equal(t, "S10-D0-G6007500-T0-B22", key)
	for _, r := range results {
		assert.Equal(t, key, r.Config, "slit %d", r.Slit)
	}
	for _, o := range Records(results) {
		assert.Equal(t, key, o.Config)
	}

	_, ok = ConfigKey(nil)
	assert.False(t, ok)
}

func TestEnumerate_MaskedSlitIgnoresTraceTable(t *testing.T) {
	t.Parallel()

	exp := mixedExposure()
	// A masked slit with degenerate edges and a broken trace table still
	// comes back as excluded.
	exp.MaskSlits = []bool{false, false, true, false}
	exp.Traces[2] = SlitTrace{NObj: 5}

	results, err := newTestEnumerator(t, nil).Enumerate(exp)
	require.NoError(t, err)
	assert.Equal(t, SlitExcluded, results[2].Kind)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, SlitObjects, results[0].Kind)
}

func TestEnumerate_RejectsTracesOutsideSlit(t *testing.T) {
	t.Parallel()

	const nspec = 50
	exp := &Exposure{
		Shape: Shape{NSpec: nspec, NSpat: 1024},
		Edges: SlitEdges{
			Left:  testutil.ConstColumns(nspec, 600, 100),
			Right: testutil.ConstColumns(nspec, 900, 200),
		},
		Traces: []SlitTrace{
			{NObj: 2, Traces: testutil.ConstColumns(nspec, 650, 950)},
			{NObj: 1, Traces: testutil.ConstColumns(nspec, 50)},
		},
		Det:   1,
		ScIdx: 1,
	}

	results, err := newTestEnumerator(t, nil).Enumerate(exp)
	require.NoError(t, err)

	assert.Equal(t, SlitObjects, results[0].Kind)
	require.Len(t, results[0].Objects, 1)
	assert.Equal(t, 167, results[0].Objects[0].ObjID())
	assert.ErrorIs(t, results[0].Err, ErrTraceOutsideSlit)

	assert.Equal(t, SlitFailed, results[1].Kind)
	assert.ErrorIs(t, results[1].Err, ErrTraceOutsideSlit)
}

func TestEnumerate_TraceOnRightEdgeKeepsObject(t *testing.T) {
	t.Parallel()

	const nspec = 20
	exp := &Exposure{
		Shape: Shape{NSpec: nspec, NSpat: 1000},
		Edges: SlitEdges{
			Left:  testutil.ConstColumns(nspec, 300),
			Right: testutil.ConstColumns(nspec, 700),
		},
		Traces: []SlitTrace{{NObj: 2, Traces: testutil.ConstColumns(nspec, 699.9, 700)}},
		Det:    1,
		ScIdx:  1,
	}

	results, err := newTestEnumerator(t, nil).Enumerate(exp)
	require.NoError(t, err)
	require.Equal(t, SlitObjects, results[0].Kind)
	assert.NoError(t, results[0].Err)
	require.Len(t, results[0].Objects, 2)
	for _, o := range results[0].Objects {
		assert.Equal(t, 999, o.ObjID())
	}
	name, err := results[0].Objects[1].Name(nil)
	require.NoError(t, err)
	assert.Equal(t, "O999-S5000-D1-I0001", name)
}

func TestEnumerate_TiltedTraceUsesReferenceRow(t *testing.T) {
	t.Parallel()

	const nspec = 100
	exp := &Exposure{
		Shape: Shape{NSpec: nspec, NSpat: 1024},
		Edges: SlitEdges{
			Left:  testutil.ConstColumns(nspec, 600),
			Right: testutil.ConstColumns(nspec, 900),
		},
		Traces: []SlitTrace{{NObj: 1, Traces: testutil.TiltedColumn(nspec, 650, 0.1)}},
		Det:    1,
		ScIdx:  1,
	}

	results, err := newTestEnumerator(t, nil).Enumerate(exp)
	require.NoError(t, err)
	o := results[0].Objects[0]
	// Row 50: 650 + 5 = 655, (655-600)/300 = 0.18333
	assert.Equal(t, 183, o.ObjID())
	assert.Equal(t, 650.0, o.TraceSpat[0])
	assert.InDelta(t, 659.9, o.TraceSpat[nspec-1], 1e-9)
	assert.True(t, o.CheckTrace(o.TraceSpat, 0.5))
}

func TestEnumerate_RecordsDoNotShareState(t *testing.T) {
	t.Parallel()

	results, err := newTestEnumerator(t, nil).Enumerate(mixedExposure())
	require.NoError(t, err)
	a, b := results[3].Objects[0], results[3].Objects[1]
	a.TraceSpec[0] = -1
	a.TraceSpat[0] = -1
	assert.Equal(t, 0.0, b.TraceSpec[0])
	assert.Equal(t, 825.0, b.TraceSpat[0])
}

func TestEnumerate_ShapeResolution(t *testing.T) {
	t.Parallel()

	const nspec = 60
	base := func() *Exposure {
		return &Exposure{
			Edges: SlitEdges{
				Left:  testutil.ConstColumns(nspec, 100, 300),
				Right: testutil.ConstColumns(nspec, 200, 400),
			},
			Traces: []SlitTrace{
				{NObj: 1, Traces: testutil.ConstColumns(nspec, 150)},
				{NObj: 1, Traces: testutil.ConstColumns(nspec, 350)},
			},
			Det:   1,
			ScIdx: 1,
		}
	}

	t.Run("slit 0 image fallback", func(t *testing.T) {
		exp := base()
		exp.Traces[0].Object = mat.NewDense(nspec, 500, nil)
		results, err := newTestEnumerator(t, nil).Enumerate(exp)
		require.NoError(t, err)
		assert.Equal(t, Shape{NSpec: nspec, NSpat: 500}, results[1].Objects[0].Shape)
	})

	t.Run("own image wins over exposure shape", func(t *testing.T) {
		exp := base()
		exp.Shape = Shape{NSpec: nspec, NSpat: 1024}
		exp.Traces[1].Object = mat.NewDense(nspec, 800, nil)
		results, err := newTestEnumerator(t, nil).Enumerate(exp)
		require.NoError(t, err)
		assert.Equal(t, Shape{NSpec: nspec, NSpat: 1024}, results[0].Objects[0].Shape)
		assert.Equal(t, Shape{NSpec: nspec, NSpat: 800}, results[1].Objects[0].Shape)
	})

	t.Run("no shape anywhere", func(t *testing.T) {
		results, err := newTestEnumerator(t, nil).Enumerate(base())
		require.NoError(t, err)
		for _, r := range results {
			assert.Equal(t, SlitFailed, r.Kind)
			assert.ErrorIs(t, r.Err, ErrInvalidGeometry)
		}
	})
}

func TestEnumerate_MissingTraces(t *testing.T) {
	t.Parallel()

	exp := mixedExposure()
	exp.Traces[3] = SlitTrace{NObj: 2}
	results, err := newTestEnumerator(t, nil).Enumerate(exp)
	require.NoError(t, err)
	assert.Equal(t, SlitFailed, results[3].Kind)
	assert.ErrorIs(t, results[3].Err, ErrInvalidGeometry)
}

func TestEnumerate_InvalidInputs(t *testing.T) {
	t.Parallel()

	e := newTestEnumerator(t, nil)

	_, err := e.Enumerate(nil)
	assert.Error(t, err)

	_, err = e.Enumerate(&Exposure{})
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	exp := mixedExposure()
	exp.Edges.Right = testutil.ConstColumns(100, 200, 350)
	_, err = e.Enumerate(exp)
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	exp = mixedExposure()
	exp.Traces = append(exp.Traces, SlitTrace{})
	_, err = e.Enumerate(exp)
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestNewEnumerator_RefRowFraction(t *testing.T) {
	t.Parallel()

	for _, bad := range []float64{-0.1, 1, 1.5} {
		_, err := NewEnumerator(EnumeratorConfig{RefRowFraction: bad}, nil)
		assert.Error(t, err, "ypos=%g", bad)
	}
	_, err := NewEnumerator(EnumeratorConfig{RefRowFraction: 0}, nil)
	assert.NoError(t, err)
}

func TestEnumerate_ConcurrentExposures(t *testing.T) {
	t.Parallel()

	e := newTestEnumerator(t, nil)
	var wg sync.WaitGroup
	names := make([][]string, 8)
	errs := make([]error, 8)
	for i := range names {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			exp := mixedExposure()
			exp.ScIdx = i + 1
			results, err := e.Enumerate(exp)
			if err != nil {
				errs[i] = err
				return
			}
			names[i], errs[i] = Names(Records(results), nil)
		}(i)
	}
	wg.Wait()
	for i := range names {
		require.NoError(t, errs[i])
		require.Len(t, names[i], 2)
		assert.True(t, strings.HasSuffix(names[i][0], "-I000"+string(rune('1'+i))), names[i][0])
	}
}

func TestSlitKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "excluded", SlitExcluded.String())
	assert.Equal(t, "empty", SlitEmpty.String())
	assert.Equal(t, "objects", SlitObjects.String())
	assert.Equal(t, "failed", SlitFailed.String())
	assert.Equal(t, "SlitKind(9)", SlitKind(9).String())
}

func TestRefRow(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1024, RefRow(0.5, 2048))
	assert.Equal(t, 50, RefRow(0.5, 100))
	assert.Equal(t, 2, RefRow(0.5, 5)) // 2.5 rounds to even
	assert.Equal(t, 4, RefRow(0.99, 5))
	assert.Equal(t, 0, RefRow(0, 5))
}
