package specobj

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DummySpecObjs builds two records at xobj 0.4 and 0.6 of a
// slit spanning 0.3-0.7 of the detector, for tests and demos. With
// extraction set, each gets a 2001-sample boxcar spectrum over 4000-6000 Å.
func DummySpecObjs(shape Shape, det int, extraction bool) ([]*SpecObj, error) {
	const (
		config = "AA"
		scidx  = 5
		npix   = 2001
	)
	bounds := SpatialBounds{Left: 0.3, Right: 0.7}
	specPos := math.Floor(0.5 * float64(shape.NSpec))
	var objs []*SpecObj
	for _, xobj := range []float64{0.4, 0.6} {
		o, err := NewSpecObj(shape, bounds, specPos, Placement{
			Det:         det,
			Config:      config,
			SlitID:      5000,
			ScIdx:       scidx,
			SpatFracPos: xobj,
		})
		if err != nil {
			return nil, err
		}
		if extraction {
			wave := floats.Span(make([]float64, npix), 4000, 6000)
			counts := make([]float64, npix)
			for j, w := range wave {
				counts[j] = 50 * math.Pow(w/5000, -1)
			}
			o.Boxcar = Extraction{}
			for _, ch := range []struct {
				c Channel
				v []float64
			}{{ChannelWave, wave}, {ChannelCounts, counts}, {ChannelVar, counts}} {
				if err := o.Boxcar.Set(ch.c, ch.v); err != nil {
					return nil, err
				}
			}
		}
		objs = append(objs, o)
	}
	return objs, nil
}
