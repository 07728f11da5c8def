package specobj

import "fmt"

// Channel names one array produced by boxcar or optimal extraction.
type Channel string

// Extraction channels.
const (
	ChannelWave    Channel = "wave"
	ChannelCounts  Channel = "counts"
	ChannelVar     Channel = "var"
	ChannelSky     Channel = "sky"
	ChannelMask    Channel = "mask"
	ChannelFlam    Channel = "flam"
	ChannelFlamVar Channel = "flam_var"
)

// Channels lists the extraction vocabulary in canonical order.
var Channels = []Channel{
	ChannelWave, ChannelCounts, ChannelVar, ChannelSky,
	ChannelMask, ChannelFlam, ChannelFlamVar,
}

// Valid reports whether c belongs to the extraction vocabulary.
func (c Channel) Valid() bool {
	for _, known := range Channels {
		if c == known {
			return true
		}
	}
	return false
}

// Extraction holds the arrays of one extraction method. All channels share
// a length. A nil Extraction means extraction has not run.
type Extraction map[Channel][]float64

// Len returns the common channel length, or 0 when empty.
func (e Extraction) Len() int {
	for _, v := range e {
		return len(v)
	}
	return 0
}

// Set stores a copy of vals under c. The channel must be in the vocabulary
// and vals must match the length of channels already present.
func (e Extraction) Set(c Channel, vals []float64) error {
	if !c.Valid() {
		return fmt.Errorf("unknown extraction channel %q", c)
	}
	if n := e.Len(); len(e) > 0 && len(vals) != n {
		if _, only := e[c]; !(only && len(e) == 1) {
			return fmt.Errorf("channel %s has %d samples, want %d", c, len(vals), n)
		}
	}
	e[c] = append([]float64(nil), vals...)
	return nil
}

// Clone deep-copies e. Cloning nil returns nil.
func (e Extraction) Clone() Extraction {
	if e == nil {
		return nil
	}
	out := make(Extraction, len(e))
	for c, v := range e {
		out[c] = append([]float64(nil), v...)
	}
	return out
}
