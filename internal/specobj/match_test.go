package specobj

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchObject_ToleranceBoundary(t *testing.T) {
	t.Parallel()

	query := "O500-S1000-D1-I1"
	cands := []string{"O505-S1040-D1-I9"}

	m, ok, err := MatchObject(query, cands, DefaultTolerance())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, cands, m.Names)
	assert.Equal(t, []int{0}, m.Indices)

	m, ok, err = MatchObject(query, cands, Tolerance{Obj: 4, Slit: 50})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, m.Names)
	assert.Empty(t, m.Indices)

	_, ok, err = MatchObject(query, cands, Tolerance{Obj: 10, Slit: 40})
	require.NoError(t, err)
	assert.False(t, ok, "|ΔS| = 40 is not below 40")
}

func TestMatchObject_ExactWithZeroTolerance(t *testing.T) {
	t.Parallel()

	cands := []string{
		"O500-S1000-D1-I3", // same object, other exposure
		"O501-S1000-D1-I1",
		"O500-S1001-D1-I1",
		"O500-S1000-D2-I1",
	}
	m, ok, err := MatchObject("O500-S1000-D1-I1", cands, Tolerance{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{0}, m.Indices)
	assert.Equal(t, []string{"O500-S1000-D1-I3"}, m.Names)
}

func TestMatchObject_DetectorNeverFuzzy(t *testing.T) {
	t.Parallel()

	cands := []string{"O500-S1000-D2-I1", "O500-S1000-D3-I1", "O500-S1000-D11-I1"}
	m, ok, err := MatchObject("O500-S1000-D1-I1", cands, Tolerance{Obj: 1000, Slit: 10000})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Match{}, m)
}

func TestMatchObject_PreservesCandidateOrder(t *testing.T) {
	t.Parallel()

	cands := []string{
		"O498-S1010-D1-I2",
		"O700-S1010-D1-I2",
		"O503-S0990-D1-I2",
		"O500-S1000-D1-I2",
	}
	before := append([]string(nil), cands...)

	m, ok, err := MatchObject("O500-S1000-D1-I1", cands, DefaultTolerance())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{0, 2, 3}, m.Indices)
	assert.Equal(t, []string{cands[0], cands[2], cands[3]}, m.Names)
	assert.Equal(t, before, cands, "candidates must not be mutated")
}

func TestMatchObject_Errors(t *testing.T) {
	t.Parallel()

	good := []string{"O500-S1000-D1-I1"}

	_, ok, err := MatchObject("O500-S1000-D1-I1", nil, DefaultTolerance())
	assert.ErrorIs(t, err, ErrNoCandidates)
	assert.False(t, ok)

	_, _, err = MatchObject("O500-Sxx-D1", good, DefaultTolerance())
	assert.ErrorIs(t, err, ErrDecodeParse)

	_, _, err = MatchObject("O500-S1000-I1", good, DefaultTolerance())
	assert.ErrorIs(t, err, ErrMissingField)

	_, _, err = MatchObject("O500-S1000-D1-I1", []string{"O500-S1000-D1-I1", "O500-S1000-D1"}, DefaultTolerance())
	assert.ErrorIs(t, err, ErrKeySetMismatch)

	_, _, err = MatchObject("O500-S1000-D1-I1", []string{"O500-S1000-I1"}, DefaultTolerance())
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestMatchObject_Deterministic(t *testing.T) {
	t.Parallel()

	cands := []string{"O498-S1010-D1-I2", "O503-S0990-D1-I2", "O900-S0990-D1-I2"}
	first, _, err := MatchObject("O500-S1000-D1-I1", cands, DefaultTolerance())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, _, err := MatchObject("O500-S1000-D1-I1", cands, DefaultTolerance())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
