package specobj

import "fmt"

// RunComparison shows how the objects of two reductions line up.
type RunComparison struct {
	Run1ID   string        `json:"run1_id,omitempty"`
	Run2ID   string        `json:"run2_id,omitempty"`
	Matched  []ObjectMatch `json:"matched,omitempty"`
	OnlyRun1 []string      `json:"only_run1,omitempty"`
	OnlyRun2 []string      `json:"only_run2,omitempty"`
}

// ObjectMatch pairs a run 1 object with its closest run 2 counterpart.
type ObjectMatch struct {
	Name1 string `json:"name1"`
	Name2 string `json:"name2"`
	DObj  int    `json:"dobj"`
	DSlit int    `json:"dslit"`

	// Candidates is how many run 2 names satisfied the tolerance, paired
	// or not.
	Candidates int `json:"candidates"`
}

// CompareRuns pairs the names of run1 with those of run2 one to one. Run 1
// names are taken in order; each is paired with the closest run 2 name not
// already paired (object id, then slit id, then list order). A run 1 name
// whose candidates are all taken goes to OnlyRun1, and run 2 names left
// unpaired go to OnlyRun2.
func CompareRuns(run1, run2 []string, tol Tolerance) (*RunComparison, error) {
	cmp := &RunComparison{}
	if len(run2) == 0 {
		cmp.OnlyRun1 = append(cmp.OnlyRun1, run1...)
		return cmp, nil
	}
	tbl, err := DecodeNames(run2)
	if err != nil {
		return nil, fmt.Errorf("run 2: %w", err)
	}
	used := make([]bool, len(run2))
	for _, name := range run1 {
		m, ok, err := MatchObject(name, run2, tol)
		if err != nil {
			return nil, err
		}
		if !ok {
			cmp.OnlyRun1 = append(cmp.OnlyRun1, name)
			continue
		}
		q, _ := DecodeName(name)
		best := -1
		var bestObj, bestSlit int
		for _, idx := range m.Indices {
			if used[idx] {
				continue
			}
			dObj := absInt(tbl.Columns[FieldObj][idx] - q[FieldObj])
			dSlit := absInt(tbl.Columns[FieldSlit][idx] - q[FieldSlit])
			if best < 0 || dObj < bestObj || (dObj == bestObj && dSlit < bestSlit) {
				best, bestObj, bestSlit = idx, dObj, dSlit
			}
		}
		if best < 0 {
			cmp.OnlyRun1 = append(cmp.OnlyRun1, name)
			continue
		}
		used[best] = true
		cmp.Matched = append(cmp.Matched, ObjectMatch{
			Name1:      name,
			Name2:      run2[best],
			DObj:       bestObj,
			DSlit:      bestSlit,
			Candidates: len(m.Indices),
		})
	}
	for i, name := range run2 {
		if !used[i] {
			cmp.OnlyRun2 = append(cmp.OnlyRun2, name)
		}
	}
	return cmp, nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
