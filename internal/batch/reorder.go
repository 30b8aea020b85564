package batch

import (
	"sort"

	"gptbridge/pkg/types"
)

// reorder sorts responses by id and projects the answers.
// In strict mode the id set must be exactly {0..want-1}; otherwise the
// result may be shorter than want and shifted.
func reorder(recs []types.ResponseRecord, want int, strict bool) ([]string, error) {
	if strict {
		if err := checkComplete(recs, want); err != nil {
			return nil, err
		}
	}
	sorted := append([]types.ResponseRecord(nil), recs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	out := make([]string, len(sorted))
	for i, r := range sorted {
		out[i] = r.Answer
	}
	return out, nil
}

func checkComplete(recs []types.ResponseRecord, want int) error {
	seen := make([]int, want)
	var unexpected, dup []int
	for _, r := range recs {
		if r.ID < 0 || r.ID >= want {
			unexpected = append(unexpected, r.ID)
			continue
		}
		seen[r.ID]++
		if seen[r.ID] == 2 {
			dup = append(dup, r.ID)
		}
	}
	var missing []int
	for id, n := range seen {
		if n == 0 {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 && len(unexpected) == 0 && len(dup) == 0 {
		return nil
	}
	sort.Ints(unexpected)
	sort.Ints(dup)
	return &IncompleteResponseError{Want: want, Missing: missing, Unexpected: unexpected, Duplicate: dup}
}
