package vectorindex

import (
	"sort"

	"scholarag/internal/domain"
)

// DefaultRRFK is the rank-smoothing constant of Reciprocal Rank Fusion.
const DefaultRRFK = 60

// fuseRRF combines a dense and a sparse result list by Reciprocal Rank
// Fusion: each point's fused score is the sum over the lists it appears in of
// 1/(k + rank), ranks 1-based within each list. The fused ranking is by score
// descending; exact ties are broken by earliest appearance in the dense list,
// then by earliest appearance in the sparse list. The fusion is symmetric in
// its two inputs up to that tie-break.
func fuseRRF(dense, sparse []domain.RetrievedResult, k float64, limit int) []domain.RetrievedResult {
	type fused struct {
		result     domain.RetrievedResult
		score      float64
		denseRank  int // 1-based, 0 = absent
		sparseRank int
	}

	byPoint := make(map[string]*fused, len(dense)+len(sparse))
	order := make([]string, 0, len(dense)+len(sparse))

	add := func(r domain.RetrievedResult, rank int, isDense bool) {
		f, ok := byPoint[r.PointID]
		if !ok {
			f = &fused{result: r}
			byPoint[r.PointID] = f
			order = append(order, r.PointID)
		}
		f.score += 1.0 / (k + float64(rank))
		if isDense {
			f.denseRank = rank
		} else {
			f.sparseRank = rank
		}
	}

	for i, r := range dense {
		add(r, i+1, true)
	}
	for i, r := range sparse {
		add(r, i+1, false)
	}

	results := make([]*fused, 0, len(order))
	for _, id := range order {
		results = append(results, byPoint[id])
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if ra, rb := tieRank(a.denseRank), tieRank(b.denseRank); ra != rb {
			return ra < rb
		}
		return tieRank(a.sparseRank) < tieRank(b.sparseRank)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	out := make([]domain.RetrievedResult, len(results))
	for i, f := range results {
		out[i] = f.result
		out[i].Score = float32(f.score)
	}
	return out
}

// tieRank maps "absent from list" to a rank beyond any real one.
func tieRank(rank int) int {
	if rank == 0 {
		return int(^uint(0) >> 1)
	}
	return rank
}
