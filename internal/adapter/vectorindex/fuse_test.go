package vectorindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarag/internal/domain"
)

func result(pointID string, score float32) domain.RetrievedResult {
	return domain.RetrievedResult{
		Chunk:   domain.Chunk{DocumentID: "doc-" + pointID, Text: "text " + pointID},
		Score:   score,
		PointID: pointID,
	}
}

func TestFuseRRF_ScoresFollowFormula(t *testing.T) {
	dense := []domain.RetrievedResult{result("a", 0.9), result("b", 0.8), result("c", 0.7)}
	sparse := []domain.RetrievedResult{result("b", 12.0), result("a", 11.0), result("d", 10.0)}

	fusedResults := fuseRRF(dense, sparse, 60, 0)

	require.Len(t, fusedResults, 4)

	scores := make(map[string]float32, len(fusedResults))
	for _, r := range fusedResults {
		scores[r.PointID] = r.Score
	}
	// a: dense rank 1, sparse rank 2
	assert.InDelta(t, 1.0/61+1.0/62, scores["a"], 1e-6)
	// b: dense rank 2, sparse rank 1
	assert.InDelta(t, 1.0/62+1.0/61, scores["b"], 1e-6)
	// c: dense rank 3 only
	assert.InDelta(t, 1.0/63, scores["c"], 1e-6)
	// d: sparse rank 3 only
	assert.InDelta(t, 1.0/63, scores["d"], 1e-6)
}

func TestFuseRRF_TieBreakPrefersEarlierDense(t *testing.T) {
	// a and b end up with identical fused scores; a ranks earlier in dense.
	dense := []domain.RetrievedResult{result("a", 0.9), result("b", 0.8)}
	sparse := []domain.RetrievedResult{result("b", 5.0), result("a", 4.0)}

	fusedResults := fuseRRF(dense, sparse, 60, 0)

	require.Len(t, fusedResults, 2)
	assert.Equal(t, "a", fusedResults[0].PointID)
	assert.Equal(t, "b", fusedResults[1].PointID)
}

func TestFuseRRF_DenseAndSparseOnlyTie(t *testing.T) {
	// c appears only in dense at rank 2, d only in sparse at rank 2: same
	// score, and the dense-list member wins the tie.
	dense := []domain.RetrievedResult{result("a", 0.9), result("c", 0.8)}
	sparse := []domain.RetrievedResult{result("b", 5.0), result("d", 4.0)}

	fusedResults := fuseRRF(dense, sparse, 60, 0)

	require.Len(t, fusedResults, 4)
	assert.Equal(t, "c", fusedResults[2].PointID)
	assert.Equal(t, "d", fusedResults[3].PointID)
}

func TestFuseRRF_SymmetricUpToTieBreak(t *testing.T) {
	dense := []domain.RetrievedResult{result("a", 0.9), result("b", 0.8), result("c", 0.7)}
	sparse := []domain.RetrievedResult{result("d", 9.0), result("b", 8.0)}

	forward := fuseRRF(dense, sparse, 60, 0)
	// Swapping the lists must produce identical fused scores per point.
	backward := fuseRRF(sparse, dense, 60, 0)

	forwardScores := make(map[string]float32)
	for _, r := range forward {
		forwardScores[r.PointID] = r.Score
	}
	for _, r := range backward {
		assert.InDelta(t, forwardScores[r.PointID], r.Score, 1e-6)
	}
}

func TestFuseRRF_LimitTruncates(t *testing.T) {
	dense := []domain.RetrievedResult{result("a", 0.9), result("b", 0.8), result("c", 0.7)}
	sparse := []domain.RetrievedResult{result("d", 9.0)}

	fusedResults := fuseRRF(dense, sparse, 60, 2)

	assert.Len(t, fusedResults, 2)
}

func TestFuseRRF_EmptySparseList(t *testing.T) {
	dense := []domain.RetrievedResult{result("a", 0.9), result("b", 0.8)}

	fusedResults := fuseRRF(dense, nil, 60, 0)

	require.Len(t, fusedResults, 2)
	assert.Equal(t, "a", fusedResults[0].PointID)
	assert.InDelta(t, 1.0/61, fusedResults[0].Score, 1e-6)
}
