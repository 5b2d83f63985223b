package vectorstore

import (
	"math"
	"sort"

	"github.com/yourusername/sharpline/internal/models"
)

// flatIndex is an exact inner-product index over L2-normalized vectors. The
// inner product of two unit vectors is their cosine similarity, so the index
// and the brute-force path agree by construction.
//
// An index is immutable after construction; the store swaps whole instances.
type flatIndex struct {
	dim     int
	rows    [][]float64 // normalized copies
	records []*models.HistoricalRecord
}

func buildFlatIndex(records []*models.HistoricalRecord, dim int) *flatIndex {
	idx := &flatIndex{
		dim:     dim,
		rows:    make([][]float64, 0, len(records)),
		records: make([]*models.HistoricalRecord, 0, len(records)),
	}
	for _, rec := range records {
		idx.rows = append(idx.rows, l2Normalize(rec.Vector))
		idx.records = append(idx.records, rec)
	}
	return idx
}

func (idx *flatIndex) size() int {
	return len(idx.rows)
}

func (idx *flatIndex) search(vec []float64, k int, minSimilarity float64) []models.SimilarityResult {
	q := l2Normalize(vec)

	results := make([]models.SimilarityResult, 0, k)
	for i, row := range idx.rows {
		var dot float64
		for j := range row {
			dot += q[j] * row[j]
		}
		if dot >= minSimilarity {
			results = append(results, models.SimilarityResult{Similarity: dot, Record: idx.records[i]})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

func l2Normalize(vec []float64) []float64 {
	var sum float64
	for _, x := range vec {
		sum += x * x
	}
	norm := math.Sqrt(sum) + 1e-10
	out := make([]float64, len(vec))
	for i, x := range vec {
		out[i] = x / norm
	}
	return out
}
