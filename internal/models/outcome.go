package models

import "time"

// Outcome records how a completed game resolved for the team the situation
// was recorded from.
type Outcome struct {
	Won        bool `json:"won"`
	Covered    bool `json:"covered"`
	TotalOver  bool `json:"total_over"`
	Margin     int  `json:"margin"`
	TotalScore int  `json:"total_score"`
}

// HistoricalRecord pairs a feature vector with the outcome of the game it was
// derived from. Records are immutable once written and owned by the vector
// store.
type HistoricalRecord struct {
	Vector     []float64       `json:"vector"`
	Situation  SituationRecord `json:"situation"`
	Outcome    Outcome         `json:"outcome"`
	InsertedAt time.Time       `json:"inserted_at"`
}

// SimilarityResult is one hit from a vector store query. Transient; never
// persisted.
type SimilarityResult struct {
	Similarity float64
	Record     *HistoricalRecord
}
