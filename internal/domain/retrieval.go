package domain

// RetrievalQuery is a semantic product search request.
type RetrievalQuery struct {
	Text     string
	MaxPrice float64 // 0 means unconstrained
	Category string  // empty means unconstrained
	Limit    int     // 0 means the configured default
}

// RetrievalResult is a ranked result set. Results are sorted descending by
// similarity score; ties break by record id ascending for determinism.
type RetrievalResult struct {
	Records []ScoredRecord `json:"records"`
	// Fallback is true when the brute-force cosine scan produced the
	// result instead of the native vector index.
	Fallback bool `json:"fallback"`
}
