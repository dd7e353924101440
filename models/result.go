package models

import "encoding/json"

// MarketStats is the per-source-market slice of an import run.
type MarketStats struct {
	Processed   int `json:"processed"`
	New         int `json:"new"`
	Updated     int `json:"updated"`
	Deactivated int `json:"deactivated"`
}

// ImportResult is the aggregate outcome of a full import or an
// incremental sync. Success is true iff Errors is empty; skipped
// records (no downloaded images) count toward TotalProcessed only.
type ImportResult struct {
	Success               bool                    `json:"success"`
	TotalProcessed        int                     `json:"totalProcessed"`
	NewProperties         int                     `json:"newProperties"`
	UpdatedProperties     int                     `json:"updatedProperties"`
	DeactivatedProperties int                     `json:"deactivatedProperties"`
	ImageUploads          int                     `json:"imageUploads"`
	Errors                []string                `json:"errors"`
	Markets               map[string]*MarketStats `json:"markets"`
}

func NewImportResult() *ImportResult {
	return &ImportResult{
		Errors:  []string{},
		Markets: make(map[string]*MarketStats),
	}
}

// Market returns the stats bucket for a source market, creating it on
// first use.
func (r *ImportResult) Market(slug string) *MarketStats {
	m, ok := r.Markets[slug]
	if !ok {
		m = &MarketStats{}
		r.Markets[slug] = m
	}
	return m
}

// AddError appends a human-readable error message. One bad record never
// aborts a batch; the message lands here instead.
func (r *ImportResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// Finalize settles the success flag once all records are processed.
func (r *ImportResult) Finalize() *ImportResult {
	r.Success = len(r.Errors) == 0
	return r
}

// ToJSON returns JSON-serializable run metadata.
func (r *ImportResult) ToJSON() json.RawMessage {
	data, _ := json.Marshal(r)
	return data
}
