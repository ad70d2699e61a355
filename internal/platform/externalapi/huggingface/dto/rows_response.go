// Package dto defines the datasets-server response payloads.
package dto

// RowsResponse is the body of GET /rows.
type RowsResponse struct {
	Rows         []RowEntry `json:"rows"`
	NumRowsTotal int        `json:"num_rows_total"`
	NumRowsPage  int        `json:"num_rows_per_page"`
	Partial      bool       `json:"partial"`
	ErrorMessage string     `json:"error,omitempty"`
}

// RowEntry wraps a single dataset row. Column names vary between datasets,
// so the row is kept as a generic map.
type RowEntry struct {
	RowIdx int            `json:"row_idx"`
	Row    map[string]any `json:"row"`
}
