package domain

import "time"

// Reject explains why one input row was dropped. Row is 1-based and counts the header.
type Reject struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult is returned to the caller of a bulk import.
type ImportResult struct {
	RunID     string       `json:"run_id"`
	Schema    ImportSchema `json:"schema"`
	FileName  string       `json:"file_name"`
	Total     int          `json:"total"`
	Inserted  int          `json:"inserted"`
	Rejected  []Reject     `json:"rejected"`
	Coerced   int          `json:"coerced"`
	ObjectKey string       `json:"object_key,omitempty"`
}

// ImportRun is the stored audit record of one import.
type ImportRun struct {
	ID           string          `json:"id" db:"id"`
	Schema       ImportSchema    `json:"schema" db:"schema_name"`
	FileName     string          `json:"file_name" db:"file_name"`
	ObjectKey    string          `json:"object_key" db:"object_key"`
	Inserted     int             `json:"inserted" db:"inserted"`
	Rejected     int             `json:"rejected" db:"rejected"`
	Status       ImportRunStatus `json:"status" db:"status"`
	ErrorMessage string          `json:"error_message,omitempty" db:"error_message"`
	StartedAt    time.Time       `json:"started_at" db:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
}

// ImportRequest is one file handed to the importer.
type ImportRequest struct {
	Schema        ImportSchema
	FileName      string
	Data          []byte
	IsCurrentYear bool
}
