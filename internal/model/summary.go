package model

import "time"

// LoadSummary captures what happened while mapping one source into records.
type LoadSummary struct {
	Source          string
	SourceSHA256    string
	RowsRead        int64
	RowsMapped      int64
	RowsDropped     int64 // required date unparseable
	ParseErrors     int64 // field-level coercion failures, record kept
	UnknownDuration int64
	Duration        time.Duration
}

// IngestSummary captures metrics from a single Postgres load run.
type IngestSummary struct {
	FilePath      string
	FileSHA256    string
	SourceFileID  int64
	IngestBatchID string
	RowsRead      int64
	RowsStaged    int64
	ParseErrors   int64
	DurationMap   time.Duration
	DurationCopy  time.Duration
	DurationTotal time.Duration
}
