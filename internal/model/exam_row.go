package model

// ExamRow mirrors the parquet snapshot schema for a single exam. Timestamps
// are RFC3339 text so the snapshot reads back through the same mapping path
// as delimited files.
type ExamRow struct {
	Date        *string  `parquet:"date,optional"`
	CreatedAt   *string  `parquet:"created_at,optional"`
	FinalizedAt *string  `parquet:"finalized_at,optional"`
	RawDuration *string  `parquet:"raw_duration,optional"`
	TATMinutes  *float64 `parquet:"tat_minutes,optional"`

	Provider string  `parquet:"provider"`
	Modality *string `parquet:"modality,optional"`
	Section  *string `parquet:"section,optional"`
	Shift    *string `parquet:"shift,optional"`

	RVU        float64 `parquet:"rvu"`
	Points     float64 `parquet:"points"`
	Procedures float64 `parquet:"procedures"`
	HalfDays   float64 `parquet:"half_days"`

	PointsPerHalfDay     *float64 `parquet:"points_per_half_day,optional"`
	ProceduresPerHalfDay *float64 `parquet:"procedures_per_half_day,optional"`
}
