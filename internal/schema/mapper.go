package schema

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/rvustats/internal/model"
	"github.com/gyeh/rvustats/internal/normalize"
	"github.com/gyeh/rvustats/internal/source"
)

// Options controls one mapping pass.
type Options struct {
	Profile   string              // model.AllProfiles name; model.DefaultProfile when empty
	Aliases   map[string][]string // extra header aliases per canonical field
	Synonyms  normalize.Synonyms  // nil means normalize.DefaultSynonyms; empty disables synonyms
	DeriveTAT bool                // fill unknown TAT from finalized_at - created_at
}

// Validate resolves the table's headers and checks the profile's required
// columns.
func Validate(t *source.Table, opts Options) (*Mapping, model.Profile, error) {
	name := opts.Profile
	if name == "" {
		name = model.DefaultProfile
	}
	profile, ok := model.ProfileByName(name)
	if !ok {
		return nil, model.Profile{}, fmt.Errorf("unknown profile %q", name)
	}

	m := Resolve(t.Headers, opts.Aliases)
	if missing := m.Missing(profile.Required); len(missing) > 0 {
		return nil, profile, &SchemaError{Source: t.Name, Profile: profile.Name, Missing: missing}
	}
	return m, profile, nil
}

// Map converts every row of t into a Record. Field-level parse failures
// leave the field null or zero and keep the record; only a SchemaError
// stops the load.
func Map(t *source.Table, opts Options, log zerolog.Logger) ([]model.Record, *model.LoadSummary, error) {
	start := time.Now()

	m, profile, err := Validate(t, opts)
	if err != nil {
		return nil, nil, err
	}
	requireDate := false
	for _, f := range profile.Required {
		if f == model.FieldDate {
			requireDate = true
		}
	}

	synonyms := opts.Synonyms
	if synonyms == nil {
		synonyms = normalize.DefaultSynonyms()
	}

	sum := &model.LoadSummary{Source: t.Name, RowsRead: int64(len(t.Rows))}
	records := make([]model.Record, 0, len(t.Rows))

	for i, row := range t.Rows {
		rowNum := int64(i + 1)
		rm := rowMapper{m: m, row: row, rowNum: rowNum, log: log}

		rec := model.Record{SourceRow: rowNum}
		rec.Date = rm.date(model.FieldDate, normalize.ParseDate)
		if requireDate && rec.Date == nil {
			sum.RowsDropped++
			log.Warn().Int64("row", rowNum).Msg("row dropped: no usable date")
			continue
		}
		rec.CreatedAt = rm.date(model.FieldCreatedAt, normalize.ParseTime)
		rec.FinalizedAt = rm.date(model.FieldFinalizedAt, normalize.ParseTime)

		rec.RawDuration = rm.cell(model.FieldRawDuration)
		rec.TAT = normalize.ParseDuration(rec.RawDuration, synonyms)
		if !rec.TAT.Known && m.Has(model.FieldTATMinutes) {
			if v, ok := normalize.ParseNumber(rm.cell(model.FieldTATMinutes)); ok {
				rec.TAT = normalize.ParseDuration(v, synonyms)
			}
		}
		if !rec.TAT.Known && opts.DeriveTAT && rec.CreatedAt != nil && rec.FinalizedAt != nil {
			rec.TAT = normalize.ParseDuration(rec.FinalizedAt.Sub(*rec.CreatedAt), synonyms)
		}
		if !rec.TAT.Known {
			sum.UnknownDuration++
		}

		rec.Provider = normalize.ProviderName(rm.cell(model.FieldProvider))
		rec.Modality = normalize.Category(rm.cell(model.FieldModality))
		rec.Section = normalize.Category(rm.cell(model.FieldSection))
		rec.Shift = normalize.Category(rm.cell(model.FieldShift))

		rec.RVU = rm.number(model.FieldRVU)
		rec.Points = rm.number(model.FieldPoints)
		rec.Procedures = rm.number(model.FieldProcedures)
		rec.HalfDays = rm.number(model.FieldHalfDays)

		rec.PointsPerHalfDay = rm.measure(model.FieldPointsPerHalfDay, rec.Points, rec.HalfDays)
		rec.ProceduresPerHalfDay = rm.measure(model.FieldProceduresPerHalfDay, rec.Procedures, rec.HalfDays)

		sum.ParseErrors += rm.errors
		records = append(records, rec)
	}

	sum.RowsMapped = int64(len(records))
	sum.Duration = time.Since(start)

	log.Info().
		Str("source", t.Name).
		Str("profile", profile.Name).
		Int64("rows_read", sum.RowsRead).
		Int64("rows_mapped", sum.RowsMapped).
		Int64("rows_dropped", sum.RowsDropped).
		Int64("parse_errors", sum.ParseErrors).
		Int64("unknown_tat", sum.UnknownDuration).
		Dur("duration", sum.Duration).
		Msg("mapping complete")

	return records, sum, nil
}

// rowMapper reads typed fields from one raw row and counts coercion failures.
type rowMapper struct {
	m      *Mapping
	row    []string
	rowNum int64
	log    zerolog.Logger
	errors int64
}

func (r *rowMapper) cell(field string) string {
	return source.Cell(r.row, r.m.Index(field))
}

func (r *rowMapper) date(field string, parse func(string) *time.Time) *time.Time {
	s := r.cell(field)
	if s == "" {
		return nil
	}
	t := parse(s)
	if t == nil {
		r.fail(field, s)
	}
	return t
}

// number coerces a metric cell; blank and invalid both become 0.
func (r *rowMapper) number(field string) float64 {
	s := r.cell(field)
	if s == "" {
		return 0
	}
	v, ok := normalize.ParseNumber(s)
	if !ok {
		r.fail(field, s)
		return 0
	}
	return v
}

// measure prefers a precomputed per-half-day column and falls back to
// num/halfDays.
func (r *rowMapper) measure(field string, num, halfDays float64) model.Measure {
	if s := r.cell(field); s != "" {
		if v, ok := normalize.ParseNumber(s); ok {
			return model.KnownMeasure(v)
		}
		r.fail(field, s)
	}
	return model.Ratio(num, halfDays)
}

func (r *rowMapper) fail(field, value string) {
	r.errors++
	r.log.Debug().
		Int64("row", r.rowNum).
		Str("field", field).
		Str("value", value).
		Msg("field parse failed")
}
