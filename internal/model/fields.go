package model

// Canonical field names. These are also the CSV export header.
const (
	FieldDate                 = "date"
	FieldCreatedAt            = "created_at"
	FieldFinalizedAt          = "finalized_at"
	FieldRawDuration          = "raw_duration"
	FieldTATMinutes           = "tat_minutes"
	FieldProvider             = "provider"
	FieldModality             = "modality"
	FieldSection              = "section"
	FieldShift                = "shift"
	FieldRVU                  = "rvu"
	FieldPoints               = "points"
	FieldProcedures           = "procedures"
	FieldHalfDays             = "half_days"
	FieldPointsPerHalfDay     = "points_per_half_day"
	FieldProceduresPerHalfDay = "procedures_per_half_day"
)

// Field describes one canonical column and the source headers it is known by.
type Field struct {
	Name    string
	Aliases []string // matched case-insensitively after trimming
	Numeric bool
}

// AllFields lists the canonical fields in export order.
var AllFields = []Field{
	{Name: FieldDate, Aliases: []string{"date", "exam date", "report date"}},
	{Name: FieldCreatedAt, Aliases: []string{"created_at", "created", "created date", "exam started", "ordered"}},
	{Name: FieldFinalizedAt, Aliases: []string{"finalized_at", "finalized", "final date", "signed", "finalized date"}},
	{Name: FieldRawDuration, Aliases: []string{"raw_duration", "turnaround time", "turnaround", "tat", "exam final tat"}},
	{Name: FieldTATMinutes, Aliases: []string{"tat_minutes", "tat minutes"}, Numeric: true},
	{Name: FieldProvider, Aliases: []string{"provider", "author", "finalizing provider", "physician", "radiologist"}},
	{Name: FieldModality, Aliases: []string{"modality"}},
	{Name: FieldSection, Aliases: []string{"section", "subspecialty"}},
	{Name: FieldShift, Aliases: []string{"shift", "shift label", "shift name"}},
	{Name: FieldRVU, Aliases: []string{"rvu", "wrvu", "total rvu"}, Numeric: true},
	{Name: FieldPoints, Aliases: []string{"points"}, Numeric: true},
	{Name: FieldProcedures, Aliases: []string{"procedures", "procedure", "procedure count", "exam count"}, Numeric: true},
	{Name: FieldHalfDays, Aliases: []string{"half_days", "half days", "half-days", "shifts worked"}, Numeric: true},
	{Name: FieldPointsPerHalfDay, Aliases: []string{"points_per_half_day", "points/half day"}, Numeric: true},
	{Name: FieldProceduresPerHalfDay, Aliases: []string{"procedures_per_half_day", "procedure/half"}, Numeric: true},
}

// FieldNames returns just the canonical names in export order.
func FieldNames() []string {
	names := make([]string, len(AllFields))
	for i, f := range AllFields {
		names[i] = f.Name
	}
	return names
}

// FieldByName returns the Field for the given canonical name, or ok=false.
func FieldByName(name string) (Field, bool) {
	for _, f := range AllFields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Profile names the columns a use case cannot run without.
type Profile struct {
	Name     string
	Required []string
}

// AllProfiles lists the supported use cases.
var AllProfiles = []Profile{
	{Name: "tat", Required: []string{FieldProvider, FieldRawDuration}},
	// half_days is optional: the per-half-day columns are usually precomputed.
	{Name: "productivity", Required: []string{
		FieldDate, FieldProvider, FieldProcedures, FieldPoints, FieldShift,
		FieldPointsPerHalfDay, FieldProceduresPerHalfDay,
	}},
	{Name: "rvu", Required: []string{FieldProvider, FieldRVU}},
}

// DefaultProfile is used when no profile is configured.
const DefaultProfile = "tat"

// ProfileByName returns the Profile for the given name, or ok=false.
func ProfileByName(name string) (Profile, bool) {
	for _, p := range AllProfiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}
