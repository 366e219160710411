package exitcode

const (
	Success       = 0
	UsageError    = 1
	SchemaError   = 2
	SourceError   = 3
	DBConnError   = 4
	CopyError     = 5
	NoData        = 6
	InternalError = 7
)
