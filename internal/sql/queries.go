package sql

import (
	"embed"
)

// Migrations holds the DDL applied by db.ApplyMigrations, in filename order.
//
//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/register_source_file.sql
var RegisterSourceFile string

//go:embed queries/lookup_source_file.sql
var LookupSourceFile string

//go:embed queries/update_source_status.sql
var UpdateSourceStatus string

//go:embed queries/mark_loaded.sql
var MarkLoaded string

//go:embed queries/delete_file_records.sql
var DeleteFileRecords string

//go:embed queries/delete_batch.sql
var DeleteBatch string

//go:embed queries/latest_batch.sql
var LatestBatch string

//go:embed queries/select_records.sql
var SelectRecords string

//go:embed queries/analyze_records.sql
var AnalyzeRecords string

//go:embed queries/migration_ledger.sql
var MigrationLedger string

//go:embed queries/applied_migrations.sql
var AppliedMigrations string

//go:embed queries/record_migration.sql
var RecordMigration string
