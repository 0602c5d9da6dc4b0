package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// SortKey represents the metric used to order the file list.
	SortKey string

	// SkipReason tags why a path was not analyzed.
	SkipReason string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string
)

// ScannerVersion is reported in every scan result.
const ScannerVersion = "2.0.0"

// All output modes supported.
const (
	JSONOut    OutputMode = "json" // default
	YAMLOut    OutputMode = "yaml"
	TreeOut    OutputMode = "tree"
	CompactOut OutputMode = "compact"
	TableOut   OutputMode = "table"
	CSVOut     OutputMode = "csv"
	ParquetOut OutputMode = "parquet"
)

// All sort keys supported.
const (
	SortByTokens SortKey = "tokens" // default
	SortByChurn  SortKey = "churn"
)

// Reasons recorded in the skip log.
const (
	SkipPermissionDenied SkipReason = "permission_denied"
	SkipReadDir          SkipReason = "read_error"
	SkipStat             SkipReason = "stat_error"
	SkipTooLarge         SkipReason = "too_large"
	SkipBinary           SkipReason = "binary"
	SkipTooManyTokens    SkipReason = "too_many_tokens"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	BoltBackend       DatabaseBackend = "bolt"
	NoneBackend       DatabaseBackend = "none"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	JSONOut:    {},
	YAMLOut:    {},
	TreeOut:    {},
	CompactOut: {},
	TableOut:   {},
	CSVOut:     {},
	ParquetOut: {},
}

// ValidSortKeys lists all valid sort keys.
var ValidSortKeys = map[SortKey]struct{}{
	SortByTokens: {},
	SortByChurn:  {},
}

// ValidDatabaseBackends lists all valid cache backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	BoltBackend:       {},
	NoneBackend:       {},
}

// ValidRunBackends lists backends that can hold scan-run history.
// Bolt is a key/value store and only serves the history cache.
var ValidRunBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
