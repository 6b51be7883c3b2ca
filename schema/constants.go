package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents a storage backend for reports or artifacts.
	DatabaseBackend string

	// ArtifactFormat represents a derived representation of a report.
	ArtifactFormat string

	// Ecosystem represents a dependency-manifest dialect.
	Ecosystem string

	// EntryKind represents the type of a repository tree entry.
	EntryKind string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	MemoryBackend     DatabaseBackend = "memory"
	S3Backend         DatabaseBackend = "s3" // artifacts only
)

// All artifact formats supported.
const (
	HTMLFormat ArtifactFormat = "html"
	PDFFormat  ArtifactFormat = "pdf"
	JSONFormat ArtifactFormat = "json"
)

// All manifest ecosystems supported.
const (
	NPM    Ecosystem = "npm"
	Pip    Ecosystem = "pip"
	Maven  Ecosystem = "maven"
	Golang Ecosystem = "golang"
	Ruby   Ecosystem = "ruby"
)

// Tree entry kinds.
const (
	FileEntry EntryKind = "file"
	DirEntry  EntryKind = "dir"
)

// AllEcosystems lists every ecosystem in a stable order.
var AllEcosystems = []Ecosystem{NPM, Pip, Maven, Golang, Ruby}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidReportBackends lists all valid report store backends.
var ValidReportBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	MemoryBackend:     {},
}

// ValidArtifactBackends lists all valid artifact cache backends.
var ValidArtifactBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	MemoryBackend:     {},
	S3Backend:         {},
}

// ValidArtifactFormats lists all valid artifact formats.
var ValidArtifactFormats = map[ArtifactFormat]struct{}{
	HTMLFormat: {},
	PDFFormat:  {},
	JSONFormat: {},
}
