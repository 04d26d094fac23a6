package sqlite

// Schema DDL. Every collection shares one table; a record's JSON document is
// stored verbatim and position keeps collection order.
const (
	createRecords = `CREATE TABLE IF NOT EXISTS records (
    collection TEXT NOT NULL,
    record_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    data TEXT NOT NULL,
    PRIMARY KEY (collection, record_id)
);`

	createSchemaVersion = `CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxRecordsPosition = `CREATE INDEX IF NOT EXISTS idx_records_position ON records(collection, position);`
)

// schemaVersion is bumped when the table layout changes.
const schemaVersion = 1

// schemaDDL lists all statements run on Attach, in order.
var schemaDDL = []string{
	createRecords,
	createSchemaVersion,
	idxRecordsPosition,
}
