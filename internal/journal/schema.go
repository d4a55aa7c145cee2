package journal

// Schema DDL for the journal database.
const (
	createCells = `CREATE TABLE cells (
    name TEXT PRIMARY KEY,
    columns INTEGER NOT NULL,
    watched_at TEXT NOT NULL
);`

	createWrites = `CREATE TABLE writes (
    entry_id TEXT PRIMARY KEY,
    seq INTEGER NOT NULL UNIQUE,
    cell TEXT NOT NULL,
    column_name TEXT NOT NULL,
    old_value TEXT NOT NULL,
    new_value TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (cell) REFERENCES cells(name)
);`

	createWritesIndex = `CREATE INDEX idx_writes_cell ON writes (cell, seq);`
)

// schemaStatements lists the DDL in execution order.
var schemaStatements = []string{
	createCells,
	createWrites,
	createWritesIndex,
}
