package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	session_id     TEXT NOT NULL,
	id             INTEGER NOT NULL,
	message        TEXT NOT NULL,
	severity       TEXT NOT NULL CHECK(severity IN ('error', 'warning', 'info', 'success')),
	created_at     DATETIME NOT NULL,
	removed_at     DATETIME,
	removal_reason TEXT NOT NULL DEFAULT '' CHECK(removal_reason IN ('', 'expired', 'dismissed')),
	PRIMARY KEY (session_id, id)
);

CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at);
CREATE INDEX IF NOT EXISTS idx_notifications_severity ON notifications(severity);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
