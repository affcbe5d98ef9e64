package sqlite

import "time"

// Config holds SQLite connection settings
type Config struct {
	// Path is the database file path. Created if missing.
	Path string

	// BusyTimeout is how long a connection waits on a locked database
	BusyTimeout time.Duration
}

// DefaultConfig returns sensible defaults for SQLite configuration
func DefaultConfig() Config {
	return Config{
		Path:        "scores.db",
		BusyTimeout: 5 * time.Second,
	}
}

// dsn builds a modernc.org/sqlite connection string. Transactions take the
// write lock up front so units never fail on a read-to-write upgrade.
func (c Config) dsn() string {
	timeout := c.BusyTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().BusyTimeout
	}
	return "file:" + c.Path +
		"?_txlock=immediate" +
		"&_pragma=busy_timeout(" + itoa(timeout.Milliseconds()) + ")" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)"
}
