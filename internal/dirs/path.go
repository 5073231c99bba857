package dirs

import "path/filepath"

// Database file names inside the data directory.
const (
	DBFile        = "sqlite.db"
	TestingDBFile = "sqlite-testing.db"
)

// DBPath returns the database location inside dir.
func DBPath(dir string, testing bool) string {
	if testing {
		return filepath.Join(dir, TestingDBFile)
	}
	return filepath.Join(dir, DBFile)
}
