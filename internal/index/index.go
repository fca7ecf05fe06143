package index

// DayIndex defines the interface for daily-note indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type DayIndex interface {
	UpsertDay(d DayRow, body string, links []string) error
	DeleteDay(day string) error
	GetChecksum(day string) (string, error)
	GetDay(day string) (*DayRow, error)
	ListDays(limit, offset int) ([]DayRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Backlinks(day string) ([]string, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies DayIndex at compile time.
var _ DayIndex = (*DB)(nil)
