package index

// EmailIndex defines the catalog operations consumers rely on.
type EmailIndex interface {
	UpsertEmail(e EmailRow, body string) error
	DeleteEmail(id string) error
	GetChecksum(id string) (string, error)
	ListEmails(limit, offset int, componentType, sort string) ([]EmailRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies EmailIndex at compile time.
var _ EmailIndex = (*DB)(nil)
