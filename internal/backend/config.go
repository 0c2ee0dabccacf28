package backend

// Type selects the gateway implementation.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Config holds configuration for gateway creation.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Dev session seed: when set, the broker starts with this principal
	// signed in (and, if SeedRole is non-empty, a matching profile row so
	// the classifier sees a verified principal).
	SeedUserID string
	SeedEmail  string
	SeedRole   string
}

// Result contains the gateway instance and optional cleanup function.
type Result struct {
	Gateway Gateway
	Cleanup CleanupFunc
}
