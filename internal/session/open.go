package session

// ClosableStore is a Store that owns a connection.
type ClosableStore interface {
	Store
	Close() error
}

// Open selects a backing store: Redis when redisURL is set, otherwise the SQLite
// file at path. An empty path keeps the credential in memory only.
func Open(path, redisURL string) (ClosableStore, error) {
	switch {
	case redisURL != "":
		return NewRedisStore(redisURL)
	case path == "":
		return NewMemoryStore(), nil
	default:
		return NewSQLiteStore(path)
	}
}
