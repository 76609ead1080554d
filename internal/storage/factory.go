package storage

import "fmt"

// NewStore picks the session store backend. An empty kind falls back
// to the build's default: memory, or sqlite when built with -tags
// sqlite.
func NewStore(kind, sqlitePath string) (Store, error) {
	if kind == "" {
		kind = DefaultStoreKind()
	}
	switch kind {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported session store backend %q (want memory or sqlite)", kind)
	}
}

// CloseIfSupported closes stores that hold external resources, like
// the sqlite backend; the memory store has nothing to release.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
