package sqlite

import "github.com/attendflow/attendflow/internal/storage"

// Ensure the SQLite store implements the storage interface.
var _ storage.Storage = (*Store)(nil)
