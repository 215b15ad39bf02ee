package checkpoint

import (
	"fmt"

	"github.com/ideavet/ideavet/internal/core"
)

// NewBackend creates a checkpoint backend by name ("json" or "sqlite")
// rooted at the output directory.
func NewBackend(backend, dir string) (core.CheckpointBackend, error) {
	switch backend {
	case "", "json":
		return NewJSONBackend(dir)
	case "sqlite":
		return NewSQLiteBackend(dir)
	default:
		return nil, fmt.Errorf("unknown checkpoint backend: %s", backend)
	}
}
