package cli

import (
	"fmt"
	"path/filepath"

	"github.com/aretw0/loam"
	loamAdapter "github.com/aretw0/plotline/pkg/adapters/loam"
)

// OpenSource opens dir as a read-only Loam vault of scenario documents.
func OpenSource(dir string) (*loamAdapter.Source, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numeric front matter as json.Number across formats.
	// Read-only stops Loam from creating a sandbox copy in dev mode.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return loamAdapter.New(loam.NewTypedRepository[loamAdapter.ScenarioMetadata](repo)), nil
}
