package databaseaccess

import (
	"fmt"
	"path/filepath"

	"github.com/Ethernal-Tech/peggy-orchestrator/common"
	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
)

// NewDatabase opens the hints journal at filePath. An empty path keeps the
// hints in memory.
func NewDatabase(filePath string) (core.HintsDB, error) {
	if filePath == "" {
		return NewMemoryDatabase(), nil
	}

	if err := common.CreateDirectoryIfNotExists(filepath.Dir(filePath), 0770); err != nil {
		return nil, fmt.Errorf("failed to create directory for hints database: %w", err)
	}

	db := &BBoltDatabase{}
	if err := db.Init(filePath); err != nil {
		return nil, err
	}

	return db, nil
}
