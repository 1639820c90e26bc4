package databaseaccess

import (
	"strings"
	"sync"

	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
)

// MemoryDatabase keeps hints for the lifetime of the process only.
type MemoryDatabase struct {
	checkpointHeights map[string]uint64
	lock              sync.RWMutex
}

var _ core.HintsDB = (*MemoryDatabase)(nil)

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{
		checkpointHeights: map[string]uint64{},
	}
}

func (md *MemoryDatabase) SetCheckpointHeight(bridgeContract string, height uint64) error {
	md.lock.Lock()
	defer md.lock.Unlock()

	md.checkpointHeights[strings.ToLower(bridgeContract)] = height

	return nil
}

func (md *MemoryDatabase) GetCheckpointHeight(bridgeContract string) (uint64, error) {
	md.lock.RLock()
	defer md.lock.RUnlock()

	return md.checkpointHeights[strings.ToLower(bridgeContract)], nil
}

func (md *MemoryDatabase) Close() error {
	return nil
}
