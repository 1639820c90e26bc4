package core

import (
	"context"
	"errors"
	"fmt"
)

var ErrValsetNotFound = errors.New("valset not found")

// GetInstalledValset returns the validator set the bridge contract holds when
// its last executed valset nonce is nonce. A freshly deployed contract has
// nonce 0 and was initialized with the current valset of the consensus chain,
// which has no valset request under that nonce.
func GetInstalledValset(ctx context.Context, consensus ConsensusChain, nonce uint64) (*Valset, error) {
	valset, err := consensus.GetValset(ctx, nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve valset %d: %w", nonce, err)
	} else if valset != nil {
		return valset, nil
	}

	if nonce != 0 {
		return nil, fmt.Errorf("%w: %d", ErrValsetNotFound, nonce)
	}

	valset, err = consensus.GetCurrentValset(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve current valset: %w", err)
	} else if valset == nil {
		return nil, fmt.Errorf("%w: %d", ErrValsetNotFound, nonce)
	}

	return &Valset{Nonce: 0, Members: valset.Members}, nil
}
