package core

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recoverSigner treats "<address>" signatures as valid signatures of address
// and "bad" ones as undecodable.
type recoverSigner struct {
	SourceSigner
}

func (recoverSigner) RecoverSignature(_ []byte, signature string) (string, Signature, error) {
	if signature == "bad" {
		return "", Signature{}, errors.New("invalid signature")
	}

	return signature, Signature{V: 27, R: [32]byte{byte(len(signature))}}, nil
}

func TestCollectEndorsements(t *testing.T) {
	valset := &Valset{
		Nonce: 42,
		Members: []ValsetMember{
			{EthAddress: "0xAA", Power: 34},
			{EthAddress: "0xBB", Power: 34},
			{EthAddress: "0xCC", Power: 32},
		},
	}

	confirms := []*Confirm{
		{Orchestrator: "a", EthSigner: "0xaa", Signature: "0xAA"},
		{Orchestrator: "b", EthSigner: "0xBB", Signature: "0xBB"},
		// duplicate of an already counted member
		{Orchestrator: "b2", EthSigner: "0xBB", Signature: "0xBB"},
		// signed by somebody else than claimed
		{Orchestrator: "c", EthSigner: "0xCC", Signature: "0xAA"},
		{Orchestrator: "d", EthSigner: "0xDD", Signature: "0xDD"},
		{Orchestrator: "e", EthSigner: "0xCC", Signature: "bad"},
	}

	result := CollectEndorsements(recoverSigner{}, []byte("digest"), valset, confirms, hclog.NewNullLogger())

	require.Len(t, result.Signatures, 3)
	assert.False(t, result.Signatures[0].IsEmpty())
	assert.False(t, result.Signatures[1].IsEmpty())
	assert.True(t, result.Signatures[2].IsEmpty())
	assert.Equal(t, big.NewInt(68), result.SignedPower)
	assert.Equal(t, big.NewInt(100), result.TotalPower)

	assert.True(t, result.ReachedThreshold(66))
	assert.True(t, result.ReachedThreshold(68))
	assert.False(t, result.ReachedThreshold(69))
}

func TestReachedThresholdEmptyValset(t *testing.T) {
	e := &Endorsements{SignedPower: new(big.Int), TotalPower: new(big.Int)}

	assert.False(t, e.ReachedThreshold(0))
}

func TestHasEndorsed(t *testing.T) {
	confirms := []*Confirm{{Orchestrator: "cosmos1a", EthSigner: "0xAbC"}}

	assert.True(t, HasEndorsed(confirms, "cosmos1a", "0x1"))
	assert.True(t, HasEndorsed(confirms, "cosmos1b", strings.ToLower("0xABC")))
	assert.False(t, HasEndorsed(confirms, "cosmos1b", "0x1"))
	assert.False(t, HasEndorsed(nil, "cosmos1a", "0xabc"))
}
