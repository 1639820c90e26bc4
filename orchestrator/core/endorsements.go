package core

import (
	"math/big"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Endorsements are the collected signatures of a signing valset, aligned with
// its member list. Members that did not sign have an empty signature.
type Endorsements struct {
	Signatures  []Signature
	SignedPower *big.Int
	TotalPower  *big.Int
}

// ReachedThreshold reports whether signed power is at least percent of total power.
func (e *Endorsements) ReachedThreshold(percent uint64) bool {
	if e.TotalPower.Sign() == 0 {
		return false
	}

	signed := new(big.Int).Mul(e.SignedPower, big.NewInt(100))
	required := new(big.Int).Mul(e.TotalPower, new(big.Int).SetUint64(percent))

	return signed.Cmp(required) >= 0
}

// CollectEndorsements matches confirms to the members of signingValset by
// ethereum address. Every signature is checked against digest; confirms that
// do not recover to their claimed signer or whose signer is not a member are
// ignored.
func CollectEndorsements(
	signer SourceSigner, digest []byte, signingValset *Valset, confirms []*Confirm, logger hclog.Logger,
) *Endorsements {
	result := &Endorsements{
		Signatures:  make([]Signature, len(signingValset.Members)),
		SignedPower: new(big.Int),
		TotalPower:  signingValset.TotalPower(),
	}

	for _, confirm := range confirms {
		recovered, sig, err := signer.RecoverSignature(digest, confirm.Signature)
		if err != nil {
			logger.Warn("Invalid endorsement signature", "orchestrator", confirm.Orchestrator, "err", err)

			continue
		}

		if !strings.EqualFold(recovered, confirm.EthSigner) {
			logger.Warn("Endorsement signer mismatch",
				"orchestrator", confirm.Orchestrator, "claimed", confirm.EthSigner, "recovered", recovered)

			continue
		}

		idx := signingValset.MemberIndex(recovered)
		if idx < 0 {
			logger.Debug("Endorsement from non member", "signer", recovered)

			continue
		}

		if !result.Signatures[idx].IsEmpty() {
			continue
		}

		result.Signatures[idx] = sig
		result.SignedPower.Add(result.SignedPower, new(big.Int).SetUint64(signingValset.Members[idx].Power))
	}

	return result
}

// HasEndorsed reports whether one of the confirms was made by the local
// orchestrator, identified by either of its addresses.
func HasEndorsed(confirms []*Confirm, orchestrator string, ethAddress string) bool {
	for _, c := range confirms {
		if c.Orchestrator == orchestrator || strings.EqualFold(c.EthSigner, ethAddress) {
			return true
		}
	}

	return false
}
