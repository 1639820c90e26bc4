package eth

import (
	"errors"
	"fmt"

	"github.com/Ethernal-Tech/peggy-orchestrator/common"
	ethtxhelper "github.com/Ethernal-Tech/peggy-orchestrator/eth/txhelper"
	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const signatureLength = 65

var errInvalidSignature = errors.New("invalid signature")

type SignerImpl struct {
	wallet ethtxhelper.IEthTxWallet
}

var _ core.SourceSigner = (*SignerImpl)(nil)

func NewSigner(wallet ethtxhelper.IEthTxWallet) *SignerImpl {
	return &SignerImpl{
		wallet: wallet,
	}
}

func (s *SignerImpl) Address() string {
	return s.wallet.GetAddress().String()
}

func (s *SignerImpl) ValsetDigest(peggyID [32]byte, valset *core.Valset) ([]byte, error) {
	return ValsetCheckpointDigest(peggyID, valset)
}

func (s *SignerImpl) BatchDigest(peggyID [32]byte, batch *core.Batch) ([]byte, error) {
	return BatchDigest(peggyID, batch)
}

// Sign signs the ethereum signed message hash of digest and returns the
// 0x prefixed hex of r || s || v with v in {27, 28}.
func (s *SignerImpl) Sign(digest []byte) (string, error) {
	signature, err := s.wallet.SignHash(accounts.TextHash(digest))
	if err != nil {
		return "", fmt.Errorf("failed to sign digest: %w", err)
	}

	signature[crypto.RecoveryIDOffset] += 27

	return hexutil.Encode(signature), nil
}

// RecoverSignature returns the address that produced signature over digest
// together with the decoded signature.
func (s *SignerImpl) RecoverSignature(digest []byte, signature string) (string, core.Signature, error) {
	return RecoverSignature(digest, signature)
}

func RecoverSignature(digest []byte, signature string) (string, core.Signature, error) {
	sigBytes, err := common.DecodeHex(signature)
	if err != nil {
		return "", core.Signature{}, fmt.Errorf("%w: %w", errInvalidSignature, err)
	}

	if len(sigBytes) != signatureLength {
		return "", core.Signature{}, fmt.Errorf("%w: length %d", errInvalidSignature, len(sigBytes))
	}

	v := sigBytes[crypto.RecoveryIDOffset]
	if v >= 27 {
		v -= 27
	}

	if v > 1 {
		return "", core.Signature{}, fmt.Errorf("%w: recovery id %d", errInvalidSignature, sigBytes[crypto.RecoveryIDOffset])
	}

	normalized := make([]byte, signatureLength)
	copy(normalized, sigBytes)
	normalized[crypto.RecoveryIDOffset] = v

	pubKey, err := crypto.SigToPub(accounts.TextHash(digest), normalized)
	if err != nil {
		return "", core.Signature{}, fmt.Errorf("%w: %w", errInvalidSignature, err)
	}

	result := core.Signature{V: v + 27}
	copy(result.R[:], normalized[:32])
	copy(result.S[:], normalized[32:64])

	return crypto.PubkeyToAddress(*pubKey).String(), result, nil
}
