package cosmos

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/cosmos/cosmos-sdk/crypto/hd"
	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	cryptotypes "github.com/cosmos/cosmos-sdk/crypto/types"
	"github.com/cosmos/cosmos-sdk/types/bech32"
	"github.com/cosmos/go-bip39"
)

const (
	// cosmos hub coin type, used for account derivation
	coinType     = 118
	mnemonicBits = 256
)

var errInvalidMnemonic = errors.New("invalid mnemonic")

// Key is the orchestrator account key on the consensus chain.
type Key struct {
	privKey *secp256k1.PrivKey
	address string
}

// NewKeyFromMnemonic derives the first account of the bip44 path m/44'/118'/0'/0/0.
func NewKeyFromMnemonic(mnemonic string, addressPrefix string) (*Key, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")

	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errInvalidMnemonic
	}

	derivedPriv, err := hd.Secp256k1.Derive()(mnemonic, "", hd.CreateHDPath(coinType, 0, 0).String())
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	privKey, ok := hd.Secp256k1.Generate()(derivedPriv).(*secp256k1.PrivKey)
	if !ok {
		return nil, errors.New("unexpected private key type")
	}

	address, err := bech32.ConvertAndEncode(addressPrefix, privKey.PubKey().Address())
	if err != nil {
		return nil, fmt.Errorf("failed to encode address: %w", err)
	}

	return &Key{
		privKey: privKey,
		address: address,
	}, nil
}

// CreateMnemonic creates a new 24 words mnemonic.
func CreateMnemonic() (string, error) {
	entropySeed, err := bip39.NewEntropy(mnemonicBits)
	if err != nil {
		return "", err
	}

	return bip39.NewMnemonic(entropySeed)
}

func (k *Key) Address() string {
	return k.address
}

func (k *Key) PubKey() cryptotypes.PubKey {
	return k.privKey.PubKey()
}

// PubKeyBase64 returns the compressed public key encoded as base64.
func (k *Key) PubKeyBase64() string {
	return base64.StdEncoding.EncodeToString(k.privKey.PubKey().Bytes())
}

// Sign returns the 64 bytes r || s signature of sha256(msg).
func (k *Key) Sign(msg []byte) ([]byte, error) {
	return k.privKey.Sign(msg)
}

func (k *Key) VerifySignature(msg []byte, sig []byte) bool {
	return k.privKey.PubKey().VerifySignature(msg, sig)
}
