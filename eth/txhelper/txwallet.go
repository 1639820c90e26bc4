package ethtxhelper

import (
	"crypto/ecdsa"
	"encoding/hex"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

type IEthTxWallet interface {
	GetTransactOpts(chainID *big.Int) (*bind.TransactOpts, error)
	GetAddress() common.Address
	SignHash(hash []byte) ([]byte, error)
}

type EthTxWallet struct {
	addr       common.Address
	privateKey *ecdsa.PrivateKey
}

var _ IEthTxWallet = (*EthTxWallet)(nil)

// NewEthTxWallet creates a wallet from a hex encoded secp256k1 private key,
// with or without the 0x prefix.
func NewEthTxWallet(pk string) (*EthTxWallet, error) {
	if len(pk) >= 2 && pk[0] == '0' && (pk[1] == 'x' || pk[1] == 'X') {
		pk = pk[2:]
	}

	privateKey, err := crypto.HexToECDSA(pk)
	if err != nil {
		return nil, err
	}

	return &EthTxWallet{
		privateKey: privateKey,
		addr:       crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

func (w EthTxWallet) GetTransactOpts(chainID *big.Int) (*bind.TransactOpts, error) {
	return bind.NewKeyedTransactorWithChainID(w.privateKey, chainID)
}

func (w EthTxWallet) GetAddress() common.Address {
	return w.addr
}

func (w EthTxWallet) GetAddressHex() string {
	return w.addr.String()
}

// SignHash returns the 65 byte [R || S || V] signature of hash where V is 0 or 1.
func (w EthTxWallet) SignHash(hash []byte) ([]byte, error) {
	return crypto.Sign(hash, w.privateKey)
}

func GenerateNewEthTxWallet() (*EthTxWallet, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}

	return &EthTxWallet{
		privateKey: privateKey,
		addr:       crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

func (w EthTxWallet) GetPrivateKeyHex() string {
	return hex.EncodeToString(crypto.FromECDSA(w.privateKey))
}
