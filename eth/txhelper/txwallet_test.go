package ethtxhelper

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestEthTxWallet(t *testing.T) {
	generated, err := GenerateNewEthTxWallet()
	require.NoError(t, err)

	t.Run("restore from hex", func(t *testing.T) {
		wallet, err := NewEthTxWallet(generated.GetPrivateKeyHex())
		require.NoError(t, err)
		require.Equal(t, generated.GetAddress(), wallet.GetAddress())

		wallet, err = NewEthTxWallet("0x" + generated.GetPrivateKeyHex())
		require.NoError(t, err)
		require.Equal(t, generated.GetAddressHex(), wallet.GetAddressHex())
	})

	t.Run("invalid key", func(t *testing.T) {
		_, err := NewEthTxWallet("not a key")
		require.Error(t, err)
	})

	t.Run("sign hash", func(t *testing.T) {
		hash := crypto.Keccak256([]byte("hello"))

		signature, err := generated.SignHash(hash)
		require.NoError(t, err)
		require.Len(t, signature, 65)

		pub, err := crypto.SigToPub(hash, signature)
		require.NoError(t, err)
		require.Equal(t, generated.GetAddress(), crypto.PubkeyToAddress(*pub))
	})

	t.Run("transact opts", func(t *testing.T) {
		opts, err := generated.GetTransactOpts(big.NewInt(1337))
		require.NoError(t, err)
		require.Equal(t, generated.GetAddress(), opts.From)
	})
}
