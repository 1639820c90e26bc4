package eth

import (
	"math/big"
	"testing"

	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	"github.com/cosmos/cosmos-sdk/types/bech32"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

func TestEventDecoder(t *testing.T) {
	decoder, err := NewEventDecoder("cosmos")
	require.NoError(t, err)

	peggyABI, err := GetPeggyABI()
	require.NoError(t, err)

	token := common.HexToAddress("0x22474D350EC2dA53D717E30b96e9a2B7628Ede5b")
	sender := common.HexToAddress("0xE3cD54d29CBf35648EDcf53D6a344bf4C2b6BEf6")
	txHash := common.HexToHash("0x01")

	t.Run("deposit", func(t *testing.T) {
		receiverBytes := common.HexToAddress("0x2f86A1b1B1c29A3F40D7D2C6c4d5F6E78e1D5A51").Bytes()

		var destination common.Hash
		copy(destination[12:], receiverBytes)

		event := peggyABI.Events[sendToCosmosEventName]
		data, err := event.Inputs.NonIndexed().Pack(big.NewInt(1000), big.NewInt(5))
		require.NoError(t, err)

		decoded, err := decoder.Decode(types.Log{
			Topics:      []common.Hash{event.ID, common.BytesToHash(token.Bytes()), common.BytesToHash(sender.Bytes()), destination},
			Data:        data,
			BlockNumber: 100,
			TxHash:      txHash,
		})
		require.NoError(t, err)

		expectedReceiver, err := bech32.ConvertAndEncode("cosmos", receiverBytes)
		require.NoError(t, err)

		require.Equal(t, core.DepositEventType, decoded.Type)
		require.Equal(t, uint64(5), decoded.EventNonce)
		require.Equal(t, uint64(100), decoded.BlockHeight)
		require.Equal(t, txHash.String(), decoded.TxHash)
		require.Equal(t, token.String(), decoded.Deposit.TokenContract)
		require.Equal(t, sender.String(), decoded.Deposit.Sender)
		require.Equal(t, expectedReceiver, decoded.Deposit.CosmosReceiver)
		require.Equal(t, big.NewInt(1000), decoded.Deposit.Amount)
	})

	t.Run("batch executed", func(t *testing.T) {
		event := peggyABI.Events[batchExecutedEventName]
		data, err := event.Inputs.NonIndexed().Pack(big.NewInt(9))
		require.NoError(t, err)

		decoded, err := decoder.Decode(types.Log{
			Topics:      []common.Hash{event.ID, common.BigToHash(big.NewInt(3)), common.BytesToHash(token.Bytes())},
			Data:        data,
			BlockNumber: 101,
		})
		require.NoError(t, err)

		require.Equal(t, core.BatchExecutedEventType, decoded.Type)
		require.Equal(t, uint64(9), decoded.EventNonce)
		require.Equal(t, uint64(3), decoded.BatchExecuted.BatchNonce)
		require.Equal(t, token.String(), decoded.BatchExecuted.TokenContract)
	})

	t.Run("valset updated", func(t *testing.T) {
		event := peggyABI.Events[valsetUpdatedEventName]
		data, err := event.Inputs.NonIndexed().Pack(
			big.NewInt(11), []common.Address{token, sender}, []*big.Int{big.NewInt(10), big.NewInt(20)})
		require.NoError(t, err)

		decoded, err := decoder.Decode(types.Log{
			Topics:      []common.Hash{event.ID, common.BigToHash(big.NewInt(4))},
			Data:        data,
			BlockNumber: 102,
		})
		require.NoError(t, err)

		require.Equal(t, core.ValsetUpdatedEventType, decoded.Type)
		require.Equal(t, uint64(11), decoded.EventNonce)
		require.Equal(t, uint64(4), decoded.ValsetUpdated.ValsetNonce)
		require.Equal(t, []core.ValsetMember{
			{EthAddress: token.String(), Power: 10},
			{EthAddress: sender.String(), Power: 20},
		}, decoded.ValsetUpdated.Members)
	})

	t.Run("unknown topic", func(t *testing.T) {
		_, err := decoder.Decode(types.Log{Topics: []common.Hash{common.HexToHash("0xdead")}})
		require.ErrorIs(t, err, errUnknownEvent)

		_, err = decoder.Decode(types.Log{})
		require.ErrorIs(t, err, errUnknownEvent)
	})

	t.Run("removed log", func(t *testing.T) {
		_, err := decoder.Decode(types.Log{Removed: true})
		require.ErrorIs(t, err, errRemovedLog)
	})

	t.Run("malformed data", func(t *testing.T) {
		event := peggyABI.Events[sendToCosmosEventName]

		_, err := decoder.Decode(types.Log{
			Topics: []common.Hash{event.ID, {}, {}, {}},
			Data:   []byte{1, 2, 3},
		})
		require.Error(t, err)
	})

	t.Run("topics", func(t *testing.T) {
		require.Len(t, decoder.Topics(), 3)
	})
}
