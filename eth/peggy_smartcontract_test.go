package eth

import (
	"context"
	"errors"
	"math/big"
	"net"
	"testing"

	ethtxhelper "github.com/Ethernal-Tech/peggy-orchestrator/eth/txhelper"
	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestClassifyEstimateGasError(t *testing.T) {
	t.Run("nonce already executed", func(t *testing.T) {
		result := classifyEstimateGasError(updateValsetMethodName,
			errors.New("execution reverted: New valset nonce must be greater than the current nonce"))

		require.Equal(t, core.AlreadyApplied, result.Outcome)
		require.True(t, result.IsSuccess())
	})

	t.Run("other revert", func(t *testing.T) {
		result := classifyEstimateGasError(submitBatchMethodName,
			errors.New("execution reverted: Submitted validator set signatures do not have enough power."))

		require.Equal(t, core.Rejected, result.Outcome)
		require.False(t, result.IsSuccess())
	})

	t.Run("network error", func(t *testing.T) {
		result := classifyEstimateGasError(submitBatchMethodName, &net.OpError{Op: "dial", Err: errors.New("refused")})

		require.Equal(t, core.TransientFailure, result.Outcome)
		require.ErrorIs(t, result.AsError(), core.ErrSubmitTransient)
	})
}

func TestSplitSignatures(t *testing.T) {
	valset := &core.Valset{
		Nonce: 1,
		Members: []core.ValsetMember{
			{EthAddress: "0xc783df8a850f42e7F7e57013759C285caa701eB6", Power: 1},
			{EthAddress: "0xeAD9C93b79Ae7C1591b1FB5323BD777E86e150d4", Power: 1},
		},
	}

	sig := core.Signature{V: 27}
	sig.R[0], sig.S[0] = 1, 2

	v, r, s, err := splitSignatures(valset, []core.Signature{sig, {}})
	require.NoError(t, err)
	require.Equal(t, []uint8{27, 0}, v)
	require.Equal(t, byte(1), r[0][0])
	require.Equal(t, byte(2), s[0][0])
	require.Equal(t, [32]byte{}, r[1])

	_, _, _, err = splitSignatures(valset, []core.Signature{sig})
	require.ErrorContains(t, err, "does not match")
}

type submitTestEnv struct {
	sc     *PeggySmartContractImpl
	client *ethtxhelper.EthClientMock
	helper *ethtxhelper.EthTxHelperMock
	tx     *types.Transaction
}

func newSubmitTestEnv(t *testing.T) *submitTestEnv {
	t.Helper()

	peggyABI, err := GetPeggyABI()
	require.NoError(t, err)

	client := &ethtxhelper.EthClientMock{}
	helper := &ethtxhelper.EthTxHelperMock{Client: client}

	return &submitTestEnv{
		sc: &PeggySmartContractImpl{
			contractAddress:    common.HexToAddress("0x22474D350EC2dA53D717E30b96e9a2B7628Ede5b"),
			ethHelper:          newTestEthHelperWrapper(t, helper),
			abi:                peggyABI,
			gasLimiter:         NewGasLimitHolder(200_000, 400_000, 2),
			gasLimitMultiplier: 1,
			logger:             hclog.NewNullLogger(),
		},
		client: client,
		helper: helper,
		tx:     newTestTx(),
	}
}

// mockValsetNonces makes consecutive state_lastValsetNonce calls return nonces.
func (e *submitTestEnv) mockValsetNonces(t *testing.T, nonces ...int64) {
	t.Helper()

	for i, nonce := range nonces {
		output, err := e.sc.abi.Methods[lastValsetNonceMethodName].Outputs.Pack(big.NewInt(nonce))
		require.NoError(t, err)

		call := e.client.On("CallContract", mock.Anything, mock.Anything, mock.Anything).Return(output, nil)
		if i < len(nonces)-1 {
			call.Once()
		}
	}
}

func (e *submitTestEnv) mockSend(status uint64) {
	e.helper.On("EstimateGas", mock.Anything, mock.Anything, e.sc.contractAddress, mock.Anything, 1.0, mock.Anything).
		Return(uint64(150_000), uint64(150_000), nil)
	e.helper.On("SendTx", mock.Anything, mock.Anything, mock.MatchedBy(func(opts bind.TransactOpts) bool {
		return opts.GasLimit == 200_000
	}), mock.Anything).Return(e.tx, nil)
	e.helper.On("WaitForReceipt", mock.Anything, e.tx.Hash().String()).
		Return(&types.Receipt{Status: status, TxHash: e.tx.Hash()}, nil)
}

func TestPeggySmartContract_SubmitValsetUpdate(t *testing.T) {
	ctx := context.Background()
	currentValset := &core.Valset{
		Nonce:   41,
		Members: []core.ValsetMember{{EthAddress: "0xc783df8a850f42e7F7e57013759C285caa701eB6", Power: 100}},
	}
	newValset := &core.Valset{
		Nonce:   42,
		Members: []core.ValsetMember{{EthAddress: "0xeAD9C93b79Ae7C1591b1FB5323BD777E86e150d4", Power: 100}},
	}
	signatures := []core.Signature{{V: 27}}

	t.Run("applied", func(t *testing.T) {
		env := newSubmitTestEnv(t)
		env.mockValsetNonces(t, 41)
		env.mockSend(types.ReceiptStatusSuccessful)

		result := env.sc.SubmitValsetUpdate(ctx, newValset, currentValset, signatures)
		require.Equal(t, core.Applied, result.Outcome)
		require.Equal(t, env.tx.Hash().String(), result.TxHash)
		require.Equal(t, uint64(200_000), env.sc.gasLimiter.GetGasLimit())
	})

	t.Run("executed before submission", func(t *testing.T) {
		env := newSubmitTestEnv(t)
		env.mockValsetNonces(t, 42)

		result := env.sc.SubmitValsetUpdate(ctx, newValset, currentValset, signatures)
		require.Equal(t, core.AlreadyApplied, result.Outcome)
		env.helper.AssertNotCalled(t, "EstimateGas",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		env.helper.AssertNotCalled(t, "SendTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reverted after another relayer executed it", func(t *testing.T) {
		env := newSubmitTestEnv(t)
		env.mockValsetNonces(t, 41, 42)
		env.mockSend(types.ReceiptStatusFailed)

		result := env.sc.SubmitValsetUpdate(ctx, newValset, currentValset, signatures)
		require.Equal(t, core.AlreadyApplied, result.Outcome)
		require.True(t, result.IsSuccess())
		require.Contains(t, result.Reason, env.tx.Hash().String())
		env.client.AssertNumberOfCalls(t, "CallContract", 2)
		// failed tx raises the gas limit floor
		require.Equal(t, uint64(300_000), env.sc.gasLimiter.GetGasLimit())
	})

	t.Run("reverted without race", func(t *testing.T) {
		env := newSubmitTestEnv(t)
		env.mockValsetNonces(t, 41, 41)
		env.mockSend(types.ReceiptStatusFailed)

		result := env.sc.SubmitValsetUpdate(ctx, newValset, currentValset, signatures)
		require.Equal(t, core.Rejected, result.Outcome)
		require.ErrorIs(t, result.AsError(), core.ErrSubmitRejected)
		env.client.AssertNumberOfCalls(t, "CallContract", 2)
	})

	t.Run("send failure is transient", func(t *testing.T) {
		env := newSubmitTestEnv(t)
		env.mockValsetNonces(t, 41)
		env.helper.On("EstimateGas",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		).Return(uint64(150_000), uint64(150_000), nil)
		env.helper.On("SendTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("insufficient funds for gas * price + value"))

		result := env.sc.SubmitValsetUpdate(ctx, newValset, currentValset, signatures)
		require.Equal(t, core.TransientFailure, result.Outcome)
		env.client.AssertNumberOfCalls(t, "CallContract", 1)
	})

	t.Run("estimation reverts with executed nonce", func(t *testing.T) {
		env := newSubmitTestEnv(t)
		env.mockValsetNonces(t, 41)
		env.helper.On("EstimateGas",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		).Return(uint64(0), uint64(0),
			errors.New("execution reverted: New valset nonce must be greater than the current nonce"))

		result := env.sc.SubmitValsetUpdate(ctx, newValset, currentValset, signatures)
		require.Equal(t, core.AlreadyApplied, result.Outcome)
		env.helper.AssertNotCalled(t, "SendTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("signatures not aligned", func(t *testing.T) {
		env := newSubmitTestEnv(t)
		env.mockValsetNonces(t, 41)

		result := env.sc.SubmitValsetUpdate(ctx, newValset, currentValset, nil)
		require.Equal(t, core.Rejected, result.Outcome)
	})
}
