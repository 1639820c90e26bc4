package eth

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	ethtxhelper "github.com/Ethernal-Tech/peggy-orchestrator/eth/txhelper"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestEthHelperWrapper(t *testing.T, helper ethtxhelper.IEthTxHelper) *EthHelperWrapper {
	t.Helper()

	wallet, err := ethtxhelper.GenerateNewEthTxWallet()
	require.NoError(t, err)

	return &EthHelperWrapper{
		wallet:            wallet,
		ethTxHelper:       helper,
		logger:            hclog.NewNullLogger(),
		sendRetriesCnt:    2,
		sendRetryWaitTime: time.Millisecond,
	}
}

func newTestTx() *types.Transaction {
	return types.NewTx(&types.LegacyTx{Nonce: 1, Gas: 21000, GasPrice: big.NewInt(1)})
}

func TestEthHelperWrapper_SendTx(t *testing.T) {
	ctx := context.Background()
	tx := newTestTx()
	handler := func(*bind.TransactOpts) (*types.Transaction, error) { return tx, nil }

	t.Run("retryable send error", func(t *testing.T) {
		helper := &ethtxhelper.EthTxHelperMock{}
		helper.On("SendTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("nonce too low")).Once()
		helper.On("SendTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tx, nil).Once()
		helper.On("WaitForReceipt", ctx, tx.Hash().String()).
			Return(&types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash()}, nil)

		receipt, err := newTestEthHelperWrapper(t, helper).SendTx(ctx, bind.TransactOpts{}, handler)
		require.NoError(t, err)
		require.Equal(t, tx.Hash(), receipt.TxHash)
		helper.AssertNumberOfCalls(t, "SendTx", 2)
	})

	t.Run("retries are bounded", func(t *testing.T) {
		helper := &ethtxhelper.EthTxHelperMock{}
		helper.On("SendTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("replacement tx underpriced"))

		_, err := newTestEthHelperWrapper(t, helper).SendTx(ctx, bind.TransactOpts{}, handler)
		require.ErrorContains(t, err, "replacement tx underpriced")
		helper.AssertNumberOfCalls(t, "SendTx", 3)
		helper.AssertNotCalled(t, "WaitForReceipt", mock.Anything, mock.Anything)
	})

	t.Run("other send errors are not retried", func(t *testing.T) {
		helper := &ethtxhelper.EthTxHelperMock{}
		helper.On("SendTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("insufficient funds for gas * price + value"))

		_, err := newTestEthHelperWrapper(t, helper).SendTx(ctx, bind.TransactOpts{}, handler)
		require.ErrorContains(t, err, "insufficient funds")
		helper.AssertNumberOfCalls(t, "SendTx", 1)
	})

	t.Run("reverted receipt", func(t *testing.T) {
		helper := &ethtxhelper.EthTxHelperMock{}
		helper.On("SendTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tx, nil)
		helper.On("WaitForReceipt", ctx, tx.Hash().String()).
			Return(&types.Receipt{Status: types.ReceiptStatusFailed, TxHash: tx.Hash()}, nil)

		receipt, err := newTestEthHelperWrapper(t, helper).SendTx(ctx, bind.TransactOpts{}, handler)
		require.ErrorIs(t, err, errReceiptFailed)
		require.NotNil(t, receipt)
	})

	t.Run("receipt timeout", func(t *testing.T) {
		helper := &ethtxhelper.EthTxHelperMock{}
		helper.On("SendTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tx, nil)
		helper.On("WaitForReceipt", ctx, tx.Hash().String()).
			Return(nil, errors.New("timeout while waiting for transaction"))

		receipt, err := newTestEthHelperWrapper(t, helper).SendTx(ctx, bind.TransactOpts{}, handler)
		require.ErrorContains(t, err, "timeout while waiting for transaction")
		require.Nil(t, receipt)
	})
}

func TestEthHelperWrapper_ProcessError(t *testing.T) {
	helper := &ethtxhelper.EthTxHelperMock{}
	wrapper := newTestEthHelperWrapper(t, helper)

	err := errors.New("execution reverted")
	require.Equal(t, err, wrapper.ProcessError(err))

	current, getErr := wrapper.GetEthHelper()
	require.NoError(t, getErr)
	require.Equal(t, helper, current)

	require.ErrorIs(t, wrapper.ProcessError(context.DeadlineExceeded), context.DeadlineExceeded)
	require.Nil(t, wrapper.ethTxHelper)
}
