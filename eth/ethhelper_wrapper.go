package eth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/Ethernal-Tech/peggy-orchestrator/common"
	ethtxhelper "github.com/Ethernal-Tech/peggy-orchestrator/eth/txhelper"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/hashicorp/go-hclog"
	"github.com/sethvargo/go-retry"
)

const (
	defaultReceiptRetriesCnt = 1000
	defaultReceiptWaitTime   = 300 * time.Millisecond
	defaultSendRetriesCnt    = 3
	defaultSendRetryWaitTime = 2 * time.Second
)

var errReceiptFailed = errors.New("tx receipt status is unsuccessful")

// EthHelperWrapper lazily creates the tx helper and drops it after
// connection errors so the next call dials the node again.
type EthHelperWrapper struct {
	wallet      ethtxhelper.IEthTxWallet
	ethTxHelper ethtxhelper.IEthTxHelper
	opts        []ethtxhelper.TxRelayerOption
	lock        sync.Mutex
	logger      hclog.Logger

	sendRetriesCnt    uint64
	sendRetryWaitTime time.Duration
}

func NewEthHelperWrapper(
	wallet ethtxhelper.IEthTxWallet, logger hclog.Logger, opts ...ethtxhelper.TxRelayerOption,
) *EthHelperWrapper {
	return &EthHelperWrapper{
		wallet: wallet,
		opts:   append([]ethtxhelper.TxRelayerOption(nil), opts...),
		logger: logger,

		sendRetriesCnt:    defaultSendRetriesCnt,
		sendRetryWaitTime: defaultSendRetryWaitTime,
	}
}

func (e *EthHelperWrapper) GetEthHelper() (ethtxhelper.IEthTxHelper, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.ethTxHelper != nil {
		return e.ethTxHelper, nil
	}

	option := ethtxhelper.WithReceiptRetryConfig(defaultReceiptRetriesCnt, defaultReceiptWaitTime)

	ethTxHelper, err := ethtxhelper.NewEThTxHelper(
		append([]ethtxhelper.TxRelayerOption{option}, e.opts...)...)
	if err != nil {
		return nil, fmt.Errorf("error while NewEThTxHelper: %w", err)
	}

	e.ethTxHelper = ethTxHelper

	return ethTxHelper, nil
}

func (e *EthHelperWrapper) GetWallet() ethtxhelper.IEthTxWallet {
	return e.wallet
}

// ProcessError resets the helper on connection failures and returns err unchanged.
func (e *EthHelperWrapper) ProcessError(err error) error {
	var netErr net.Error

	if errors.Is(err, net.ErrClosed) || common.IsContextDoneErr(err) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		e.lock.Lock()
		e.ethTxHelper = nil
		e.lock.Unlock()
	}

	return err
}

// SendTx sends the transaction built by handler and waits for its receipt.
// Sending is repeated a few times on errors a fresh nonce or gas price can
// fix. A mined but reverted transaction returns both the receipt and an error.
func (e *EthHelperWrapper) SendTx(
	ctx context.Context, txOpts bind.TransactOpts, handler ethtxhelper.SendTxFunc,
) (*types.Receipt, error) {
	ethTxHelper, err := e.GetEthHelper()
	if err != nil {
		return nil, fmt.Errorf("error while GetEthHelper: %w", err)
	}

	var tx *types.Transaction

	backoff := retry.WithMaxRetries(e.sendRetriesCnt, retry.NewConstant(e.sendRetryWaitTime))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		sentTx, sendErr := ethTxHelper.SendTx(ctx, e.wallet, txOpts, handler)
		if ethtxhelper.IsRetryableEthError(sendErr) {
			e.logger.Warn("failed to send tx, retrying", "err", sendErr)

			return retry.RetryableError(sendErr)
		}

		tx = sentTx

		return sendErr
	})
	if err != nil {
		return nil, fmt.Errorf("error while SendTx: %w", e.ProcessError(err))
	}

	txHashStr := tx.Hash().String()

	e.logger.Info("tx has been sent", "hash", txHashStr, "gas limit", tx.Gas(), "gas price", tx.GasPrice())

	receipt, err := ethTxHelper.WaitForReceipt(ctx, txHashStr)
	if err != nil {
		return nil, fmt.Errorf("failed to receive receipt for tx %s, gas limit = %d, gas price = %s: %w",
			txHashStr, tx.Gas(), tx.GasPrice(), e.ProcessError(err))
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w for %s, gas limit = %d, gas used = %d",
			errReceiptFailed, txHashStr, tx.Gas(), receipt.GasUsed)
	}

	e.logger.Info("tx has been included in block", "hash", txHashStr,
		"block", receipt.BlockNumber, "block hash", receipt.BlockHash, "gas used", receipt.GasUsed)

	return receipt, nil
}
