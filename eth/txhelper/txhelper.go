package ethtxhelper

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sethvargo/go-retry"
)

type SendTxFunc func(*bind.TransactOpts) (*types.Transaction, error)

const (
	defaultGasLimit         = uint64(5_242_880) // 0x500000
	defaultNumRetries       = 1000
	defaultGasFeeMultiplier = 170 // 170%
)

var (
	errReceiptNotFound = errors.New("receipt not found")
	errEmptyFeeHistory = errors.New("fee history without base fee")
)

// EthClient is the part of the node rpc client used to send transactions
// and to call or filter the bridge contract.
type EthClient interface {
	bind.ContractBackend
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	FeeHistory(
		ctx context.Context, blockCount uint64, lastBlock *big.Int, rewardPercentiles []float64,
	) (*ethereum.FeeHistory, error)
}

var _ EthClient = (*ethclient.Client)(nil)

type IEthTxHelper interface {
	GetClient() EthClient
	WaitForReceipt(ctx context.Context, hash string) (*types.Receipt, error)
	PrepareSendTx(ctx context.Context, wallet IEthTxWallet, txOpts bind.TransactOpts) (*bind.TransactOpts, error)
	SendTx(ctx context.Context, wallet IEthTxWallet,
		txOpts bind.TransactOpts, sendTxHandler SendTxFunc) (*types.Transaction, error)
	EstimateGas(
		ctx context.Context, from, to common.Address, value *big.Int, gasLimitMultiplier float64, input []byte,
	) (uint64, uint64, error)
	PopulateTxOpts(ctx context.Context, from common.Address, txOpts *bind.TransactOpts) error
}

type EthTxHelperImpl struct {
	client           EthClient
	nodeURL          string
	numRetries       uint64
	receiptWaitTime  time.Duration
	gasFeeMultiplier uint64
	isDynamic        bool
	zeroGasPrice     bool
	defaultGasLimit  uint64
	chainID          *big.Int
	mutex            sync.Mutex
}

var _ IEthTxHelper = (*EthTxHelperImpl)(nil)

func NewEThTxHelper(opts ...TxRelayerOption) (*EthTxHelperImpl, error) {
	t := &EthTxHelperImpl{
		receiptWaitTime:  50 * time.Millisecond,
		numRetries:       defaultNumRetries,
		gasFeeMultiplier: defaultGasFeeMultiplier,
		defaultGasLimit:  defaultGasLimit,
	}
	for _, opt := range opts {
		opt(t)
	}

	client, err := ethclient.Dial(t.nodeURL)
	if err != nil {
		return nil, err
	}

	t.client = client

	return t, nil
}

func (t *EthTxHelperImpl) GetClient() EthClient {
	return t.client
}

// WaitForReceipt polls for the receipt of hash until it is found, the retry
// budget is exhausted or ctx is done.
func (t *EthTxHelperImpl) WaitForReceipt(ctx context.Context, hash string) (*types.Receipt, error) {
	var receipt *types.Receipt

	backoff := retry.WithMaxRetries(t.numRetries, retry.NewConstant(t.receiptWaitTime))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := t.client.TransactionReceipt(ctx, common.HexToHash(hash))
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				return retry.RetryableError(errReceiptNotFound)
			}

			return err
		}

		receipt = r

		return nil
	})
	if err != nil {
		if errors.Is(err, errReceiptNotFound) {
			return nil, fmt.Errorf("timeout while waiting for transaction %s to be processed", hash)
		}

		return nil, err
	}

	return receipt, nil
}

// PrepareSendTx returns transact options of the wallet with nonce, gas limit
// and gas price populated.
func (t *EthTxHelperImpl) PrepareSendTx(
	ctx context.Context, wallet IEthTxWallet, txOptsParam bind.TransactOpts,
) (*bind.TransactOpts, error) {
	chainID := t.chainID
	if chainID == nil {
		retChainID, err := t.client.ChainID(ctx)
		if err != nil {
			return nil, err
		}

		chainID = retChainID
	}

	txOptsRes, err := wallet.GetTransactOpts(chainID)
	if err != nil {
		return nil, err
	}

	copyTxOpts(txOptsRes, &txOptsParam)

	if err := t.PopulateTxOpts(ctx, wallet.GetAddress(), txOptsRes); err != nil {
		return nil, err
	}

	return txOptsRes, nil
}

func (t *EthTxHelperImpl) SendTx(
	ctx context.Context, wallet IEthTxWallet, txOptsParam bind.TransactOpts, sendTxHandler SendTxFunc,
) (*types.Transaction, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	txOptsRes, err := t.PrepareSendTx(ctx, wallet, txOptsParam)
	if err != nil {
		return nil, err
	}

	return sendTxHandler(txOptsRes)
}

// EstimateGas simulates the call and returns the gas limit scaled by
// gasLimitMultiplier together with the raw estimation.
func (t *EthTxHelperImpl) EstimateGas(
	ctx context.Context, from, to common.Address, value *big.Int, gasLimitMultiplier float64, input []byte,
) (uint64, uint64, error) {
	estimatedGas, err := t.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    &to,
		Value: value,
		Data:  input,
	})
	if err != nil {
		return 0, 0, err
	}

	return uint64(float64(estimatedGas) * gasLimitMultiplier), estimatedGas, nil
}

func (t *EthTxHelperImpl) PopulateTxOpts(
	ctx context.Context, from common.Address, txOpts *bind.TransactOpts,
) error {
	txOpts.Context = ctx
	txOpts.From = from

	if txOpts.Nonce == nil {
		nonce, err := t.client.PendingNonceAt(ctx, txOpts.From)
		if err != nil {
			return err
		}

		txOpts.Nonce = new(big.Int).SetUint64(nonce)
	}

	if txOpts.GasLimit == 0 {
		txOpts.GasLimit = t.defaultGasLimit
	}

	if !t.isDynamic {
		if txOpts.GasPrice == nil {
			if t.zeroGasPrice {
				txOpts.GasPrice = big.NewInt(0)
			} else {
				gasPrice, err := t.client.SuggestGasPrice(ctx)
				if err != nil {
					return err
				}

				txOpts.GasPrice = MulPercentage(gasPrice, t.gasFeeMultiplier)
			}
		}
	} else if txOpts.GasFeeCap == nil || txOpts.GasTipCap == nil {
		gasTipCap, err := t.client.SuggestGasTipCap(ctx)
		if err != nil {
			return err
		}

		txOpts.GasTipCap = MulPercentage(gasTipCap, t.gasFeeMultiplier)

		hs, err := t.client.FeeHistory(ctx, 1, nil, nil)
		if err != nil {
			return err
		} else if len(hs.BaseFee) == 0 {
			return errEmptyFeeHistory
		}

		gasFeeCap := new(big.Int).Set(hs.BaseFee[len(hs.BaseFee)-1])
		gasFeeCap = gasFeeCap.Add(gasFeeCap, gasTipCap)

		txOpts.GasFeeCap = MulPercentage(gasFeeCap, t.gasFeeMultiplier)
	}

	return nil
}

type TxRelayerOption func(*EthTxHelperImpl)

func WithDynamicTx(value bool) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		t.isDynamic = value
	}
}

func WithNodeURL(nodeURL string) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		t.nodeURL = nodeURL
	}
}

// WithReceiptRetryConfig sets how many times and how often the receipt of a
// sent transaction is polled.
func WithReceiptRetryConfig(numRetries uint64, receiptWaitTime time.Duration) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		t.numRetries = numRetries
		t.receiptWaitTime = receiptWaitTime
	}
}

func WithGasFeeMultiplier(gasFeeMultiplier uint64) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		t.gasFeeMultiplier = gasFeeMultiplier
	}
}

func WithZeroGasPrice(zeroGasPrice bool) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		t.zeroGasPrice = zeroGasPrice
	}
}

func WithDefaultGasLimit(gasLimit uint64) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		t.defaultGasLimit = gasLimit
	}
}

func WithChainID(chainID *big.Int) TxRelayerOption {
	return func(t *EthTxHelperImpl) {
		t.chainID = chainID
	}
}

func copyTxOpts(dst, src *bind.TransactOpts) {
	dst.NoSend = src.NoSend
	dst.GasPrice = src.GasPrice
	dst.GasFeeCap = src.GasFeeCap
	dst.GasTipCap = src.GasTipCap
	dst.GasLimit = src.GasLimit
	dst.Nonce = src.Nonce
	dst.Value = src.Value
}
