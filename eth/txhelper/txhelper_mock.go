package ethtxhelper

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
)

type EthClientMock struct {
	mock.Mock
}

var _ EthClient = (*EthClientMock)(nil)

func (m *EthClientMock) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	args := m.Called(ctx, contract, blockNumber)
	arg0, _ := args.Get(0).([]byte)

	return arg0, args.Error(1)
}

func (m *EthClientMock) CallContract(
	ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int,
) ([]byte, error) {
	args := m.Called(ctx, call, blockNumber)
	arg0, _ := args.Get(0).([]byte)

	return arg0, args.Error(1)
}

func (m *EthClientMock) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	args := m.Called(ctx, number)
	arg0, _ := args.Get(0).(*types.Header)

	return arg0, args.Error(1)
}

func (m *EthClientMock) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	args := m.Called(ctx, account)
	arg0, _ := args.Get(0).([]byte)

	return arg0, args.Error(1)
}

func (m *EthClientMock) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	args := m.Called(ctx, account)
	arg0, _ := args.Get(0).(uint64)

	return arg0, args.Error(1)
}

func (m *EthClientMock) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	arg0, _ := args.Get(0).(*big.Int)

	return arg0, args.Error(1)
}

func (m *EthClientMock) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	arg0, _ := args.Get(0).(*big.Int)

	return arg0, args.Error(1)
}

func (m *EthClientMock) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	args := m.Called(ctx, call)
	arg0, _ := args.Get(0).(uint64)

	return arg0, args.Error(1)
}

func (m *EthClientMock) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *EthClientMock) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	args := m.Called(ctx, query)
	arg0, _ := args.Get(0).([]types.Log)

	return arg0, args.Error(1)
}

func (m *EthClientMock) SubscribeFilterLogs(
	ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log,
) (ethereum.Subscription, error) {
	args := m.Called(ctx, query, ch)
	arg0, _ := args.Get(0).(ethereum.Subscription)

	return arg0, args.Error(1)
}

func (m *EthClientMock) ChainID(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	arg0, _ := args.Get(0).(*big.Int)

	return arg0, args.Error(1)
}

func (m *EthClientMock) BlockNumber(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	arg0, _ := args.Get(0).(uint64)

	return arg0, args.Error(1)
}

func (m *EthClientMock) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	args := m.Called(ctx, txHash)
	arg0, _ := args.Get(0).(*types.Receipt)

	return arg0, args.Error(1)
}

func (m *EthClientMock) FeeHistory(
	ctx context.Context, blockCount uint64, lastBlock *big.Int, rewardPercentiles []float64,
) (*ethereum.FeeHistory, error) {
	args := m.Called(ctx, blockCount, lastBlock, rewardPercentiles)
	arg0, _ := args.Get(0).(*ethereum.FeeHistory)

	return arg0, args.Error(1)
}

type EthTxHelperMock struct {
	mock.Mock
	Client EthClient
}

var _ IEthTxHelper = (*EthTxHelperMock)(nil)

func (m *EthTxHelperMock) GetClient() EthClient {
	return m.Client
}

func (m *EthTxHelperMock) WaitForReceipt(ctx context.Context, hash string) (*types.Receipt, error) {
	args := m.Called(ctx, hash)
	arg0, _ := args.Get(0).(*types.Receipt)

	return arg0, args.Error(1)
}

func (m *EthTxHelperMock) PrepareSendTx(
	ctx context.Context, wallet IEthTxWallet, txOpts bind.TransactOpts,
) (*bind.TransactOpts, error) {
	args := m.Called(ctx, wallet, txOpts)
	arg0, _ := args.Get(0).(*bind.TransactOpts)

	return arg0, args.Error(1)
}

func (m *EthTxHelperMock) SendTx(
	ctx context.Context, wallet IEthTxWallet, txOpts bind.TransactOpts, sendTxHandler SendTxFunc,
) (*types.Transaction, error) {
	args := m.Called(ctx, wallet, txOpts, sendTxHandler)
	arg0, _ := args.Get(0).(*types.Transaction)

	return arg0, args.Error(1)
}

func (m *EthTxHelperMock) EstimateGas(
	ctx context.Context, from, to common.Address, value *big.Int, gasLimitMultiplier float64, input []byte,
) (uint64, uint64, error) {
	args := m.Called(ctx, from, to, value, gasLimitMultiplier, input)
	arg0, _ := args.Get(0).(uint64)
	arg1, _ := args.Get(1).(uint64)

	return arg0, arg1, args.Error(2)
}

func (m *EthTxHelperMock) PopulateTxOpts(ctx context.Context, from common.Address, txOpts *bind.TransactOpts) error {
	return m.Called(ctx, from, txOpts).Error(0)
}
