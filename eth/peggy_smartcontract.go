package eth

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/hashicorp/go-hclog"
)

const (
	nonceAlreadyExecutedRevert = "must be greater than the current nonce"
	executionRevertedError     = "execution reverted"
)

var errUnexpectedCallResult = errors.New("unexpected contract call result")

type PeggySmartContractImpl struct {
	contractAddress    common.Address
	ethHelper          *EthHelperWrapper
	abi                *abi.ABI
	topics             []common.Hash
	gasLimiter         *GasLimitHolder
	gasLimitMultiplier float64
	logger             hclog.Logger
}

var _ core.SourceChain = (*PeggySmartContractImpl)(nil)

func NewPeggySmartContract(
	contractAddress string, ethHelper *EthHelperWrapper, decoder *EventDecoderImpl,
	gasLimiter *GasLimitHolder, gasLimitMultiplier float64, logger hclog.Logger,
) (*PeggySmartContractImpl, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("invalid bridge contract address: %s", contractAddress)
	}

	peggyABI, err := GetPeggyABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse bridge contract abi: %w", err)
	}

	return &PeggySmartContractImpl{
		contractAddress:    common.HexToAddress(contractAddress),
		ethHelper:          ethHelper,
		abi:                peggyABI,
		topics:             decoder.Topics(),
		gasLimiter:         gasLimiter,
		gasLimitMultiplier: gasLimitMultiplier,
		logger:             logger,
	}, nil
}

func (sc *PeggySmartContractImpl) GetLatestBlockHeight(ctx context.Context) (uint64, error) {
	ethTxHelper, err := sc.ethHelper.GetEthHelper()
	if err != nil {
		return 0, err
	}

	height, err := ethTxHelper.GetClient().BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve latest block number: %w", sc.ethHelper.ProcessError(err))
	}

	return height, nil
}

func (sc *PeggySmartContractImpl) GetLogs(ctx context.Context, fromHeight, toHeight uint64) ([]types.Log, error) {
	ethTxHelper, err := sc.ethHelper.GetEthHelper()
	if err != nil {
		return nil, err
	}

	logs, err := ethTxHelper.GetClient().FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromHeight),
		ToBlock:   new(big.Int).SetUint64(toHeight),
		Addresses: []common.Address{sc.contractAddress},
		Topics:    [][]common.Hash{sc.topics},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve logs in [%d, %d]: %w",
			fromHeight, toHeight, sc.ethHelper.ProcessError(err))
	}

	return logs, nil
}

func (sc *PeggySmartContractImpl) GetPeggyID(ctx context.Context) ([32]byte, error) {
	result, err := sc.call(ctx, peggyIDMethodName)
	if err != nil {
		return [32]byte{}, err
	}

	peggyID, ok := result.([32]byte)
	if !ok {
		return [32]byte{}, fmt.Errorf("%w: %s returned %T", errUnexpectedCallResult, peggyIDMethodName, result)
	}

	return peggyID, nil
}

func (sc *PeggySmartContractImpl) GetLastValsetNonce(ctx context.Context) (uint64, error) {
	return sc.callUint64(ctx, lastValsetNonceMethodName)
}

func (sc *PeggySmartContractImpl) GetLastBatchNonce(ctx context.Context, tokenContract string) (uint64, error) {
	if !common.IsHexAddress(tokenContract) {
		return 0, fmt.Errorf("invalid token contract address: %s", tokenContract)
	}

	return sc.callUint64(ctx, lastBatchNonceMethodName, common.HexToAddress(tokenContract))
}

// GetLastEventNonce returns the nonce of the last event emitted by the contract.
func (sc *PeggySmartContractImpl) GetLastEventNonce(ctx context.Context) (uint64, error) {
	return sc.callUint64(ctx, lastEventNonceMethodName)
}

func (sc *PeggySmartContractImpl) SubmitValsetUpdate(
	ctx context.Context, newValset *core.Valset, currentValset *core.Valset, signatures []core.Signature,
) core.SubmitResult {
	alreadyExecuted := func(ctx context.Context) (bool, error) {
		nonce, err := sc.GetLastValsetNonce(ctx)

		return nonce >= newValset.Nonce, err
	}

	if done, err := alreadyExecuted(ctx); err != nil {
		return core.TransientResult(err)
	} else if done {
		return core.AlreadyAppliedResult(fmt.Sprintf("valset %d already executed", newValset.Nonce))
	}

	newValidators, newPowers, err := valsetToContractArgs(newValset)
	if err != nil {
		return core.RejectedResult(err.Error())
	}

	curValidators, curPowers, err := valsetToContractArgs(currentValset)
	if err != nil {
		return core.RejectedResult(err.Error())
	}

	v, r, s, err := splitSignatures(currentValset, signatures)
	if err != nil {
		return core.RejectedResult(err.Error())
	}

	input, err := sc.abi.Pack(updateValsetMethodName,
		newValidators, newPowers, new(big.Int).SetUint64(newValset.Nonce),
		curValidators, curPowers, new(big.Int).SetUint64(currentValset.Nonce),
		v, r, s)
	if err != nil {
		return core.RejectedResult(fmt.Sprintf("failed to pack %s: %v", updateValsetMethodName, err))
	}

	return sc.submit(ctx, updateValsetMethodName, input, alreadyExecuted)
}

func (sc *PeggySmartContractImpl) SubmitBatch(
	ctx context.Context, currentValset *core.Valset, batch *core.Batch, signatures []core.Signature,
) core.SubmitResult {
	alreadyExecuted := func(ctx context.Context) (bool, error) {
		nonce, err := sc.GetLastBatchNonce(ctx, batch.TokenContract)

		return nonce >= batch.Nonce, err
	}

	if done, err := alreadyExecuted(ctx); err != nil {
		return core.TransientResult(err)
	} else if done {
		return core.AlreadyAppliedResult(fmt.Sprintf("%s already executed", batch))
	}

	curValidators, curPowers, err := valsetToContractArgs(currentValset)
	if err != nil {
		return core.RejectedResult(err.Error())
	}

	v, r, s, err := splitSignatures(currentValset, signatures)
	if err != nil {
		return core.RejectedResult(err.Error())
	}

	amounts, destinations, fees, err := batchToContractArgs(batch)
	if err != nil {
		return core.RejectedResult(err.Error())
	}

	input, err := sc.abi.Pack(submitBatchMethodName,
		curValidators, curPowers, new(big.Int).SetUint64(currentValset.Nonce),
		v, r, s,
		amounts, destinations, fees,
		new(big.Int).SetUint64(batch.Nonce), common.HexToAddress(batch.TokenContract))
	if err != nil {
		return core.RejectedResult(fmt.Sprintf("failed to pack %s: %v", submitBatchMethodName, err))
	}

	return sc.submit(ctx, submitBatchMethodName, input, alreadyExecuted)
}

func (sc *PeggySmartContractImpl) submit(
	ctx context.Context, method string, input []byte,
	alreadyExecuted func(ctx context.Context) (bool, error),
) core.SubmitResult {
	ethTxHelper, err := sc.ethHelper.GetEthHelper()
	if err != nil {
		return core.TransientResult(err)
	}

	estimatedGas, rawEstimation, err := ethTxHelper.EstimateGas(
		ctx, sc.ethHelper.GetWallet().GetAddress(), sc.contractAddress, nil, sc.gasLimitMultiplier, input)
	if err != nil {
		return classifyEstimateGasError(method, sc.ethHelper.ProcessError(err))
	}

	gasLimit := sc.gasLimiter.Apply(estimatedGas)

	sc.logger.Debug("Submitting to bridge contract", "method", method,
		"estimated gas", rawEstimation, "gas limit", gasLimit)

	receipt, err := sc.ethHelper.SendTx(ctx, bind.TransactOpts{GasLimit: gasLimit},
		func(opts *bind.TransactOpts) (*types.Transaction, error) {
			contract := bind.NewBoundContract(
				sc.contractAddress, *sc.abi, ethTxHelper.GetClient(), ethTxHelper.GetClient(), ethTxHelper.GetClient())

			return contract.RawTransact(opts, input)
		})

	sc.gasLimiter.Update(err)

	if err != nil {
		if receipt == nil {
			return core.TransientResult(err)
		}

		// mined but reverted: somebody else could have executed it first
		done, checkErr := alreadyExecuted(ctx)
		if checkErr == nil && done {
			return core.AlreadyAppliedResult(
				fmt.Sprintf("%s executed by another relayer, own tx %s reverted", method, receipt.TxHash.String()))
		}

		return core.RejectedResult(err.Error())
	}

	return core.AppliedResult(receipt.TxHash.String())
}

func (sc *PeggySmartContractImpl) call(ctx context.Context, method string, args ...interface{}) (interface{}, error) {
	ethTxHelper, err := sc.ethHelper.GetEthHelper()
	if err != nil {
		return nil, err
	}

	contract := bind.NewBoundContract(sc.contractAddress, *sc.abi, ethTxHelper.GetClient(), nil, nil)

	var results []interface{}

	if err := contract.Call(&bind.CallOpts{Context: ctx}, &results, method, args...); err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, sc.ethHelper.ProcessError(err))
	}

	if len(results) != 1 {
		return nil, fmt.Errorf("%w: %s returned %d values", errUnexpectedCallResult, method, len(results))
	}

	return results[0], nil
}

func (sc *PeggySmartContractImpl) callUint64(ctx context.Context, method string, args ...interface{}) (uint64, error) {
	result, err := sc.call(ctx, method, args...)
	if err != nil {
		return 0, err
	}

	value, ok := result.(*big.Int)
	if !ok {
		return 0, fmt.Errorf("%w: %s returned %T", errUnexpectedCallResult, method, result)
	}

	return toUint64(value)
}

// classifyEstimateGasError maps a failed simulation to a submit result.
// A revert caused by an already executed nonce is success.
func classifyEstimateGasError(method string, err error) core.SubmitResult {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, nonceAlreadyExecutedRevert):
		return core.AlreadyAppliedResult(fmt.Sprintf("%s: %s", method, errStr))
	case strings.Contains(errStr, executionRevertedError):
		return core.RejectedResult(fmt.Sprintf("%s: %s", method, errStr))
	default:
		return core.TransientResult(fmt.Errorf("failed to estimate gas for %s: %w", method, err))
	}
}

// splitSignatures returns v, r and s arrays aligned with the members of valset.
func splitSignatures(valset *core.Valset, signatures []core.Signature) ([]uint8, [][32]byte, [][32]byte, error) {
	if len(signatures) != len(valset.Members) {
		return nil, nil, nil, fmt.Errorf("signatures count %d does not match validators count %d",
			len(signatures), len(valset.Members))
	}

	v := make([]uint8, len(signatures))
	r := make([][32]byte, len(signatures))
	s := make([][32]byte, len(signatures))

	for i, sig := range signatures {
		v[i], r[i], s[i] = sig.V, sig.R, sig.S
	}

	return v, r, s, nil
}
