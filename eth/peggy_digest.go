package eth

import (
	"fmt"
	"math/big"

	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	checkpointMethodName = stringToBytes32("checkpoint")
	batchMethodName      = stringToBytes32("transactionBatch")
)

var (
	bytes32Type, _      = abi.NewType("bytes32", "", nil)
	uint256Type, _      = abi.NewType("uint256", "", nil)
	uint256ArrayType, _ = abi.NewType("uint256[]", "", nil)
	addressType, _      = abi.NewType("address", "", nil)
	addressArrayType, _ = abi.NewType("address[]", "", nil)

	checkpointArguments = abi.Arguments{
		{Type: bytes32Type},      // peggy id
		{Type: bytes32Type},      // "checkpoint"
		{Type: uint256Type},      // valset nonce
		{Type: addressArrayType}, // validators
		{Type: uint256ArrayType}, // powers
	}

	batchArguments = abi.Arguments{
		{Type: bytes32Type},      // peggy id
		{Type: bytes32Type},      // "transactionBatch"
		{Type: uint256ArrayType}, // amounts
		{Type: addressArrayType}, // destinations
		{Type: uint256ArrayType}, // fees
		{Type: uint256Type},      // batch nonce
		{Type: addressType},      // token contract
	}
)

// ValsetCheckpointDigest returns the hash the bridge contract recomputes to
// verify validator signatures over a validator set update.
func ValsetCheckpointDigest(peggyID [32]byte, valset *core.Valset) ([]byte, error) {
	validators, powers, err := valsetToContractArgs(valset)
	if err != nil {
		return nil, err
	}

	encoded, err := checkpointArguments.Pack(
		peggyID, checkpointMethodName, new(big.Int).SetUint64(valset.Nonce), validators, powers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode valset checkpoint: %w", err)
	}

	return crypto.Keccak256(encoded), nil
}

// BatchDigest returns the hash the bridge contract recomputes to verify
// validator signatures over a transaction batch.
func BatchDigest(peggyID [32]byte, batch *core.Batch) ([]byte, error) {
	amounts, destinations, fees, err := batchToContractArgs(batch)
	if err != nil {
		return nil, err
	}

	if !common.IsHexAddress(batch.TokenContract) {
		return nil, fmt.Errorf("invalid token contract address: %s", batch.TokenContract)
	}

	encoded, err := batchArguments.Pack(
		peggyID, batchMethodName, amounts, destinations, fees,
		new(big.Int).SetUint64(batch.Nonce), common.HexToAddress(batch.TokenContract))
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch: %w", err)
	}

	return crypto.Keccak256(encoded), nil
}

func valsetToContractArgs(valset *core.Valset) ([]common.Address, []*big.Int, error) {
	validators := make([]common.Address, len(valset.Members))
	powers := make([]*big.Int, len(valset.Members))

	for i, member := range valset.Members {
		if !common.IsHexAddress(member.EthAddress) {
			return nil, nil, fmt.Errorf("invalid validator address at index %d: %s", i, member.EthAddress)
		}

		validators[i] = common.HexToAddress(member.EthAddress)
		powers[i] = new(big.Int).SetUint64(member.Power)
	}

	return validators, powers, nil
}

func batchToContractArgs(batch *core.Batch) ([]*big.Int, []common.Address, []*big.Int, error) {
	amounts := make([]*big.Int, len(batch.Transactions))
	destinations := make([]common.Address, len(batch.Transactions))
	fees := make([]*big.Int, len(batch.Transactions))

	for i, tx := range batch.Transactions {
		if !common.IsHexAddress(tx.Destination) {
			return nil, nil, nil, fmt.Errorf("invalid destination at index %d: %s", i, tx.Destination)
		}

		amounts[i] = bigOrZero(tx.Amount)
		destinations[i] = common.HexToAddress(tx.Destination)
		fees[i] = bigOrZero(tx.Fee)
	}

	return amounts, destinations, fees, nil
}

func stringToBytes32(s string) (res [32]byte) {
	copy(res[:], s)

	return res
}

func bigOrZero(value *big.Int) *big.Int {
	if value == nil {
		return new(big.Int)
	}

	return value
}
