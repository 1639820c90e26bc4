package eth

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	"github.com/cosmos/cosmos-sdk/types/bech32"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	errUnknownEvent = errors.New("unknown bridge event")
	errRemovedLog   = errors.New("log removed by reorg")
)

type sendToCosmosEvent struct {
	TokenContract common.Address
	Sender        common.Address
	Destination   [32]byte
	Amount        *big.Int
	EventNonce    *big.Int
}

type transactionBatchExecutedEvent struct {
	BatchNonce *big.Int
	Token      common.Address
	EventNonce *big.Int
}

type valsetUpdatedEvent struct {
	NewValsetNonce *big.Int
	EventNonce     *big.Int
	Validators     []common.Address
	Powers         []*big.Int
}

type EventDecoderImpl struct {
	contract      *bind.BoundContract
	abi           *abi.ABI
	addressPrefix string
}

var _ core.EventDecoder = (*EventDecoderImpl)(nil)

// NewEventDecoder creates decoder for the bridge contract logs. Cosmos
// receivers of deposits are encoded as bech32 with addressPrefix.
func NewEventDecoder(addressPrefix string) (*EventDecoderImpl, error) {
	peggyABI, err := GetPeggyABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse bridge contract abi: %w", err)
	}

	return &EventDecoderImpl{
		contract:      bind.NewBoundContract(common.Address{}, *peggyABI, nil, nil, nil),
		abi:           peggyABI,
		addressPrefix: addressPrefix,
	}, nil
}

// Topics returns the event ids the decoder understands.
func (d *EventDecoderImpl) Topics() []common.Hash {
	return []common.Hash{
		d.abi.Events[sendToCosmosEventName].ID,
		d.abi.Events[batchExecutedEventName].ID,
		d.abi.Events[valsetUpdatedEventName].ID,
	}
}

func (d *EventDecoderImpl) Decode(log types.Log) (*core.BridgeEvent, error) {
	if log.Removed {
		return nil, fmt.Errorf("%w: tx %s", errRemovedLog, log.TxHash)
	}

	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("%w: log without topics in tx %s", errUnknownEvent, log.TxHash)
	}

	event := &core.BridgeEvent{
		BlockHeight: log.BlockNumber,
		TxHash:      log.TxHash.String(),
	}

	switch log.Topics[0] {
	case d.abi.Events[sendToCosmosEventName].ID:
		var ev sendToCosmosEvent

		if err := d.contract.UnpackLog(&ev, sendToCosmosEventName, log); err != nil {
			return nil, fmt.Errorf("failed to unpack %s: %w", sendToCosmosEventName, err)
		}

		receiver, err := bech32.ConvertAndEncode(d.addressPrefix, ev.Destination[12:])
		if err != nil {
			return nil, fmt.Errorf("failed to encode cosmos receiver: %w", err)
		}

		event.Type = core.DepositEventType
		event.Deposit = &core.DepositPayload{
			TokenContract:  ev.TokenContract.String(),
			Sender:         ev.Sender.String(),
			CosmosReceiver: receiver,
			Amount:         ev.Amount,
		}

		if event.EventNonce, err = toUint64(ev.EventNonce); err != nil {
			return nil, err
		}

	case d.abi.Events[batchExecutedEventName].ID:
		var ev transactionBatchExecutedEvent

		if err := d.contract.UnpackLog(&ev, batchExecutedEventName, log); err != nil {
			return nil, fmt.Errorf("failed to unpack %s: %w", batchExecutedEventName, err)
		}

		batchNonce, err := toUint64(ev.BatchNonce)
		if err != nil {
			return nil, err
		}

		event.Type = core.BatchExecutedEventType
		event.BatchExecuted = &core.BatchExecutedPayload{
			BatchNonce:    batchNonce,
			TokenContract: ev.Token.String(),
		}

		if event.EventNonce, err = toUint64(ev.EventNonce); err != nil {
			return nil, err
		}

	case d.abi.Events[valsetUpdatedEventName].ID:
		var ev valsetUpdatedEvent

		if err := d.contract.UnpackLog(&ev, valsetUpdatedEventName, log); err != nil {
			return nil, fmt.Errorf("failed to unpack %s: %w", valsetUpdatedEventName, err)
		}

		if len(ev.Validators) != len(ev.Powers) {
			return nil, fmt.Errorf("validators and powers length mismatch: %d != %d",
				len(ev.Validators), len(ev.Powers))
		}

		valsetNonce, err := toUint64(ev.NewValsetNonce)
		if err != nil {
			return nil, err
		}

		members := make([]core.ValsetMember, len(ev.Validators))

		for i, addr := range ev.Validators {
			power, err := toUint64(ev.Powers[i])
			if err != nil {
				return nil, err
			}

			members[i] = core.ValsetMember{EthAddress: addr.String(), Power: power}
		}

		event.Type = core.ValsetUpdatedEventType
		event.ValsetUpdated = &core.ValsetUpdatedPayload{
			ValsetNonce: valsetNonce,
			Members:     members,
		}

		if event.EventNonce, err = toUint64(ev.EventNonce); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: topic %s in tx %s", errUnknownEvent, log.Topics[0], log.TxHash)
	}

	return event, nil
}

func toUint64(value *big.Int) (uint64, error) {
	if value == nil || value.Sign() < 0 || !value.IsUint64() {
		return 0, fmt.Errorf("value does not fit into uint64: %v", value)
	}

	return value.Uint64(), nil
}
