package core

import (
	"fmt"
	"math/big"
	"strings"
)

type BridgeEventType uint8

const (
	DepositEventType BridgeEventType = iota + 1
	ValsetUpdatedEventType
	BatchExecutedEventType
)

func (t BridgeEventType) String() string {
	switch t {
	case DepositEventType:
		return "deposit"
	case ValsetUpdatedEventType:
		return "valset_updated"
	case BatchExecutedEventType:
		return "batch_executed"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// BridgeEvent is a decoded bridge contract log. Exactly one of the payload
// pointers is set, matching Type.
type BridgeEvent struct {
	Type        BridgeEventType
	EventNonce  uint64
	BlockHeight uint64
	TxHash      string

	Deposit       *DepositPayload
	ValsetUpdated *ValsetUpdatedPayload
	BatchExecuted *BatchExecutedPayload
}

type DepositPayload struct {
	TokenContract  string
	Sender         string
	CosmosReceiver string
	Amount         *big.Int
}

type ValsetUpdatedPayload struct {
	ValsetNonce uint64
	Members     []ValsetMember
}

type BatchExecutedPayload struct {
	BatchNonce    uint64
	TokenContract string
}

func (e BridgeEvent) String() string {
	return fmt.Sprintf("%s(nonce=%d, height=%d)", e.Type, e.EventNonce, e.BlockHeight)
}

type ValsetMember struct {
	EthAddress string
	Power      uint64
}

// Valset is a validator set checkpoint agreed by the consensus chain.
type Valset struct {
	Nonce   uint64
	Members []ValsetMember
}

func (v *Valset) TotalPower() *big.Int {
	total := new(big.Int)
	for _, m := range v.Members {
		total.Add(total, new(big.Int).SetUint64(m.Power))
	}

	return total
}

func (v *Valset) MemberIndex(ethAddress string) int {
	for i, m := range v.Members {
		if strings.EqualFold(m.EthAddress, ethAddress) {
			return i
		}
	}

	return -1
}

type OutgoingTransfer struct {
	ID          uint64
	Sender      string
	Destination string
	Amount      *big.Int
	Fee         *big.Int
}

// Batch is an outbound transaction batch for one token contract.
type Batch struct {
	Nonce         uint64
	TokenContract string
	Transactions  []OutgoingTransfer
	TotalFee      *big.Int
	Block         uint64
}

func (b Batch) String() string {
	return fmt.Sprintf("batch(token=%s, nonce=%d, txs=%d)", b.TokenContract, b.Nonce, len(b.Transactions))
}

// Confirm is an endorsement recorded on the consensus chain: the signature of
// one orchestrator over a checkpoint or batch digest.
type Confirm struct {
	Orchestrator string
	EthSigner    string
	Signature    string
}

// Signature is a decoded secp256k1 signature in the form the bridge contract
// expects. A zero value stands for a missing signature.
type Signature struct {
	V uint8
	R [32]byte
	S [32]byte
}

func (s Signature) IsEmpty() bool {
	return s.V == 0
}
