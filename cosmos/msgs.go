package cosmos

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// amino names of the peggy module messages
const (
	msgValsetConfirmName      = "peggy/MsgValsetConfirm"
	msgConfirmBatchName       = "peggy/MsgConfirmBatch"
	msgDepositClaimName       = "peggy/MsgDepositClaim"
	msgWithdrawClaimName      = "peggy/MsgWithdrawClaim"
	msgValsetUpdatedClaimName = "peggy/MsgValsetUpdatedClaim"
)

type bridgeValidator struct {
	Power           uint64 `json:"power"`
	EthereumAddress string `json:"ethereum_address"`
}

type msgValsetConfirm struct {
	Nonce        uint64 `json:"nonce"`
	Orchestrator string `json:"orchestrator"`
	EthAddress   string `json:"eth_address"`
	Signature    string `json:"signature"`
}

type msgConfirmBatch struct {
	Nonce         uint64 `json:"nonce"`
	TokenContract string `json:"token_contract"`
	EthSigner     string `json:"eth_signer"`
	Orchestrator  string `json:"orchestrator"`
	Signature     string `json:"signature"`
}

type msgDepositClaim struct {
	EventNonce     uint64      `json:"event_nonce"`
	TokenContract  string      `json:"token_contract"`
	Amount         sdkmath.Int `json:"amount"`
	EthereumSender string      `json:"ethereum_sender"`
	CosmosReceiver string      `json:"cosmos_receiver"`
	Orchestrator   string      `json:"orchestrator"`
}

type msgWithdrawClaim struct {
	EventNonce    uint64 `json:"event_nonce"`
	BatchNonce    uint64 `json:"batch_nonce"`
	TokenContract string `json:"token_contract"`
	Orchestrator  string `json:"orchestrator"`
}

type msgValsetUpdatedClaim struct {
	EventNonce   uint64            `json:"event_nonce"`
	ValsetNonce  uint64            `json:"valset_nonce"`
	Members      []bridgeValidator `json:"members"`
	Orchestrator string            `json:"orchestrator"`
}

var (
	_ sdk.Msg = (*msgValsetConfirm)(nil)
	_ sdk.Msg = (*msgConfirmBatch)(nil)
	_ sdk.Msg = (*msgDepositClaim)(nil)
	_ sdk.Msg = (*msgWithdrawClaim)(nil)
	_ sdk.Msg = (*msgValsetUpdatedClaim)(nil)
)

func (m *msgValsetConfirm) Reset()      { *m = msgValsetConfirm{} }
func (m *msgConfirmBatch) Reset()       { *m = msgConfirmBatch{} }
func (m *msgDepositClaim) Reset()       { *m = msgDepositClaim{} }
func (m *msgWithdrawClaim) Reset()      { *m = msgWithdrawClaim{} }
func (m *msgValsetUpdatedClaim) Reset() { *m = msgValsetUpdatedClaim{} }

func (m *msgValsetConfirm) String() string      { return fmt.Sprintf("%+v", *m) }
func (m *msgConfirmBatch) String() string       { return fmt.Sprintf("%+v", *m) }
func (m *msgDepositClaim) String() string       { return fmt.Sprintf("%+v", *m) }
func (m *msgWithdrawClaim) String() string      { return fmt.Sprintf("%+v", *m) }
func (m *msgValsetUpdatedClaim) String() string { return fmt.Sprintf("%+v", *m) }

func (*msgValsetConfirm) ProtoMessage()      {}
func (*msgConfirmBatch) ProtoMessage()       {}
func (*msgDepositClaim) ProtoMessage()       {}
func (*msgWithdrawClaim) ProtoMessage()      {}
func (*msgValsetUpdatedClaim) ProtoMessage() {}

// toSdkMsg converts msg to the peggy module message registered on aminoCdc.
func toSdkMsg(msg core.Msg) (sdk.Msg, error) {
	switch m := msg.(type) {
	case *core.MsgValsetConfirm:
		return &msgValsetConfirm{
			Nonce:        m.Nonce,
			Orchestrator: m.Orchestrator,
			EthAddress:   m.EthAddress,
			Signature:    m.Signature,
		}, nil
	case *core.MsgConfirmBatch:
		return &msgConfirmBatch{
			Nonce:         m.Nonce,
			TokenContract: m.TokenContract,
			EthSigner:     m.EthSigner,
			Orchestrator:  m.Orchestrator,
			Signature:     m.Signature,
		}, nil
	case *core.MsgDepositClaim:
		if m.Amount == nil || m.Amount.Sign() < 0 {
			return nil, fmt.Errorf("invalid deposit amount: %v", m.Amount)
		}

		return &msgDepositClaim{
			EventNonce:     m.EventNonce,
			TokenContract:  m.TokenContract,
			Amount:         sdkmath.NewIntFromBigInt(m.Amount),
			EthereumSender: m.EthereumSender,
			CosmosReceiver: m.CosmosReceiver,
			Orchestrator:   m.Orchestrator,
		}, nil
	case *core.MsgWithdrawClaim:
		return &msgWithdrawClaim{
			EventNonce:    m.EventNonce,
			BatchNonce:    m.BatchNonce,
			TokenContract: m.TokenContract,
			Orchestrator:  m.Orchestrator,
		}, nil
	case *core.MsgValsetUpdatedClaim:
		members := make([]bridgeValidator, len(m.Members))
		for i, member := range m.Members {
			members[i] = bridgeValidator{Power: member.Power, EthereumAddress: member.EthAddress}
		}

		return &msgValsetUpdatedClaim{
			EventNonce:   m.EventNonce,
			ValsetNonce:  m.ValsetNonce,
			Members:      members,
			Orchestrator: m.Orchestrator,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported message type: %T", msg)
	}
}
