package core

import "math/big"

// Msg is a message broadcast to the consensus chain.
type Msg interface {
	MsgType() string
}

// ClaimMsg is an oracle attestation of one source chain event.
type ClaimMsg interface {
	Msg
	GetEventNonce() uint64
}

type MsgValsetConfirm struct {
	Nonce        uint64
	Orchestrator string
	EthAddress   string
	Signature    string
}

type MsgConfirmBatch struct {
	Nonce         uint64
	TokenContract string
	EthSigner     string
	Orchestrator  string
	Signature     string
}

type MsgDepositClaim struct {
	EventNonce     uint64
	TokenContract  string
	Amount         *big.Int
	EthereumSender string
	CosmosReceiver string
	Orchestrator   string
}

type MsgWithdrawClaim struct {
	EventNonce    uint64
	BatchNonce    uint64
	TokenContract string
	Orchestrator  string
}

type MsgValsetUpdatedClaim struct {
	EventNonce   uint64
	ValsetNonce  uint64
	Members      []ValsetMember
	Orchestrator string
}

var (
	_ Msg      = (*MsgValsetConfirm)(nil)
	_ Msg      = (*MsgConfirmBatch)(nil)
	_ ClaimMsg = (*MsgDepositClaim)(nil)
	_ ClaimMsg = (*MsgWithdrawClaim)(nil)
	_ ClaimMsg = (*MsgValsetUpdatedClaim)(nil)
)

func (*MsgValsetConfirm) MsgType() string      { return "peggy/MsgValsetConfirm" }
func (*MsgConfirmBatch) MsgType() string       { return "peggy/MsgConfirmBatch" }
func (*MsgDepositClaim) MsgType() string       { return "peggy/MsgDepositClaim" }
func (*MsgWithdrawClaim) MsgType() string      { return "peggy/MsgWithdrawClaim" }
func (*MsgValsetUpdatedClaim) MsgType() string { return "peggy/MsgValsetUpdatedClaim" }

func (m *MsgDepositClaim) GetEventNonce() uint64       { return m.EventNonce }
func (m *MsgWithdrawClaim) GetEventNonce() uint64      { return m.EventNonce }
func (m *MsgValsetUpdatedClaim) GetEventNonce() uint64 { return m.EventNonce }
