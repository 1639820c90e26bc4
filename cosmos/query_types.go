package cosmos

import (
	"math/big"

	sdkmath "cosmossdk.io/math"
	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
)

type valsetResponse struct {
	Nonce   uint64            `json:"nonce"`
	Members []bridgeValidator `json:"members"`
	Height  uint64            `json:"height"`
}

func (v valsetResponse) toCore() *core.Valset {
	members := make([]core.ValsetMember, len(v.Members))
	for i, m := range v.Members {
		members[i] = core.ValsetMember{EthAddress: m.EthereumAddress, Power: m.Power}
	}

	return &core.Valset{
		Nonce:   v.Nonce,
		Members: members,
	}
}

func valsetConfirmToCore(c msgValsetConfirm) *core.Confirm {
	return &core.Confirm{
		Orchestrator: c.Orchestrator,
		EthSigner:    c.EthAddress,
		Signature:    c.Signature,
	}
}

func batchConfirmToCore(c msgConfirmBatch) *core.Confirm {
	return &core.Confirm{
		Orchestrator: c.Orchestrator,
		EthSigner:    c.EthSigner,
		Signature:    c.Signature,
	}
}

type erc20Token struct {
	Amount   sdkmath.Int `json:"amount"`
	Contract string      `json:"contract"`
}

type outgoingTransferTx struct {
	ID          uint64     `json:"txid"`
	Sender      string     `json:"sender"`
	DestAddress string     `json:"dest_address"`
	Send        erc20Token `json:"send"`
	BridgeFee   erc20Token `json:"bridge_fee"`
}

type outgoingTxBatch struct {
	Nonce         uint64               `json:"nonce"`
	Transactions  []outgoingTransferTx `json:"transactions"`
	TokenContract string               `json:"token_contract"`
	TotalFee      erc20Token           `json:"total_fee"`
	Block         uint64               `json:"block"`
}

func (b outgoingTxBatch) toCore() *core.Batch {
	transfers := make([]core.OutgoingTransfer, len(b.Transactions))
	totalFee := new(big.Int)

	for i, tx := range b.Transactions {
		transfers[i] = core.OutgoingTransfer{
			ID:          tx.ID,
			Sender:      tx.Sender,
			Destination: tx.DestAddress,
			Amount:      intOrZero(tx.Send.Amount),
			Fee:         intOrZero(tx.BridgeFee.Amount),
		}

		totalFee.Add(totalFee, transfers[i].Fee)
	}

	if !b.TotalFee.Amount.IsNil() {
		totalFee = b.TotalFee.Amount.BigInt()
	}

	return &core.Batch{
		Nonce:         b.Nonce,
		TokenContract: b.TokenContract,
		Transactions:  transfers,
		TotalFee:      totalFee,
		Block:         b.Block,
	}
}

func intOrZero(value sdkmath.Int) *big.Int {
	if value.IsNil() {
		return new(big.Int)
	}

	return value.BigInt()
}

type lastEventNonceResponse struct {
	Nonce uint64 `json:"nonce"`
}

// baseAccount holds the fields of an auth account needed for signing.
type baseAccount struct {
	Address       string `json:"address"`
	AccountNumber uint64 `json:"account_number"`
	Sequence      uint64 `json:"sequence"`
}

type queryAccountParams struct {
	Address string `json:"Address"`
}
