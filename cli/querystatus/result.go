package cliquerystatus

import (
	"bytes"
	"fmt"

	"github.com/Ethernal-Tech/peggy-orchestrator/common"
)

type PendingValset struct {
	Nonce      uint64 `json:"nonce"`
	Members    int    `json:"members"`
	TotalPower string `json:"totalPower"`
}

type PendingBatch struct {
	TokenContract string `json:"tokenContract"`
	Nonce         uint64 `json:"nonce"`
	Transactions  int    `json:"transactions"`
}

type CmdResult struct {
	Orchestrator     string          `json:"orchestrator"`
	EthAddress       string          `json:"ethAddress"`
	LastEventNonce   uint64          `json:"lastEventNonce"`
	SourceEventNonce uint64          `json:"sourceEventNonce"`
	LatestHeight     uint64          `json:"latestHeight"`
	LastValsetNonce  uint64          `json:"lastValsetNonce"`
	PendingValsets   []PendingValset `json:"pendingValsets"`
	PendingBatches   []PendingBatch  `json:"pendingBatches"`

	asJSON bool
}

func (r CmdResult) GetOutput() string {
	if r.asJSON {
		return common.FormatJSON(r)
	}

	var buffer bytes.Buffer

	buffer.WriteString("[ORCHESTRATOR]\n")
	buffer.WriteString(common.FormatKV([]string{
		fmt.Sprintf("Cosmos Address|%s", r.Orchestrator),
		fmt.Sprintf("Ethereum Address|%s", r.EthAddress),
		fmt.Sprintf("Last Event Nonce|%d", r.LastEventNonce),
		fmt.Sprintf("Contract Event Nonce|%d", r.SourceEventNonce),
		fmt.Sprintf("Ethereum Height|%d", r.LatestHeight),
		fmt.Sprintf("Executed Valset Nonce|%d", r.LastValsetNonce),
	}))
	buffer.WriteString("\n")

	if len(r.PendingValsets) > 0 {
		rows := []string{"Nonce|Members|Total Power"}
		for _, v := range r.PendingValsets {
			rows = append(rows, fmt.Sprintf("%d|%d|%s", v.Nonce, v.Members, v.TotalPower))
		}

		buffer.WriteString("[PENDING VALSETS]\n")
		buffer.WriteString(common.FormatList(rows))
		buffer.WriteString("\n")
	}

	if len(r.PendingBatches) > 0 {
		rows := []string{"Token|Nonce|Transactions"}
		for _, b := range r.PendingBatches {
			rows = append(rows, fmt.Sprintf("%s|%d|%d", b.TokenContract, b.Nonce, b.Transactions))
		}

		buffer.WriteString("[PENDING BATCHES]\n")
		buffer.WriteString(common.FormatList(rows))
		buffer.WriteString("\n")
	}

	return buffer.String()
}
