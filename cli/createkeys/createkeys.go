package clicreatekeys

import (
	"bytes"
	"fmt"

	"github.com/Ethernal-Tech/peggy-orchestrator/common"
	"github.com/spf13/cobra"
)

var paramsData = &createKeysParams{}

func GetCreateKeysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "create-keys",
		Short:   "creates orchestrator ethereum key and cosmos mnemonic in the secrets manager",
		PreRunE: runPreRun,
		Run:     common.GetCliRunCommand(paramsData),
	}

	paramsData.setFlags(cmd)

	return cmd
}

func runPreRun(_ *cobra.Command, _ []string) error {
	return paramsData.validateFlags()
}

type CmdResult struct {
	EthAddress     string `json:"ethAddress"`
	EthPrivateKey  string `json:"ethPrivateKey"`
	CosmosAddress  string `json:"cosmosAddress"`
	CosmosPubKey   string `json:"cosmosPubKey"`
	CosmosMnemonic string `json:"cosmosMnemonic"`
	showPrivateKey bool
}

func (r CmdResult) GetOutput() string {
	var buffer bytes.Buffer

	ethVals := []string{fmt.Sprintf("Address|%s", r.EthAddress)}
	cosmosVals := []string{
		fmt.Sprintf("Address|%s", r.CosmosAddress),
		fmt.Sprintf("Public Key|%s", r.CosmosPubKey),
	}

	if r.showPrivateKey {
		ethVals = append(ethVals, fmt.Sprintf("Private Key|%s", r.EthPrivateKey))
		cosmosVals = append(cosmosVals, fmt.Sprintf("Mnemonic|%s", r.CosmosMnemonic))
	}

	buffer.WriteString("[ETHEREUM]\n")
	buffer.WriteString(common.FormatKV(ethVals))
	buffer.WriteString("\n[COSMOS]\n")
	buffer.WriteString(common.FormatKV(cosmosVals))
	buffer.WriteString("\n")

	return buffer.String()
}
