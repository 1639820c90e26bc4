package cligenerateconfig

import (
	"fmt"

	"github.com/Ethernal-Tech/peggy-orchestrator/common"
	"github.com/spf13/cobra"
)

var paramsData = &generateConfigParams{}

func GetGenerateConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate-config",
		Short:   "generates default config json file",
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
	configPath string
}

func (r CmdResult) GetOutput() string {
	return common.FormatKV([]string{
		fmt.Sprintf("Orchestrator config|%s", r.configPath),
	}) + "\n"
}
