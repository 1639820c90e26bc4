package clirunorchestrator

import (
	"github.com/Ethernal-Tech/peggy-orchestrator/common"
	"github.com/spf13/cobra"
)

var paramsData = &runOrchestratorParams{}

func GetRunOrchestratorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run-orchestrator",
		Short:   "runs the bridge orchestrator of a validator",
		PreRunE: runPreRun,
		Run:     common.GetCliRunCommand(paramsData),
	}

	paramsData.setFlags(cmd)

	return cmd
}

func runPreRun(_ *cobra.Command, _ []string) error {
	return paramsData.validateFlags()
}

type CmdResult struct{}

func (r CmdResult) GetOutput() string {
	return "orchestrator stopped\n"
}
