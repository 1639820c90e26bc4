package cliquerystatus

import (
	"github.com/Ethernal-Tech/peggy-orchestrator/common"
	"github.com/spf13/cobra"
)

var paramsData = &queryStatusParams{}

func GetQueryStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "query-status",
		Short:   "prints the bridge state relevant for the orchestrator",
		PreRunE: runPreRun,
		Run:     common.GetCliRunCommand(paramsData),
	}

	paramsData.setFlags(cmd)

	return cmd
}

func runPreRun(_ *cobra.Command, _ []string) error {
	return paramsData.validateFlags()
}
