package cli

import (
	"fmt"
	"os"

	clicreatekeys "github.com/Ethernal-Tech/peggy-orchestrator/cli/createkeys"
	cligenerateconfig "github.com/Ethernal-Tech/peggy-orchestrator/cli/generateconfig"
	cliquerystatus "github.com/Ethernal-Tech/peggy-orchestrator/cli/querystatus"
	clirunorchestrator "github.com/Ethernal-Tech/peggy-orchestrator/cli/runorchestrator"
	cliversion "github.com/Ethernal-Tech/peggy-orchestrator/cli/version"
	"github.com/spf13/cobra"
)

type RootCommand struct {
	baseCmd *cobra.Command
}

func NewRootCommand() *RootCommand {
	rootCommand := &RootCommand{
		baseCmd: &cobra.Command{
			Use:   "peggy-orchestrator",
			Short: "cli commands for the peggy bridge orchestrator",
		},
	}

	rootCommand.registerSubCommands()

	return rootCommand
}

func (rc *RootCommand) registerSubCommands() {
	rc.baseCmd.AddCommand(
		clirunorchestrator.GetRunOrchestratorCommand(),
		cligenerateconfig.GetGenerateConfigCommand(),
		clicreatekeys.GetCreateKeysCommand(),
		cliquerystatus.GetQueryStatusCommand(),
		cliversion.GetVersionCommand(),
	)
}

func (rc *RootCommand) Execute() {
	if err := rc.baseCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}
