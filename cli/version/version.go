package cliversion

import (
	"fmt"

	"github.com/Ethernal-Tech/peggy-orchestrator/common"
	"github.com/Ethernal-Tech/peggy-orchestrator/versioning"
	"github.com/spf13/cobra"
)

func GetVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Returns the current peggy-orchestrator version",
		Args:  cobra.NoArgs,
		Run:   common.GetCliRunCommand(versionExecutable{}),
	}
}

type versionExecutable struct{}

func (versionExecutable) Execute() (common.ICommandResult, error) {
	return &versionCmdResult{
		Version:   versioning.Version,
		Commit:    versioning.Commit,
		Branch:    versioning.Branch,
		BuildTime: versioning.BuildTime,
	}, nil
}

type versionCmdResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	BuildTime string `json:"buildTime"`
}

func (r *versionCmdResult) GetOutput() string {
	return common.FormatKV([]string{
		fmt.Sprintf("Version|%s", r.Version),
		fmt.Sprintf("Commit|%s", r.Commit),
		fmt.Sprintf("Branch|%s", r.Branch),
		fmt.Sprintf("Build Time|%s", r.BuildTime),
	}) + "\n"
}
