package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"
)

type ICommandResult interface {
	GetOutput() string
}

type IExecutable interface {
	Execute() (ICommandResult, error)
}

// GetCliRunCommand wraps an executable into a cobra run function which prints
// the result or the error and exits with non zero code on failure.
func GetCliRunCommand(executable IExecutable) func(cmd *cobra.Command, _ []string) {
	return func(cmd *cobra.Command, _ []string) {
		results, err := executable.Execute()
		if err != nil {
			_, _ = cmd.OutOrStderr().Write([]byte(fmt.Sprintf("%v\n", err)))

			os.Exit(1)
		}

		_, _ = cmd.OutOrStdout().Write([]byte(results.GetOutput()))
	}
}

// FormatKV formats "key|value" rows as aligned "key = value" lines.
func FormatKV(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"
	columnConf.Glue = " = "

	return columnize.Format(in, columnConf)
}

// FormatList formats "a|b|c" rows as aligned columns.
func FormatList(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"

	return columnize.Format(in, columnConf)
}

// FormatJSON returns indented json of value or the marshal error as text.
func FormatJSON(value any) string {
	var buffer bytes.Buffer

	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Sprintf("failed to marshal output: %v\n", err)
	}

	buffer.Write(raw)
	buffer.WriteString("\n")

	return buffer.String()
}
