package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pet-matchmaker/internal/matchmaking/preferences"
)

// NewScriptCmd manages interview script files (interview.script_path).
func NewScriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Inspect and validate interview scripts",
	}
	cmd.AddCommand(newScriptValidateCmd())
	cmd.AddCommand(newScriptExportCmd())
	return cmd
}

func newScriptValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Check that an interview script file can be loaded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := preferences.LoadScript(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is valid (%d questions)\n", args[0], script.Len())
			return nil
		},
	}
}

func newScriptExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the built-in interview script as a script file",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := preferences.DefaultScript().Export(versionInfo.Version)
			reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)

			data, err := json.MarshalIndent(reg, "", "  ")
			if err != nil {
				return err
			}
			data = append(data, '\n')

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d questions to %s\n", len(reg.Questions), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default: stdout)")
	return cmd
}
