package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sbvh/pyxstub/cmd/pyxstub/commands"
	"github.com/sbvh/pyxstub/logger"
)

var rootCmd = &cobra.Command{
	Use:   "pyxstub",
	Short: "Generate .pyi stub files for compiled Cython extension modules",
	Long: `pyxstub - stub file generation for Cython extension modules.

Compiled extension modules expose no source for type checkers to read.
pyxstub takes a reflected snapshot of the loaded modules and produces a
.pyi interface file per module: classes, functions with recovered
signatures, data annotations, and the minimal import block the
annotations need.

Available commands:
  gen     - Generate stub files from a reflected module manifest
  version - Show version information

Examples:
  pyxstub gen build/manifest.json
  pyxstub gen build/manifest.yaml --out-dir stubs/ -v
  pyxstub gen build/manifest.json --watch`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON records")

	rootCmd.AddCommand(commands.GenCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
