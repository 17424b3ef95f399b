package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/diamondcut-go/internal/abicodec"
)

func newFormatCommand() *cobra.Command {
	var encodedPath, outputPath string

	cmd := &cobra.Command{
		Use:   "format",
		Short: "Decode an encoded cut into readable JSON",
		Long: `Decode the diamondCut arguments written by build (raw bytes or 0x hex)
and print them as [[[facetAddress, action, [selectors]], ...], init, calldata].`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(encodedPath)
			if err != nil {
				return fmt.Errorf("failed to read encoded cut: %w", err)
			}
			out, err := abicodec.FormatEncoded(raw)
			if err != nil {
				return err
			}
			return writeOutput(cmd, outputPath, append(out, '\n'))
		},
	}

	cmd.Flags().StringVar(&encodedPath, "encoded-path", "", "File holding the encoded cut (required)")
	cmd.Flags().StringVar(&outputPath, "output-path", "", "Write the JSON to this file instead of stdout")

	if err := cmd.MarkFlagRequired("encoded-path"); err != nil {
		panic(fmt.Sprintf("Failed to mark encoded-path flag as required: %v", err))
	}

	return cmd
}
