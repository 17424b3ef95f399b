package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/diamondcut-go/internal/abicodec"
	"github.com/rmacdonaldsmith/diamondcut-go/pkg/routingtable"
)

func newSelectorsCommand() *cobra.Command {
	var iface string

	cmd := &cobra.Command{
		Use:   "selectors <contract>",
		Short: "Print a contract's selectors as an encoded bytes4[]",
		Long: `Print abi.encode(bytes4[]) of the contract's function selectors, in ABI
order. With --interface only selectors the interface also declares are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				selectors []routingtable.Selector
				err       error
			)
			if iface != "" {
				selectors, err = store.InterfaceSelectors(args[0], iface)
			} else {
				selectors, err = store.Selectors(args[0])
			}
			if err != nil {
				return err
			}
			logger.Debug("Collected selectors", "contract", args[0], "interface", iface, "count", len(selectors))

			encoded, err := abicodec.EncodeSelectors(selectors)
			if err != nil {
				return fmt.Errorf("failed to encode selectors: %w", err)
			}
			return writeOutput(cmd, "", []byte(hexutil.Encode(encoded)+"\n"))
		},
	}

	cmd.Flags().StringVar(&iface, "interface", "", "Keep only selectors declared by this interface artifact")

	return cmd
}
