package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/diamondcut-go/internal/abicodec"
	"github.com/rmacdonaldsmith/diamondcut-go/internal/cutconfig"
	"github.com/rmacdonaldsmith/diamondcut-go/internal/cutplanner"
	"github.com/rmacdonaldsmith/diamondcut-go/internal/loupe"
	"github.com/rmacdonaldsmith/diamondcut-go/internal/routingtable"
	"github.com/rmacdonaldsmith/diamondcut-go/pkg/diamondcut"
)

// planOptions are the inputs shared by build and plan
type planOptions struct {
	configPath  string
	diamond     string
	facetsFile  string
	loupeFile   string
	initAddress string
	deleteAll   bool
	deletes     []string
}

func (o *planOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.configPath, "config", "", "Upgrade config file (.json, .yaml or .yml)")
	cmd.Flags().StringVar(&o.diamond, "diamond", "", "Diamond address (overrides config)")
	cmd.Flags().StringVar(&o.facetsFile, "facets-file", "", "File of address|contractName lines naming the desired facets (required)")
	cmd.Flags().StringVar(&o.loupeFile, "loupe-file", "", "Loupe snapshot of facetAddress|sel1,sel2 lines; omit for a fresh diamond")
	cmd.Flags().StringVar(&o.initAddress, "init-address", "", "Initializer address (overrides config)")
	cmd.Flags().BoolVar(&o.deleteAll, "delete-all-old-methods", false, "Remove deployed selectors no facet serves")
	cmd.Flags().StringSliceVar(&o.deletes, "delete", nil, "Selector or signature to remove (repeatable)")

	if err := cmd.MarkFlagRequired("facets-file"); err != nil {
		panic(fmt.Sprintf("Failed to mark facets-file flag as required: %v", err))
	}
}

// config loads the config file, if any, and applies flag overrides
func (o *planOptions) config() (*cutconfig.Config, error) {
	cfg := cutconfig.NewConfig("")
	if o.configPath != "" {
		var err error
		cfg, err = cutconfig.Load(o.configPath)
		if err != nil {
			return nil, err
		}
	}
	if o.diamond != "" {
		cfg.WithDiamond(o.diamond)
	}
	cfg.WithInitAddress(o.initAddress)
	if o.deleteAll {
		cfg.DeleteAllOldMethods = true
	}
	cfg.DeleteSelectorSigs = append(cfg.DeleteSelectorSigs, o.deletes...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// preparePlan runs the planner over the configured inputs
func (o *planOptions) preparePlan(ctx context.Context) (*diamondcut.Plan, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}

	entries, err := loupe.ReadFacetsFile(o.facetsFile)
	if err != nil {
		return nil, err
	}
	facets := make([]diamondcut.FacetInput, 0, len(entries))
	for _, entry := range entries {
		selectors, err := store.Selectors(entry.ContractName)
		if err != nil {
			return nil, err
		}
		logger.Debug("Loaded facet", "contract", entry.ContractName, "address", entry.Address.Hex(), "selectors", len(selectors))
		facets = append(facets, diamondcut.FacetInput{Address: entry.Address, Selectors: selectors})
	}

	deployed := routingtable.New()
	if o.loupeFile != "" {
		deployed, err = cutplanner.DeployedFromLoupe(ctx, loupe.NewFileLoupe(o.loupeFile))
		if err != nil {
			return nil, err
		}
	}

	initCall, err := cfg.ResolveInit(store)
	if err != nil {
		return nil, err
	}

	return cutplanner.New(logger).Prepare(cfg.Request(facets, initCall), deployed)
}

func newBuildCommand() *cobra.Command {
	var (
		opts   planOptions
		output string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compute and encode the diamond cut",
		Long: `Compute the cuts that bring the diamond's deployed routing in line with
the given facets, and write the ABI-encoded diamondCut arguments as 0x hex.
An empty cut list is still written; callers decide whether to submit it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, &opts, output)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&output, "output", "", "Write the encoded cut to this file instead of stdout")

	return cmd
}

func runBuild(cmd *cobra.Command, opts *planOptions, output string) error {
	plan, err := opts.preparePlan(cmd.Context())
	if err != nil {
		return err
	}
	if plan.IsEmpty() {
		logger.Warn("No facet cuts to apply")
	}

	encoded, err := abicodec.EncodeCut(plan)
	if err != nil {
		return fmt.Errorf("failed to encode cut: %w", err)
	}
	return writeOutput(cmd, output, []byte(hexutil.Encode(encoded)))
}
