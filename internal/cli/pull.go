package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edgepunks/edgepunks/pkg/pipeline"
)

type pullOptions struct {
	svgDir      string
	metadataDir string
	noCache     bool
	concurrency int
	progress    bool
}

// pullCommand creates the pull command.
func (c *CLI) pullCommand() *cobra.Command {
	var opts pullOptions

	cmd := &cobra.Command{
		Use:   "pull [token-id...]",
		Short: "Download token SVGs and metadata from the chain",
		Long: `Call tokenURI for each token and store the result locally.

The SVG is written to <svg-dir>/<id>.svg and the metadata, with every image
field removed, to <metadata-dir>/<id>.json. The RPC endpoint is read from
WEB3_RPC_URL or rpc_url in the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPull(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.svgDir, "svg-dir", "", "destination for <id>.svg (default svg_dir)")
	cmd.Flags().StringVar(&opts.metadataDir, "metadata-dir", "", "destination for <id>.json (default metadata_dir)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "always call the chain")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "j", 0, "concurrent RPC calls (default concurrency)")
	cmd.Flags().BoolVar(&opts.progress, "progress", false, "show a live progress bar")

	return cmd
}

func (c *CLI) runPull(ctx context.Context, ids []string, opts pullOptions) error {
	cfg := c.Config
	if opts.svgDir == "" {
		opts.svgDir = cfg.SVGDir
	}
	if opts.metadataDir == "" {
		opts.metadataDir = cfg.MetadataDir
	}
	if opts.concurrency == 0 {
		opts.concurrency = cfg.Concurrency
	}

	pull := pipeline.PullOptions{TokenIDs: ids, MaxSupply: cfg.MaxSupply, Concurrency: opts.concurrency}
	if err := pull.ValidateAndSetDefaults(); err != nil {
		return err
	}

	prog := newStopwatch(c.Logger)
	client, closeClient, err := c.newChainClient(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer closeClient()
	prog.done("Connected to " + client.Contract())

	runner := c.newRunner("")
	svgSink := pipeline.DirSink{Dir: opts.svgDir}
	metaSink := pipeline.DirSink{Dir: opts.metadataDir}

	batch := func(ctx context.Context, progress func(pipeline.Event)) (*pipeline.Report, error) {
		pull.Progress = progress
		return runner.Pull(ctx, client, svgSink, metaSink, pull)
	}

	var report *pipeline.Report
	if opts.progress {
		report, err = runWithProgress(ctx, fmt.Sprintf("Pulling %d tokens", len(pull.TokenIDs)), len(pull.TokenIDs), batch)
	} else {
		report, err = batch(ctx, nil)
	}
	printReport("Pulled", report, opts.svgDir)
	return err
}
