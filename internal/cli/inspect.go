package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edgepunks/edgepunks/pkg/artwork"
	"github.com/edgepunks/edgepunks/pkg/cache"
	"github.com/edgepunks/edgepunks/pkg/chain"
	"github.com/edgepunks/edgepunks/pkg/errors"
	"github.com/edgepunks/edgepunks/pkg/pipeline"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		svgDir    string
		fromChain bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <token-id>",
		Short: "Show the layers and classification of one token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := errors.ValidateTokenID(id); err != nil {
				return err
			}
			ctx := cmd.Context()

			var (
				doc  string
				meta *chain.Metadata
				err  error
			)
			if fromChain {
				meta, err = c.fetchMetadata(ctx, id, noCache)
				if err == nil {
					doc, err = meta.SVG()
				}
			} else {
				if svgDir == "" {
					svgDir = c.Config.SVGDir
				}
				doc, err = pipeline.DirSource{Dir: svgDir}.Document(ctx, id)
			}
			if err != nil {
				return err
			}

			layers, class, err := c.newRenderer("").Inspect(doc)
			if err != nil {
				return err
			}
			printInspection(id, layers, class, meta)
			return nil
		},
	}

	cmd.Flags().StringVar(&svgDir, "svg-dir", "", "directory of <id>.svg files (default svg_dir)")
	cmd.Flags().BoolVar(&fromChain, "chain", false, "read the token from the chain instead of svg-dir")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "always call the chain")

	return cmd
}

func (c *CLI) fetchMetadata(ctx context.Context, id string, noCache bool) (*chain.Metadata, error) {
	client, closeClient, err := c.newChainClient(ctx, noCache)
	if err != nil {
		return nil, err
	}
	defer closeClient()

	sp := newSpinnerWithContext(ctx, "Fetching token "+id)
	sp.Start()
	meta, err := client.Metadata(ctx, id)
	if err != nil {
		sp.StopWithError("Fetch failed")
		return nil, err
	}
	sp.Stop()
	return meta, nil
}

func printInspection(id string, layers [][]byte, class artwork.Classification, meta *chain.Metadata) {
	top := class.TopLayer()
	kind := "procedural"
	if artwork.IsUnique(class) {
		kind = "1-of-1"
	}

	printKeyValue("token", id)
	printKeyValue("kind", kind)
	printKeyValue("layers", fmt.Sprint(len(layers)))
	printKeyValue("top layer", fmt.Sprintf("%s %dx%d", top.Format, top.Width, top.Height))
	for i, l := range layers {
		printDetail("layer %d  %s  %d bytes", i, cache.Hash(l)[:12], len(l))
	}

	if meta == nil {
		return
	}
	for _, f := range meta.WithoutImages().Fields {
		var s string
		if err := json.Unmarshal(f.Value, &s); err != nil {
			s = string(f.Value)
		}
		printKeyValue(f.Key, s)
	}
}
