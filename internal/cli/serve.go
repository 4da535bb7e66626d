package cli

import (
	"github.com/spf13/cobra"

	"github.com/edgepunks/edgepunks/pkg/pipeline"
	"github.com/edgepunks/edgepunks/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		svgDir      string
		overrideDir string
		maxSize     int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Render tokens on demand over HTTP",
		Long: `Start an HTTP server that renders tokens from svg-dir on request.

  GET /tokens/{id}?size=480&transparent=true
  GET /healthz

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if svgDir == "" {
				svgDir = c.Config.SVGDir
			}
			if overrideDir == "" {
				overrideDir = c.Config.OverrideDir
			}
			srv := server.New(server.Config{
				Addr:     addr,
				Source:   pipeline.DirSource{Dir: svgDir},
				Renderer: c.newRenderer(overrideDir),
				Logger:   loggerFromContext(cmd.Context()),

				MaxImageSize: maxSize,
			})
			printInfo("Listening on %s", addr)
			printDetail("Serving %s", svgDir)
			return srv.Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&svgDir, "svg-dir", "", "directory of <id>.svg files (default svg_dir)")
	cmd.Flags().IntVar(&maxSize, "max-size", server.DefaultMaxImageSize, "largest size a client may request")
	cmd.Flags().StringVar(&overrideDir, "override-dir", "", "transparent assets for 1-of-1 tokens (default override_dir)")

	return cmd
}
