package cli

import (
	"github.com/spf13/cobra"

	"github.com/edgepunks/edgepunks/pkg/buildinfo"
	"github.com/edgepunks/edgepunks/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Before any subcommand runs, the root command loads the config file, applies
// --verbose and attaches the logger to the command context. With --verbose the
// render, chain and cache hooks also log at debug level.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "EdgePunks converts on-chain SVG artwork into raster images",
		Long: `EdgePunks pulls the on-chain SVG of every token, recovers the embedded
image layers and renders them as upscaled PNG or GIF files, with or without
the background.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cfg, warnings, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			for _, w := range warnings {
				c.Logger.Warn(w, "file", cfg.Path)
			}
			if cfg.Path != "" {
				c.Logger.Debug("loaded config", "file", cfg.Path)
			}
			if c.verbose {
				observability.LogHooks{Logger: c.Logger}.Install()
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $"+envConfig+" or ~/.config/"+appName+"/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.pullCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
