package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	doctools "github.com/alnah/go-doctools"
	"github.com/alnah/go-doctools/internal/config"
	"github.com/alnah/go-doctools/internal/fileutil"
	"github.com/alnah/go-doctools/internal/hints"
	doclog "github.com/alnah/go-doctools/internal/log"
)

// newRootCmd builds the command tree around env.
func newRootCmd(env *Environment) *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "doctools",
		Short: "Document tools for writing agents",
		Long: `doctools exposes four document tools to an agent host over MCP and
runs the same tools from the command line:

  download_file            fetch a URL to disk, reporting image resolution
  markdown_table_to_image  render a Markdown table to PNG or JPEG
  inspect_slide            render an HTML slide to a JPEG preview
  inspect_manuscript       read one page of a Markdown manuscript with lint warnings`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setup(env, &flags)
		},
	}
	cmd.SetIn(env.Stdin)
	cmd.SetOut(env.Stdout)
	cmd.SetErr(env.Stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})

	addRootFlags(cmd.PersistentFlags(), &flags)

	cmd.AddCommand(
		newServeCmd(env),
		newDownloadCmd(env),
		newTableCmd(env),
		newSlideCmd(env),
		newManuscriptCmd(env),
		newDoctorCmd(env),
		newVersionCmd(env),
	)
	return cmd
}

// setup resolves the effective configuration and logger.
// Precedence: flags > env vars > config file > defaults.
func setup(env *Environment, flags *rootFlags) error {
	if flags.verbose && flags.quiet {
		return fmt.Errorf("%w: --verbose and --quiet are mutually exclusive", ErrUsage)
	}

	warnUnknownEnvVars(env.Stderr)
	envCfg := loadEnvConfig()

	name := flags.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	cfg, err := loadConfig(name)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)

	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
	switch {
	case flags.verbose:
		cfg.Log.Level = "debug"
	case flags.quiet:
		cfg.Log.Level = "error"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	level, err := doclog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidValue, err)
	}

	env.Config = cfg
	env.Logger = doclog.New(env.Stderr, level, cfg.Log.Format)
	return nil
}

// loadConfig loads the named config, or the defaults when name is empty.
func loadConfig(name string) (*config.Config, error) {
	if name == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(name)
	if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
		return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newToolkit builds the tools from the effective configuration.
func newToolkit(env *Environment) (*doctools.Toolkit, error) {
	return doctools.NewToolkitFromConfig(env.Config, env.Logger)
}

// closeToolkit shuts down browsers and logs failures.
func closeToolkit(env *Environment, tk *doctools.Toolkit) {
	if err := tk.Close(); err != nil {
		env.Logger.Warn("closing browsers", "error", err)
	}
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		return nil
	}
}
