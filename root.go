package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"okp4/github-issues/pkg/client"
	"okp4/github-issues/pkg/config"
	"okp4/github-issues/pkg/metrics"
	"okp4/github-issues/pkg/output"
)

type AppContext struct {
	ctx     context.Context
	log     logrus.FieldLogger
	config  *config.Config
	client  *client.Client
	repo    *client.RepositoryHandle
	printer output.Printer

	rootLog    *logrus.Logger
	configFile string
}

// flag name => config key
var configFlags = map[string]string{
	"repo":              "repo",
	"token":             "token",
	"endpoint":          "endpoint",
	"output":            "output",
	"limit":             "limit",
	"metrics-file":      "metrics_file",
	"debug":             "debug",
	"closed-milestones": "closed_milestones",
}

func newRootCommand(log *logrus.Logger) *cobra.Command {
	app := &AppContext{rootLog: log}

	rootCmd := &cobra.Command{
		Use:   "github-issues",
		Short: "Print GitHub issues by milestone or labels",
		Long: `github-issues queries a single GitHub repository and prints the
issues matching a milestone or a set of labels.

A GitHub token is read from GITHUB_TOKEN (or --token).

Example:
  github-issues --repo kubermatic/kubermatic milestone v2.22
  github-issues --repo kubermatic/kubermatic labels kind/bug priority/high --state closed`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configFile, "config", "", "config file (default is "+config.DefaultConfigName+".yaml)")
	flags.String("repo", "", "repository (owner/name format) to query")
	flags.String("token", "", "GitHub API token (default is $GITHUB_TOKEN)")
	flags.String("endpoint", "", "GraphQL endpoint of a GitHub Enterprise installation")
	flags.StringP("output", "o", output.FormatText, "output format (text or json)")
	flags.Int("limit", 0, "max number of issues to print (0 disables the limit)")
	flags.String("metrics-file", "", "write API usage metrics in Prometheus textfile format to this file")
	flags.Bool("debug", false, "enable more verbose logging")
	flags.Bool("closed-milestones", false, "also look up closed milestones")

	rootCmd.AddCommand(
		newMilestoneCommand(app),
		newMilestonesCommand(app),
		newLabelsCommand(app),
		newListLabelsCommand(app),
	)

	return rootCmd
}

// run wraps a command that talks to GitHub. Configuration is only loaded
// and validated here, so help and completion work without any.
func (app *AppContext) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := app.setup(cmd); err != nil {
			return err
		}

		if err := fn(cmd, args); err != nil {
			return err
		}

		return app.writeMetrics()
	}
}

func (app *AppContext) setup(cmd *cobra.Command) error {
	v, err := config.NewViper(app.configFile)
	if err != nil {
		return err
	}

	flags := cmd.Root().PersistentFlags()
	for flag, key := range configFlags {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return err
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	if cfg.Debug {
		app.rootLog.SetLevel(logrus.DebugLevel)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if used := v.ConfigFileUsed(); used != "" {
		app.rootLog.WithField("file", used).Debug("Using config file.")
	}

	printer, err := output.NewPrinter(cmd.OutOrStdout(), cfg.Output)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// setup API client
	c, err := client.NewClient(ctx, app.rootLog.WithField("component", "client"), cfg.Token, cfg.Endpoint)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	repo := c.Repository(cfg.Repo(), cfg.Limit)
	if cfg.ClosedMilestones {
		repo = repo.IncludeClosedMilestones()
	}

	app.ctx = ctx
	app.log = app.rootLog.WithField("repo", cfg.Repository)
	app.config = cfg
	app.client = c
	app.repo = repo
	app.printer = printer

	return nil
}

func (app *AppContext) writeMetrics() error {
	if app.config == nil || app.config.MetricsFile == "" {
		return nil
	}

	if err := metrics.WriteTextfile(app.config.MetricsFile, app.client); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}

	app.log.WithField("file", app.config.MetricsFile).Debug("Wrote API metrics.")

	return nil
}
