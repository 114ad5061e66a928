package main

import (
	"context"
	"fmt"

	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"okp4/github-issues/pkg/github"
	"okp4/github-issues/pkg/output"
	"okp4/github-issues/pkg/query"
)

type labelLister interface {
	Labels(ctx context.Context) ([]string, error)
}

func newMilestoneCommand(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "milestone NAME",
		Short: "Print the open issues in a milestone",
		Args:  cobra.ExactArgs(1),
		RunE: app.run(func(cmd *cobra.Command, args []string) error {
			return runMilestone(app.ctx, app.log, app.repo, app.printer, args[0])
		}),
	}
}

func newMilestonesCommand(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "milestones",
		Short: "Print all milestones",
		Args:  cobra.NoArgs,
		RunE: app.run(func(cmd *cobra.Command, args []string) error {
			return runMilestones(app.ctx, app.repo, app.printer)
		}),
	}
}

func newLabelsCommand(app *AppContext) *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "labels [LABEL...]",
		Short: "Print the issues carrying all of the given labels",
		RunE: app.run(func(cmd *cobra.Command, args []string) error {
			issueState, err := github.ParseIssueState(state)
			if err != nil {
				return err
			}

			return runLabels(app.ctx, app.log, app.repo, app.printer, args, issueState)
		}),
	}

	cmd.Flags().StringVar(&state, "state", "open", "issue state (open or closed)")

	return cmd
}

func newListLabelsCommand(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list-labels",
		Short: "Print all labels defined in the repository",
		Args:  cobra.NoArgs,
		RunE: app.run(func(cmd *cobra.Command, args []string) error {
			return runListLabels(app.ctx, app.repo, app.printer)
		}),
	}
}

func runMilestone(ctx context.Context, log logrus.FieldLogger, repo query.Repository, printer output.Printer, name string) error {
	milestone, found, err := query.MilestoneByName(ctx, repo, name)
	if err != nil {
		return fmt.Errorf("failed to list milestones: %w", err)
	}

	if !found {
		return fmt.Errorf("milestone %q not found", name)
	}

	log.WithField("milestone", milestone.Number).Debug("Resolved milestone.")

	issues, err := query.OpenIssuesInMilestone(ctx, repo, milestone)
	if err != nil {
		return fmt.Errorf("failed to list issues: %w", err)
	}

	return printer.PrintIssues(issues)
}

func runMilestones(ctx context.Context, repo query.Repository, printer output.Printer) error {
	milestones, err := repo.Milestones(ctx)
	if err != nil {
		return fmt.Errorf("failed to list milestones: %w", err)
	}

	return printer.PrintMilestones(milestones)
}

func runLabels(ctx context.Context, log logrus.FieldLogger, repo query.Repository, printer output.Printer, labels []string, state githubv4.IssueState) error {
	log.WithFields(logrus.Fields{
		"labels": labels,
		"state":  state,
	}).Debug("Listing issues.")

	issues, err := query.IssuesByLabels(ctx, repo, labels, state)
	if err != nil {
		return fmt.Errorf("failed to list issues: %w", err)
	}

	return printer.PrintIssues(issues)
}

func runListLabels(ctx context.Context, repo labelLister, printer output.Printer) error {
	labels, err := repo.Labels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list labels: %w", err)
	}

	return printer.PrintLabels(labels)
}
