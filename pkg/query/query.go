// SPDX-FileCopyrightText: 2023 Christoph Mewes
// SPDX-License-Identifier: MIT

// Package query resolves milestones by name and lists filtered issues
// for a single repository. It never talks to GitHub directly; callers
// inject a Repository, usually the handle created by the client package.
package query

import (
	"context"

	"github.com/shurcooL/githubv4"

	"okp4/github-issues/pkg/github"
)

// IssueFilter narrows down the issues returned by a Repository. A nil
// Milestone means no milestone filter, empty States and Labels are
// forwarded as they are and interpreted by the tracker.
type IssueFilter struct {
	Milestone *github.Milestone
	States    []githubv4.IssueState
	Labels    []string
}

// Repository is the issue tracker of one repository.
type Repository interface {
	// Milestones returns all milestones in tracker-provided order.
	Milestones(ctx context.Context) ([]github.Milestone, error)
	Issues(ctx context.Context, filter IssueFilter) ([]github.Issue, error)
}

// MilestoneByName returns the first milestone whose title equals name
// exactly. found is false if there is no such milestone.
func MilestoneByName(ctx context.Context, repo Repository, name string) (milestone github.Milestone, found bool, err error) {
	milestones, err := repo.Milestones(ctx)
	if err != nil {
		return github.Milestone{}, false, err
	}

	for _, m := range milestones {
		if m.Title == name {
			return m, true, nil
		}
	}

	return github.Milestone{}, false, nil
}

// OpenIssuesInMilestone lists all open issues in the given, previously
// resolved milestone.
func OpenIssuesInMilestone(ctx context.Context, repo Repository, milestone github.Milestone) ([]github.Issue, error) {
	return repo.Issues(ctx, IssueFilter{
		Milestone: &milestone,
		States:    []githubv4.IssueState{githubv4.IssueStateOpen},
	})
}

// IssuesByLabels lists all issues in the given state which carry every
// one of the labels. The zero state means open issues.
func IssuesByLabels(ctx context.Context, repo Repository, labels []string, state githubv4.IssueState) ([]github.Issue, error) {
	if state == "" {
		state = githubv4.IssueStateOpen
	}

	return repo.Issues(ctx, IssueFilter{
		States: []githubv4.IssueState{state},
		Labels: labels,
	})
}
