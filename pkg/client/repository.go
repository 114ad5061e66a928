package client

import (
	"context"
	"errors"

	"github.com/shurcooL/githubv4"

	"okp4/github-issues/pkg/github"
	"okp4/github-issues/pkg/query"
)

// RepositoryHandle gives access to the issue tracker of one repository.
// It implements query.Repository and walks all result pages.
type RepositoryHandle struct {
	client          *Client
	repo            github.Repository
	maxIssues       int
	milestoneStates []githubv4.MilestoneState
}

var _ query.Repository = &RepositoryHandle{}

// Repository returns a handle for the given repository. If maxIssues is
// greater than 0, issue listings stop after that many issues. Only open
// milestones are listed, unless IncludeClosedMilestones is called.
func (c *Client) Repository(repo github.Repository, maxIssues int) *RepositoryHandle {
	return &RepositoryHandle{
		client:          c,
		repo:            repo,
		maxIssues:       maxIssues,
		milestoneStates: []githubv4.MilestoneState{githubv4.MilestoneStateOpen},
	}
}

func (h *RepositoryHandle) IncludeClosedMilestones() *RepositoryHandle {
	h.milestoneStates = []githubv4.MilestoneState{
		githubv4.MilestoneStateOpen,
		githubv4.MilestoneStateClosed,
	}

	return h
}

func (h *RepositoryHandle) Milestones(ctx context.Context) ([]github.Milestone, error) {
	milestones := []github.Milestone{}
	cursor := ""

	for {
		page, next, err := h.client.ListMilestones(ctx, h.repo.Owner, h.repo.Name, h.milestoneStates, cursor)
		if err != nil {
			return nil, err
		}

		milestones = append(milestones, page...)

		if next == "" {
			return milestones, nil
		}

		cursor = next
	}
}

// Issues lists all issues matching the filter. GitHub returns issues
// carrying any of the labels, so issues missing one of them are dropped.
func (h *RepositoryHandle) Issues(ctx context.Context, filter query.IssueFilter) ([]github.Issue, error) {
	q := IssueQuery{
		States: filter.States,
		Labels: filter.Labels,
	}

	if filter.Milestone != nil {
		if filter.Milestone.Number <= 0 {
			return nil, errors.New("milestone has no number, it must be resolved first")
		}

		q.Milestone = filter.Milestone.Number
	}

	issues := []github.Issue{}
	cursor := ""

	for {
		q.First = PageSize
		if h.maxIssues > 0 && h.maxIssues-len(issues) < PageSize {
			q.First = h.maxIssues - len(issues)
		}

		page, next, err := h.client.ListIssues(ctx, h.repo.Owner, h.repo.Name, q, cursor)
		if err != nil {
			return nil, err
		}

		for _, issue := range page {
			if hasAllLabels(&issue, filter.Labels) {
				issues = append(issues, issue)
			}
		}

		// using ">=" here makes it so that we stop cleanly when the list
		// of issues is exactly the right amount
		if h.maxIssues > 0 && len(issues) >= h.maxIssues {
			return issues[:h.maxIssues], nil
		}

		if next == "" {
			return issues, nil
		}

		cursor = next
	}
}

func hasAllLabels(issue *github.Issue, labels []string) bool {
	for _, label := range labels {
		if !issue.HasLabel(label) {
			return false
		}
	}

	return true
}

func (h *RepositoryHandle) Labels(ctx context.Context) ([]string, error) {
	return h.client.RepositoryLabels(ctx, h.repo.Owner, h.repo.Name)
}
