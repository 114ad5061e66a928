package client

import (
	"context"
	"time"

	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"

	"okp4/github-issues/pkg/github"
)

type graphqlMilestone struct {
	Number    int
	Title     string
	State     githubv4.MilestoneState
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
	ClosedAt  *time.Time
	DueOn     *time.Time

	OpenIssues struct {
		TotalCount int
	} `graphql:"openIssues: issues(states: OPEN)"`

	ClosedIssues struct {
		TotalCount int
	} `graphql:"closedIssues: issues(states: CLOSED)"`
}

func convertMilestone(api graphqlMilestone, fetchedAt time.Time) github.Milestone {
	return github.Milestone{
		Number:       api.Number,
		Title:        api.Title,
		State:        api.State,
		URL:          api.URL,
		CreatedAt:    api.CreatedAt,
		UpdatedAt:    api.UpdatedAt,
		ClosedAt:     api.ClosedAt,
		DueOn:        api.DueOn,
		FetchedAt:    fetchedAt,
		OpenIssues:   api.OpenIssues.TotalCount,
		ClosedIssues: api.ClosedIssues.TotalCount,
	}
}

// milestones are sorted the same way the REST API sorts them by default
type listMilestonesQuery struct {
	RateLimit  rateLimit
	Repository struct {
		Milestones struct {
			Nodes    []graphqlMilestone
			PageInfo pageInfo
		} `graphql:"milestones(states: $states, first: 100, orderBy: {field: DUE_DATE, direction: ASC}, after: $cursor)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// ListMilestones fetches a single page of milestones. A nil states list
// means open and closed milestones. The returned cursor is empty if there
// are no more pages.
func (c *Client) ListMilestones(ctx context.Context, owner string, name string, states []githubv4.MilestoneState, cursor string) ([]github.Milestone, string, error) {
	if states == nil {
		states = []githubv4.MilestoneState{
			githubv4.MilestoneStateOpen,
			githubv4.MilestoneStateClosed,
		}
	}

	variables := map[string]interface{}{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(name),
		"states": states,
		"cursor": cursorVariable(cursor),
	}

	var q listMilestonesQuery

	err := c.client.Query(ctx, &q, variables)
	c.countRequest(owner, name, q.RateLimit)

	c.log.WithFields(logrus.Fields{
		"owner":  owner,
		"name":   name,
		"cursor": cursor,
		"cost":   q.RateLimit.Cost,
	}).Debugf("ListMilestones()")

	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	milestones := []github.Milestone{}
	for _, node := range q.Repository.Milestones.Nodes {
		milestones = append(milestones, convertMilestone(node, now))
	}

	return milestones, q.Repository.Milestones.PageInfo.next(), nil
}
