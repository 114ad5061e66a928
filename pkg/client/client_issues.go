package client

import (
	"context"
	"time"

	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"

	"okp4/github-issues/pkg/github"
)

type graphqlIssue struct {
	Number    int
	Title     string
	URL       string
	State     githubv4.IssueState
	CreatedAt time.Time
	UpdatedAt time.Time

	Author *struct {
		Login string
	}

	Milestone *struct {
		Title string
	}

	Labels struct {
		Nodes []struct {
			Name string
		}
	} `graphql:"labels(first: 50)"`
}

func convertIssue(api graphqlIssue, fetchedAt time.Time) github.Issue {
	issue := github.Issue{
		Number:    api.Number,
		Title:     api.Title,
		URL:       api.URL,
		State:     api.State,
		CreatedAt: api.CreatedAt,
		UpdatedAt: api.UpdatedAt,
		FetchedAt: fetchedAt,
		Labels:    []string{},
	}

	if api.Author != nil {
		issue.Author = api.Author.Login
	}

	if api.Milestone != nil {
		issue.Milestone = api.Milestone.Title
	}

	for _, label := range api.Labels.Nodes {
		issue.Labels = append(issue.Labels, label.Name)
	}

	return issue
}

type issueConnection struct {
	Nodes    []graphqlIssue
	PageInfo pageInfo
}

type listIssuesQuery struct {
	RateLimit  rateLimit
	Repository struct {
		Issues issueConnection `graphql:"issues(states: $states, labels: $labels, first: $first, orderBy: {field: CREATED_AT, direction: DESC}, after: $cursor)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

type listMilestoneIssuesQuery struct {
	RateLimit  rateLimit
	Repository struct {
		Milestone *struct {
			Issues issueConnection `graphql:"issues(states: $states, labels: $labels, first: $first, orderBy: {field: CREATED_AT, direction: DESC}, after: $cursor)"`
		} `graphql:"milestone(number: $milestone)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// IssueQuery selects the issues returned by ListIssues. Milestone is a
// milestone number, 0 means any milestone. A nil States list means open
// and closed issues. First is the page size, 0 means PageSize.
type IssueQuery struct {
	Milestone int
	States    []githubv4.IssueState
	Labels    []string
	First     int
}

// ListIssues fetches a single page of issues. The returned cursor is empty
// if there are no more pages. An unknown milestone results in an empty list.
func (c *Client) ListIssues(ctx context.Context, owner string, name string, query IssueQuery, cursor string) ([]github.Issue, string, error) {
	states := query.States
	if states == nil {
		states = []githubv4.IssueState{
			githubv4.IssueStateOpen,
			githubv4.IssueStateClosed,
		}
	}

	first := query.First
	if first <= 0 || first > PageSize {
		first = PageSize
	}

	variables := map[string]interface{}{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(name),
		"states": states,
		"labels": labelsVariable(query.Labels),
		"first":  githubv4.Int(first),
		"cursor": cursorVariable(cursor),
	}

	var (
		connection *issueConnection
		cost       int
		err        error
	)

	if query.Milestone > 0 {
		variables["milestone"] = githubv4.Int(query.Milestone)

		var q listMilestoneIssuesQuery

		err = c.client.Query(ctx, &q, variables)
		c.countRequest(owner, name, q.RateLimit)
		cost = q.RateLimit.Cost

		if q.Repository.Milestone != nil {
			connection = &q.Repository.Milestone.Issues
		}
	} else {
		var q listIssuesQuery

		err = c.client.Query(ctx, &q, variables)
		c.countRequest(owner, name, q.RateLimit)
		cost = q.RateLimit.Cost
		connection = &q.Repository.Issues
	}

	c.log.WithFields(logrus.Fields{
		"owner":     owner,
		"name":      name,
		"milestone": query.Milestone,
		"labels":    query.Labels,
		"cursor":    cursor,
		"cost":      cost,
	}).Debugf("ListIssues()")

	if err != nil {
		return nil, "", err
	}

	issues := []github.Issue{}
	if connection == nil {
		return issues, "", nil
	}

	now := time.Now()
	for _, node := range connection.Nodes {
		issues = append(issues, convertIssue(node, now))
	}

	return issues, connection.PageInfo.next(), nil
}
