package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okp4/github-issues/pkg/github"
	"okp4/github-issues/pkg/query"
)

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type fakeGraphQL struct {
	requests []graphqlRequest
	headers  []http.Header
	respond  func(req graphqlRequest) (int, string)
}

func newTestClient(t *testing.T, respond func(req graphqlRequest) (int, string)) (*Client, *fakeGraphQL) {
	t.Helper()

	fake := &fakeGraphQL{respond: respond}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		fake.requests = append(fake.requests, req)
		fake.headers = append(fake.headers, r.Header.Clone())

		status, body := fake.respond(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)

	client, err := NewClient(context.Background(), log, "secret-token", server.URL)
	require.NoError(t, err)

	return client, fake
}

const milestonesPage1 = `{"data":{"rateLimit":{"cost":1,"remaining":4999},"repository":{"milestones":{
	"nodes":[
		{"number":1,"title":"v1","state":"CLOSED","url":"https://github.com/o/r/milestone/1","createdAt":"2023-01-01T00:00:00Z","updatedAt":"2023-01-02T00:00:00Z","closedAt":"2023-02-01T00:00:00Z","dueOn":null,"openIssues":{"totalCount":0},"closedIssues":{"totalCount":12}}
	],
	"pageInfo":{"endCursor":"c1","hasNextPage":true}}}}}`

const milestonesPage2 = `{"data":{"rateLimit":{"cost":1,"remaining":4998},"repository":{"milestones":{
	"nodes":[
		{"number":2,"title":"v2","state":"OPEN","url":"https://github.com/o/r/milestone/2","createdAt":"2023-03-01T00:00:00Z","updatedAt":"2023-03-02T00:00:00Z","closedAt":null,"dueOn":"2023-06-01T00:00:00Z","openIssues":{"totalCount":3},"closedIssues":{"totalCount":1}}
	],
	"pageInfo":{"endCursor":"c2","hasNextPage":false}}}}}`

func TestNewClient(t *testing.T) {
	_, err := NewClient(context.Background(), logrus.New(), "", "")
	assert.Error(t, err)

	client, err := NewClient(context.Background(), logrus.New(), "token", "")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestListMilestones(t *testing.T) {
	client, fake := newTestClient(t, func(req graphqlRequest) (int, string) {
		return http.StatusOK, milestonesPage1
	})

	milestones, cursor, err := client.ListMilestones(context.Background(), "o", "r", nil, "")
	require.NoError(t, err)

	assert.Equal(t, "c1", cursor)
	require.Len(t, milestones, 1)

	m := milestones[0]
	assert.Equal(t, 1, m.Number)
	assert.Equal(t, "v1", m.Title)
	assert.Equal(t, githubv4.MilestoneStateClosed, m.State)
	assert.Equal(t, "https://github.com/o/r/milestone/1", m.URL)
	assert.Equal(t, 12, m.ClosedIssues)
	assert.NotNil(t, m.ClosedAt)
	assert.Nil(t, m.DueOn)
	assert.False(t, m.FetchedAt.IsZero())

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Contains(t, req.Query, "milestones(states: $states")
	assert.Equal(t, "o", req.Variables["owner"])
	assert.Equal(t, "r", req.Variables["name"])
	assert.Equal(t, []interface{}{"OPEN", "CLOSED"}, req.Variables["states"])
	assert.Nil(t, req.Variables["cursor"])

	assert.Equal(t, "Bearer secret-token", fake.headers[0].Get("Authorization"))

	assert.Equal(t, map[string]int{"o/r": 1}, client.GetRequestCounts())
	assert.Equal(t, map[string]int{"o/r": 1}, client.GetTotalCosts())
	assert.Equal(t, 4999, client.GetRemainingPoints())
}

func TestRepositoryHandleMilestones(t *testing.T) {
	client, fake := newTestClient(t, func(req graphqlRequest) (int, string) {
		if req.Variables["cursor"] == "c1" {
			return http.StatusOK, milestonesPage2
		}

		return http.StatusOK, milestonesPage1
	})

	handle := client.Repository(github.Repository{Owner: "o", Name: "r"}, 0)

	milestones, err := handle.Milestones(context.Background())
	require.NoError(t, err)

	require.Len(t, milestones, 2)
	assert.Equal(t, "v1", milestones[0].Title)
	assert.Equal(t, "v2", milestones[1].Title)
	assert.Equal(t, 3, milestones[1].OpenIssues)
	assert.NotNil(t, milestones[1].DueOn)

	require.Len(t, fake.requests, 2)
	for _, req := range fake.requests {
		assert.Equal(t, []interface{}{"OPEN"}, req.Variables["states"])
	}

	assert.Equal(t, 2, client.GetRequestCounts()["o/r"])
	assert.Equal(t, 4998, client.GetRemainingPoints())
}

func TestRepositoryHandleIncludeClosedMilestones(t *testing.T) {
	client, fake := newTestClient(t, func(req graphqlRequest) (int, string) {
		return http.StatusOK, milestonesPage2
	})

	handle := client.Repository(github.Repository{Owner: "o", Name: "r"}, 0).IncludeClosedMilestones()

	_, err := handle.Milestones(context.Background())
	require.NoError(t, err)

	require.Len(t, fake.requests, 1)
	assert.Equal(t, []interface{}{"OPEN", "CLOSED"}, fake.requests[0].Variables["states"])
}

func TestRepositoryHandleMilestonesFindsByName(t *testing.T) {
	client, _ := newTestClient(t, func(req graphqlRequest) (int, string) {
		if req.Variables["cursor"] == "c1" {
			return http.StatusOK, milestonesPage2
		}

		return http.StatusOK, milestonesPage1
	})

	handle := client.Repository(github.Repository{Owner: "o", Name: "r"}, 0)

	milestone, found, err := query.MilestoneByName(context.Background(), handle, "v2")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, milestone.Number)

	_, found, err = query.MilestoneByName(context.Background(), handle, "v3")
	require.NoError(t, err)
	assert.False(t, found)
}

func issuesPage(cursor string, hasNext bool, numbers ...int) string {
	return labelledIssuesPage(cursor, hasNext, []string{"kind/bug"}, numbers...)
}

func labelledIssuesPage(cursor string, hasNext bool, labels []string, numbers ...int) string {
	labelNodes := []map[string]string{}
	for _, label := range labels {
		labelNodes = append(labelNodes, map[string]string{"name": label})
	}

	nodes := []string{}
	for _, n := range numbers {
		b, _ := json.Marshal(map[string]interface{}{
			"number":    n,
			"title":     "Issue",
			"url":       "https://github.com/o/r/issues/1",
			"state":     "OPEN",
			"createdAt": "2023-01-01T00:00:00Z",
			"updatedAt": "2023-01-02T00:00:00Z",
			"author":    map[string]string{"login": "octocat"},
			"milestone": map[string]string{"title": "v2"},
			"labels": map[string]interface{}{
				"nodes": labelNodes,
			},
		})
		nodes = append(nodes, string(b))
	}

	pageInfo, _ := json.Marshal(map[string]interface{}{"endCursor": cursor, "hasNextPage": hasNext})

	return `{"nodes":[` + strings.Join(nodes, ",") + `],"pageInfo":` + string(pageInfo) + `}`
}

func TestListIssues(t *testing.T) {
	t.Run("should list repository issues by labels", func(t *testing.T) {
		client, fake := newTestClient(t, func(req graphqlRequest) (int, string) {
			return http.StatusOK, `{"data":{"rateLimit":{"cost":2,"remaining":100},"repository":{"issues":` + issuesPage("", false, 7) + `}}}`
		})

		issues, cursor, err := client.ListIssues(context.Background(), "o", "r", IssueQuery{
			States: []githubv4.IssueState{githubv4.IssueStateClosed},
			Labels: []string{"kind/bug", "priority/high"},
		}, "")
		require.NoError(t, err)

		assert.Empty(t, cursor)
		require.Len(t, issues, 1)
		assert.Equal(t, 7, issues[0].Number)
		assert.Equal(t, "octocat", issues[0].Author)
		assert.Equal(t, "v2", issues[0].Milestone)
		assert.Equal(t, []string{"kind/bug"}, issues[0].Labels)
		assert.Equal(t, githubv4.IssueStateOpen, issues[0].State)

		req := fake.requests[0]
		assert.Contains(t, req.Query, "issues(states: $states, labels: $labels")
		assert.NotContains(t, req.Query, "milestone(number: $milestone)")
		assert.Equal(t, []interface{}{"CLOSED"}, req.Variables["states"])
		assert.Equal(t, []interface{}{"kind/bug", "priority/high"}, req.Variables["labels"])
		assert.Equal(t, float64(PageSize), req.Variables["first"])
		assert.NotContains(t, req.Variables, "milestone")

		assert.Equal(t, 2, client.GetTotalCosts()["o/r"])
	})

	t.Run("should send empty labels as null", func(t *testing.T) {
		client, fake := newTestClient(t, func(req graphqlRequest) (int, string) {
			return http.StatusOK, `{"data":{"rateLimit":{"cost":1,"remaining":100},"repository":{"issues":` + issuesPage("", false) + `}}}`
		})

		issues, _, err := client.ListIssues(context.Background(), "o", "r", IssueQuery{Labels: []string{}}, "")
		require.NoError(t, err)
		assert.Empty(t, issues)

		req := fake.requests[0]
		assert.Contains(t, req.Variables, "labels")
		assert.Nil(t, req.Variables["labels"])
		assert.Equal(t, []interface{}{"OPEN", "CLOSED"}, req.Variables["states"])
	})

	t.Run("should list milestone issues", func(t *testing.T) {
		client, fake := newTestClient(t, func(req graphqlRequest) (int, string) {
			return http.StatusOK, `{"data":{"rateLimit":{"cost":1,"remaining":100},"repository":{"milestone":{"issues":` + issuesPage("", false, 1, 2) + `}}}}`
		})

		issues, _, err := client.ListIssues(context.Background(), "o", "r", IssueQuery{
			Milestone: 2,
			States:    []githubv4.IssueState{githubv4.IssueStateOpen},
		}, "")
		require.NoError(t, err)
		assert.Len(t, issues, 2)

		req := fake.requests[0]
		assert.Contains(t, req.Query, "milestone(number: $milestone)")
		assert.Equal(t, float64(2), req.Variables["milestone"])
		assert.Equal(t, []interface{}{"OPEN"}, req.Variables["states"])
	})

	t.Run("should return no issues for unknown milestone", func(t *testing.T) {
		client, _ := newTestClient(t, func(req graphqlRequest) (int, string) {
			return http.StatusOK, `{"data":{"rateLimit":{"cost":1,"remaining":100},"repository":{"milestone":null}}}`
		})

		issues, cursor, err := client.ListIssues(context.Background(), "o", "r", IssueQuery{Milestone: 99}, "")
		require.NoError(t, err)
		assert.Empty(t, issues)
		assert.Empty(t, cursor)
	})

	t.Run("should pass through API errors", func(t *testing.T) {
		client, _ := newTestClient(t, func(req graphqlRequest) (int, string) {
			return http.StatusUnauthorized, `{"message":"Bad credentials"}`
		})

		_, _, err := client.ListIssues(context.Background(), "o", "r", IssueQuery{}, "")
		assert.ErrorContains(t, err, "401")
	})

	t.Run("should keep remaining points after a failed request", func(t *testing.T) {
		failing := false
		client, _ := newTestClient(t, func(req graphqlRequest) (int, string) {
			if failing {
				return http.StatusBadGateway, `{"message":"Server Error"}`
			}

			return http.StatusOK, `{"data":{"rateLimit":{"cost":1,"remaining":4321},"repository":{"issues":` + issuesPage("", false, 1) + `}}}`
		})

		_, _, err := client.ListIssues(context.Background(), "o", "r", IssueQuery{}, "")
		require.NoError(t, err)

		failing = true
		_, _, err = client.ListIssues(context.Background(), "o", "r", IssueQuery{}, "")
		require.Error(t, err)

		assert.Equal(t, 4321, client.GetRemainingPoints())
		assert.Equal(t, 2, client.GetRequestCounts()["o/r"])
		assert.Equal(t, 1, client.GetTotalCosts()["o/r"])
	})

	t.Run("should request the given page size", func(t *testing.T) {
		client, fake := newTestClient(t, func(req graphqlRequest) (int, string) {
			return http.StatusOK, `{"data":{"rateLimit":{"cost":1,"remaining":100},"repository":{"issues":` + issuesPage("", false) + `}}}`
		})

		_, _, err := client.ListIssues(context.Background(), "o", "r", IssueQuery{First: 5}, "")
		require.NoError(t, err)

		assert.Contains(t, fake.requests[0].Query, "first: $first")
		assert.Equal(t, float64(5), fake.requests[0].Variables["first"])
	})
}

func TestRepositoryHandleIssues(t *testing.T) {
	respond := func(req graphqlRequest) (int, string) {
		if req.Variables["cursor"] == "p2" {
			return http.StatusOK, `{"data":{"rateLimit":{"cost":1,"remaining":100},"repository":{"milestone":{"issues":` + issuesPage("", false, 3, 4) + `}}}}`
		}

		return http.StatusOK, `{"data":{"rateLimit":{"cost":1,"remaining":100},"repository":{"milestone":{"issues":` + issuesPage("p2", true, 1, 2) + `}}}}`
	}

	t.Run("should walk all pages", func(t *testing.T) {
		client, fake := newTestClient(t, respond)
		handle := client.Repository(github.Repository{Owner: "o", Name: "r"}, 0)

		issues, err := query.OpenIssuesInMilestone(context.Background(), handle, github.Milestone{Number: 2, Title: "v2"})
		require.NoError(t, err)

		numbers := []int{}
		for _, issue := range issues {
			numbers = append(numbers, issue.Number)
		}

		assert.Equal(t, []int{1, 2, 3, 4}, numbers)
		require.Len(t, fake.requests, 2)
		assert.Equal(t, float64(2), fake.requests[1].Variables["milestone"])
		assert.Equal(t, []interface{}{"OPEN"}, fake.requests[1].Variables["states"])
	})

	t.Run("should stop at the issue limit", func(t *testing.T) {
		client, fake := newTestClient(t, respond)
		handle := client.Repository(github.Repository{Owner: "o", Name: "r"}, 2)

		issues, err := query.OpenIssuesInMilestone(context.Background(), handle, github.Milestone{Number: 2})
		require.NoError(t, err)

		assert.Len(t, issues, 2)
		require.Len(t, fake.requests, 1)
		assert.Equal(t, float64(2), fake.requests[0].Variables["first"])
	})

	t.Run("should cut the last page to the issue limit", func(t *testing.T) {
		client, fake := newTestClient(t, respond)
		handle := client.Repository(github.Repository{Owner: "o", Name: "r"}, 3)

		issues, err := query.OpenIssuesInMilestone(context.Background(), handle, github.Milestone{Number: 2})
		require.NoError(t, err)

		assert.Len(t, issues, 3)
		require.Len(t, fake.requests, 2)
		assert.Equal(t, float64(3), fake.requests[0].Variables["first"])
		assert.Equal(t, float64(1), fake.requests[1].Variables["first"])
	})

	t.Run("should request full pages without a limit", func(t *testing.T) {
		client, fake := newTestClient(t, respond)
		handle := client.Repository(github.Repository{Owner: "o", Name: "r"}, 0)

		_, err := query.OpenIssuesInMilestone(context.Background(), handle, github.Milestone{Number: 2})
		require.NoError(t, err)

		assert.Equal(t, float64(PageSize), fake.requests[0].Variables["first"])
	})

	t.Run("should reject an unresolved milestone", func(t *testing.T) {
		client, fake := newTestClient(t, respond)
		handle := client.Repository(github.Repository{Owner: "o", Name: "r"}, 0)

		issues, err := query.OpenIssuesInMilestone(context.Background(), handle, github.Milestone{Title: "v2"})
		assert.Error(t, err)
		assert.Nil(t, issues)
		assert.Empty(t, fake.requests)
	})
}

func TestRepositoryHandleIssuesRequiresAllLabels(t *testing.T) {
	client, _ := newTestClient(t, func(req graphqlRequest) (int, string) {
		return http.StatusOK, `{"data":{"rateLimit":{"cost":1,"remaining":100},"repository":{"issues":{"nodes":[
			{"number":1,"title":"Only bug","url":"","state":"OPEN","createdAt":"2023-01-01T00:00:00Z","updatedAt":"2023-01-01T00:00:00Z","author":null,"milestone":null,"labels":{"nodes":[{"name":"kind/bug"}]}},
			{"number":2,"title":"Bug and priority","url":"","state":"OPEN","createdAt":"2023-01-01T00:00:00Z","updatedAt":"2023-01-01T00:00:00Z","author":null,"milestone":null,"labels":{"nodes":[{"name":"Kind/Bug"},{"name":"priority/high"}]}}
		],"pageInfo":{"endCursor":"","hasNextPage":false}}}}}`
	})

	handle := client.Repository(github.Repository{Owner: "o", Name: "r"}, 0)

	issues, err := query.IssuesByLabels(context.Background(), handle, []string{"kind/bug", "priority/high"}, githubv4.IssueStateOpen)
	require.NoError(t, err)

	require.Len(t, issues, 1)
	assert.Equal(t, 2, issues[0].Number)
}

func TestRepositoryLabels(t *testing.T) {
	client, fake := newTestClient(t, func(req graphqlRequest) (int, string) {
		if req.Variables["cursor"] == "l1" {
			return http.StatusOK, `{"data":{"rateLimit":{"cost":1,"remaining":10},"repository":{"labels":{"nodes":[{"name":"kind/feature"}],"pageInfo":{"endCursor":"l2","hasNextPage":false}}}}}`
		}

		return http.StatusOK, `{"data":{"rateLimit":{"cost":1,"remaining":11},"repository":{"labels":{"nodes":[{"name":"kind/bug"}],"pageInfo":{"endCursor":"l1","hasNextPage":true}}}}}`
	})

	handle := client.Repository(github.Repository{Owner: "o", Name: "r"}, 0)

	labels, err := handle.Labels(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"kind/bug", "kind/feature"}, labels)
	assert.Len(t, fake.requests, 2)
	assert.Equal(t, 10, client.GetRemainingPoints())
}
