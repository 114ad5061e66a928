package client

import (
	"context"

	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
)

type repositoryLabelsQuery struct {
	RateLimit  rateLimit
	Repository struct {
		Labels struct {
			Nodes []struct {
				Name string
			}
			PageInfo pageInfo
		} `graphql:"labels(first: 100, after: $cursor)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// RepositoryLabels returns the names of all labels defined in the
// repository, walking all pages.
func (c *Client) RepositoryLabels(ctx context.Context, owner string, name string) ([]string, error) {
	variables := map[string]interface{}{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(name),
		"cursor": (*githubv4.String)(nil),
	}

	labels := []string{}

	for {
		var q repositoryLabelsQuery

		err := c.client.Query(ctx, &q, variables)
		c.countRequest(owner, name, q.RateLimit)

		c.log.WithFields(logrus.Fields{
			"owner":  owner,
			"name":   name,
			"cursor": variables["cursor"],
			"cost":   q.RateLimit.Cost,
		}).Debugf("RepositoryLabels()")

		if err != nil {
			return labels, err
		}

		for _, label := range q.Repository.Labels.Nodes {
			labels = append(labels, label.Name)
		}

		if !q.Repository.Labels.PageInfo.HasNextPage {
			break
		}

		variables["cursor"] = githubv4.NewString(q.Repository.Labels.PageInfo.EndCursor)
	}

	return labels, nil
}
