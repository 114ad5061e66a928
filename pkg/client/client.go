// SPDX-FileCopyrightText: 2023 Christoph Mewes
// SPDX-License-Identifier: MIT

package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// PageSize is the number of nodes requested per GraphQL query.
const PageSize = 100

type rateLimit struct {
	Cost      int
	Remaining int
}

type pageInfo struct {
	EndCursor   githubv4.String
	HasNextPage bool
}

func (p pageInfo) next() string {
	if p.HasNextPage {
		return string(p.EndCursor)
	}

	return ""
}

type Client struct {
	client          *githubv4.Client
	log             logrus.FieldLogger
	requests        map[string]int
	remainingPoints int
	totalCosts      map[string]int
}

// NewClient creates a client for the GitHub GraphQL API. If endpoint is
// empty, api.github.com is used, otherwise endpoint must be the full URL
// of a GitHub Enterprise GraphQL API.
func NewClient(ctx context.Context, log logrus.FieldLogger, token string, endpoint string) (*Client, error) {
	if token == "" {
		return nil, errors.New("token cannot be empty")
	}

	src := oauth2.StaticTokenSource(
		&oauth2.Token{
			AccessToken: token,
		},
	)
	httpClient := oauth2.NewClient(ctx, src)

	var client *githubv4.Client
	if endpoint == "" {
		client = githubv4.NewClient(httpClient)
	} else {
		client = githubv4.NewEnterpriseClient(endpoint, httpClient)
	}

	return &Client{
		client:          client,
		log:             log,
		requests:        map[string]int{},
		remainingPoints: 0,
		totalCosts:      map[string]int{},
	}, nil
}

func (c *Client) GetRemainingPoints() int {
	return c.remainingPoints
}

func (c *Client) GetRequestCounts() map[string]int {
	return c.requests
}

func (c *Client) GetTotalCosts() map[string]int {
	return c.totalCosts
}

func (c *Client) countRequest(owner string, name string, limit rateLimit) {
	key := fmt.Sprintf("%s/%s", owner, name)

	val := c.requests[key]
	c.requests[key] = val + 1

	val = c.totalCosts[key]
	c.totalCosts[key] = val + limit.Cost

	// failed requests carry no rate limit information
	if limit != (rateLimit{}) {
		c.remainingPoints = limit.Remaining
	}
}

func cursorVariable(cursor string) *githubv4.String {
	if cursor == "" {
		return nil
	}

	return githubv4.NewString(githubv4.String(cursor))
}

// labelsVariable sends an empty label list as null, which GitHub treats
// as "no label filter".
func labelsVariable(labels []string) *[]githubv4.String {
	if len(labels) == 0 {
		return nil
	}

	result := make([]githubv4.String, 0, len(labels))
	for _, label := range labels {
		result = append(result, githubv4.String(label))
	}

	return &result
}
