// SPDX-FileCopyrightText: 2023 Christoph Mewes
// SPDX-License-Identifier: MIT

package github

import (
	"strings"
	"time"

	"github.com/shurcooL/githubv4"
)

type Issue struct {
	Number    int                 `json:"number"`
	Title     string              `json:"title"`
	URL       string              `json:"url,omitempty"`
	Author    string              `json:"author,omitempty"`
	State     githubv4.IssueState `json:"state"`
	Milestone string              `json:"milestone,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
	FetchedAt time.Time           `json:"fetchedAt"`
	Labels    []string            `json:"labels"`
}

func (i *Issue) HasLabel(label string) bool {
	label = strings.ToLower(label)

	for _, l := range i.Labels {
		if label == strings.ToLower(l) {
			return true
		}
	}

	return false
}
