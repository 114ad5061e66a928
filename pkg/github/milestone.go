// SPDX-FileCopyrightText: 2023 Christoph Mewes
// SPDX-License-Identifier: MIT

package github

import (
	"time"

	"github.com/shurcooL/githubv4"
)

type Milestone struct {
	Number       int                     `json:"number"`
	Title        string                  `json:"title"`
	State        githubv4.MilestoneState `json:"state"`
	URL          string                  `json:"url,omitempty"`
	CreatedAt    time.Time               `json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`
	ClosedAt     *time.Time              `json:"closedAt,omitempty"`
	DueOn        *time.Time              `json:"dueOn,omitempty"`
	FetchedAt    time.Time               `json:"fetchedAt"`
	OpenIssues   int                     `json:"openIssues"`
	ClosedIssues int                     `json:"closedIssues"`
}
