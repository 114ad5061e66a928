package github

import (
	"fmt"
	"strings"

	"github.com/shurcooL/githubv4"
)

// ParseIssueState turns "open" or "closed" (in any case) into the
// matching GraphQL enum value.
func ParseIssueState(value string) (githubv4.IssueState, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(githubv4.IssueStateOpen):
		return githubv4.IssueStateOpen, nil
	case string(githubv4.IssueStateClosed):
		return githubv4.IssueStateClosed, nil
	default:
		return "", fmt.Errorf("invalid issue state %q, must be one of open, closed", value)
	}
}
