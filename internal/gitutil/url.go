// Package gitutil parses the ways users name repositories and pull requests.
package gitutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	prURLRegex       = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/pull/(\d+)(?:/(?:files|commits|checks))?$`)
	prShorthandRegex = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)#(\d+)$`)
	repoRegex        = regexp.MustCompile(`^(?:https?://)?(?:github\.com/)?([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+?)(?:\.git)?$`)
)

// ParsePullRequestURL extracts owner, repo and PR number from either a GitHub
// pull request URL (https://github.com/{owner}/{repo}/pull/{number}) or the
// shorthand {owner}/{repo}#{number}.
func ParsePullRequestURL(url string) (owner, repo string, prNumber int, err error) {
	url = strings.TrimSuffix(strings.TrimSpace(url), "/")

	matches := prURLRegex.FindStringSubmatch(url)
	if matches == nil {
		matches = prShorthandRegex.FindStringSubmatch(url)
	}
	if len(matches) != 4 {
		return "", "", 0, fmt.Errorf("invalid pull request URL format: %s", url)
	}

	prNumber, err = strconv.Atoi(matches[3])
	if err != nil || prNumber <= 0 {
		return "", "", 0, fmt.Errorf("invalid PR number '%s'", matches[3])
	}
	return matches[1], matches[2], prNumber, nil
}

// ParseRepository accepts "owner/repo" or a GitHub repository URL.
func ParseRepository(s string) (owner, repo string, err error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "/")
	matches := repoRegex.FindStringSubmatch(s)
	if len(matches) != 3 {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/repo", s)
	}
	return matches[1], matches[2], nil
}
