package alert

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/google/go-github/github"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// GitHubSink delivers alerts as issues in one repository. The issue
// URL becomes the dispatch reference.
type GitHubSink struct {
	client  *github.Client
	owner   string
	repo    string
	labels  []string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

var _ Sink = (*GitHubSink)(nil)

// GitHubOption configures the GitHubSink.
type GitHubOption func(*GitHubSink)

// WithGitHubClient supplies a preconfigured client, e.g. one pointed
// at a GitHub Enterprise base URL. The token argument to NewGitHubSink
// is ignored when a client is supplied.
func WithGitHubClient(c *github.Client) GitHubOption {
	return func(s *GitHubSink) { s.client = c }
}

// WithLabels sets the labels applied to every created issue.
func WithLabels(labels ...string) GitHubOption {
	return func(s *GitHubSink) { s.labels = labels }
}

// WithRateLimit throttles deliveries to perSecond sustained with the
// given burst. Deliveries wait rather than drop.
func WithRateLimit(perSecond float64, burst int) GitHubOption {
	return func(s *GitHubSink) {
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithCircuitBreaker guards deliveries with cb. While the breaker is
// open, Deliver fails fast with gobreaker.ErrOpenState.
func WithCircuitBreaker(cb *gobreaker.CircuitBreaker) GitHubOption {
	return func(s *GitHubSink) { s.breaker = cb }
}

// NewGitHubSink builds a sink creating issues in owner/repo,
// authenticated with the given token.
func NewGitHubSink(token, owner, repo string, opts ...GitHubOption) (*GitHubSink, error) {
	if owner == "" || repo == "" {
		return nil, errors.New("alert: github sink requires owner and repo")
	}
	s := &GitHubSink{owner: owner, repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		httpClient := http.DefaultClient
		if token != "" {
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
			httpClient = oauth2.NewClient(context.Background(), ts)
		}
		s.client = github.NewClient(httpClient)
	}
	return s, nil
}

// Deliver creates the issue and returns its HTML URL.
func (s *GitHubSink) Deliver(ctx context.Context, a Alert) (string, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	if s.breaker == nil {
		return s.createIssue(ctx, a)
	}
	ref, err := s.breaker.Execute(func() (any, error) {
		return s.createIssue(ctx, a)
	})
	if err != nil {
		return "", err
	}
	return ref.(string), nil
}

func (s *GitHubSink) createIssue(ctx context.Context, a Alert) (string, error) {
	req := &github.IssueRequest{
		Title: github.String(issueTitle(a)),
		Body:  github.String(issueBody(a)),
	}
	if len(s.labels) > 0 {
		labels := append([]string(nil), s.labels...)
		req.Labels = &labels
	}

	issue, _, err := s.client.Issues.Create(ctx, s.owner, s.repo, req)
	if err != nil {
		return "", err
	}
	if url := issue.GetHTMLURL(); url != "" {
		return url, nil
	}
	return fmt.Sprintf("%s/%s#%d", s.owner, s.repo, issue.GetNumber()), nil
}

// maxTitleLen keeps issue titles inside GitHub's display width.
const maxTitleLen = 120

func issueTitle(a Alert) string {
	title := fmt.Sprintf("[%s] %s: %s", strings.ToUpper(a.Severity), a.Component, a.Description)
	runes := []rune(title)
	if len(runes) > maxTitleLen {
		title = string(runes[:maxTitleLen-3]) + "..."
	}
	return title
}

func issueBody(a Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Environment:** %s\n", a.Environment)
	fmt.Fprintf(&b, "**Type:** %s\n", a.Type)
	fmt.Fprintf(&b, "**Component:** %s\n", a.Component)
	fmt.Fprintf(&b, "**Severity:** %s\n\n", a.Severity)
	b.WriteString(a.Description)

	if len(a.Details) > 0 {
		keys := make([]string, 0, len(a.Details))
		for k := range a.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString("\n\n### Details\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- **%s:** %v\n", k, a.Details[k])
		}
	}
	return b.String()
}
