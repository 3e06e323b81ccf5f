package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"bountyledger/internal/domain"
)

const (
	githubEndpoint = "https://api.github.com/search/issues"

	// githubBodyProbe is how much of an issue body is scanned for a reward.
	githubBodyProbe = 500

	// githubGateInterval spaces successive search queries; the search API is
	// shared and aggressively rate limited for unauthenticated callers.
	githubGateInterval = time.Second
)

// githubQueries are the fixed searches run on every scan: bounty-labeled
// issues in implementable languages plus generic reward-labeled issues.
var githubQueries = []string{
	"label:bounty state:open language:python",
	"label:bounty state:open language:javascript",
	"label:bounty state:open language:solidity",
	"label:reward state:open",
}

// GitHubScanner searches GitHub issues for bounty and reward labels. Reward
// amounts are not structured on GitHub, so they are extracted from the
// leading portion of the issue body.
type GitHubScanner struct {
	endpoint string
	token    string
	client   *http.Client
	log      zerolog.Logger
	gate     Gate
}

// NewGitHubScanner creates the GitHub issue-search scanner. The token is
// optional; without it the shared unauthenticated quota applies.
func NewGitHubScanner(token string, opts ...Option) *GitHubScanner {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &GitHubScanner{
		endpoint: githubEndpoint,
		token:    token,
		client:   o.client,
		log:      o.log,
		gate:     o.gate,
	}
	if o.endpoint != "" {
		s.endpoint = o.endpoint
	}
	if s.gate == nil {
		s.gate = NewRateGate(githubGateInterval)
	}
	return s
}

// Platform returns "github".
func (s *GitHubScanner) Platform() string {
	return "github"
}

// Scan runs every configured query, one at a time behind the gate. A failed
// query is logged and skipped; the remaining queries still run.
func (s *GitHubScanner) Scan(ctx context.Context) ([]domain.Opportunity, int) {
	var opps []domain.Opportunity
	raw := 0
	for _, q := range githubQueries {
		if err := s.gate.Wait(ctx); err != nil {
			s.log.Warn().Err(err).Msg("github scan interrupted")
			return opps, raw
		}
		issues, err := s.search(ctx, q)
		if err != nil {
			s.log.Warn().Err(err).Str("query", q).Msg("github search failed")
			continue
		}
		raw += len(issues)
		for _, issue := range issues {
			opps = append(opps, s.normalize(issue))
		}
	}
	return opps, raw
}

type githubIssue struct {
	Number  int64  `json:"number"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

func (s *GitHubScanner) search(ctx context.Context, query string) ([]githubIssue, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("q", query)
	q.Set("per_page", "10")
	q.Set("sort", "created")
	q.Set("order", "desc")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if s.token != "" {
		req.Header.Set("Authorization", "token "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var result struct {
		Items []githubIssue `json:"items"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("malformed payload: %w", err)
	}
	return result.Items, nil
}

func (s *GitHubScanner) normalize(issue githubIssue) domain.Opportunity {
	body := strings.ToLower(clip(issue.Body, githubBodyProbe))
	return domain.Opportunity{
		Platform:   "github",
		ExternalID: strconv.FormatInt(issue.Number, 10),
		Title:      clip(issue.Title, domain.MaxTitleLen),
		Reward:     ExtractReward(body),
		Currency:   "USD",
		URL:        issue.HTMLURL,
	}
}
