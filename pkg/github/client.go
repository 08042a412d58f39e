// Package github scrapes a public GitHub profile, its repositories, readmes
// and language breakdowns into an entity.Profile.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"openbook-be/internal/entity"
	"openbook-be/internal/pkg/apperror"
	"openbook-be/internal/pkg/logger"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.github.com"
	reposPerPage   = 100

	// lowRateLimitWarning and lowRateLimitBeforeScrape are remaining-request thresholds
	lowRateLimitWarning      = 100
	lowRateLimitBeforeScrape = 50
)

type Client struct {
	BaseURL     string
	AccessToken string
	UserAgent   string
	HTTPClient  *http.Client

	limiter *rate.Limiter
	logger  logger.ILogger
}

// NewClient paces every request at one per 100ms.
func NewClient(baseURL, accessToken, userAgent string, log logger.ILogger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL:     strings.TrimSuffix(baseURL, "/"),
		AccessToken: accessToken,
		UserAgent:   userAgent,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		logger:  log,
	}
}

// --- GitHub REST payloads ---

type userResponse struct {
	Login       string    `json:"login"`
	Name        *string   `json:"name"`
	Bio         *string   `json:"bio"`
	AvatarUrl   string    `json:"avatar_url"`
	Company     *string   `json:"company"`
	Location    *string   `json:"location"`
	PublicRepos int       `json:"public_repos"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type repoResponse struct {
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	Language        *string   `json:"language"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	Fork            bool      `json:"fork"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	HtmlUrl         string    `json:"html_url"`
}

type readmeResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type rateLimitResponse struct {
	Rate struct {
		Limit     int   `json:"limit"`
		Remaining int   `json:"remaining"`
		Reset     int64 `json:"reset"`
	} `json:"rate"`
}

// StatusError is returned for any non-2xx GitHub response.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github %s: status %d: %s", e.Path, e.StatusCode, e.Body)
}

// Scrape fetches the user, every repository page, and per-repository readme
// and languages, then computes the aggregate metadata. CachedAt is left zero;
// the caller stamps it.
func (c *Client) Scrape(ctx context.Context, username string) (*entity.Profile, error) {
	c.logger.Info("GITHUB", "Scraping profile", map[string]interface{}{"username": username})

	// Advisory only: a failed check never blocks the scrape
	if info, err := c.CheckRateLimit(ctx); err == nil && info.Remaining < lowRateLimitBeforeScrape {
		c.logger.Warn("GITHUB", "Low rate limit before scraping", map[string]interface{}{
			"remaining": info.Remaining,
			"limit":     info.Limit,
		})
	}

	var user userResponse
	if err := c.getJSON(ctx, "/users/"+url.PathEscape(username), &user); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, apperror.NotFound("github user %s", username)
		}
		return nil, fmt.Errorf("fetch user %s: %w", username, err)
	}

	profile := &entity.Profile{
		Username:     username,
		Name:         deref(user.Name),
		Bio:          deref(user.Bio),
		AvatarUrl:    user.AvatarUrl,
		Company:      deref(user.Company),
		Location:     deref(user.Location),
		PublicRepos:  user.PublicRepos,
		Followers:    user.Followers,
		Following:    user.Following,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
		Repositories: make([]entity.Repository, 0),
	}

	for page := 1; ; page++ {
		var repos []repoResponse
		path := fmt.Sprintf("/users/%s/repos?per_page=%d&page=%d&sort=updated", url.PathEscape(username), reposPerPage, page)
		if err := c.getJSON(ctx, path, &repos); err != nil {
			return nil, fmt.Errorf("fetch repositories page %d of %s: %w", page, username, err)
		}
		if len(repos) == 0 {
			break
		}

		for _, r := range repos {
			repo := entity.Repository{
				Name:            r.Name,
				Description:     deref(r.Description),
				PrimaryLanguage: deref(r.Language),
				Stars:           r.StargazersCount,
				Forks:           r.ForksCount,
				IsFork:          r.Fork,
				CreatedAt:       r.CreatedAt,
				UpdatedAt:       r.UpdatedAt,
				Url:             r.HtmlUrl,
				ReadmeContent:   CleanReadme(c.fetchReadme(ctx, username, r.Name)),
				Languages:       c.fetchLanguages(ctx, username, r.Name),
			}
			profile.Repositories = append(profile.Repositories, repo)

			c.logger.Debug("GITHUB", "Processed repository", map[string]interface{}{
				"repository": r.Name,
				"languages":  len(repo.Languages),
			})
		}
	}

	CalculateMetadata(profile)

	c.logger.Info("GITHUB", "Scraped profile", map[string]interface{}{
		"username":     username,
		"repositories": len(profile.Repositories),
	})
	return profile, nil
}

// CheckRateLimit reads the core rate limit of the configured token (or IP).
func (c *Client) CheckRateLimit(ctx context.Context) (*entity.RateLimitInfo, error) {
	var resp rateLimitResponse
	if err := c.getJSON(ctx, "/rate_limit", &resp); err != nil {
		c.logger.Error("GITHUB", "Failed to check rate limit", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	info := &entity.RateLimitInfo{
		Limit:     resp.Rate.Limit,
		Remaining: resp.Rate.Remaining,
		ResetTime: time.Unix(resp.Rate.Reset, 0).UTC(),
	}
	if info.Remaining < lowRateLimitWarning {
		c.logger.Warn("GITHUB", "Low rate limit", map[string]interface{}{
			"remaining":  info.Remaining,
			"limit":      info.Limit,
			"reset_time": info.ResetTime,
		})
	}
	return info, nil
}

// fetchReadme returns the decoded readme, or "" on any failure.
func (c *Client) fetchReadme(ctx context.Context, owner, repo string) string {
	var resp readmeResponse
	path := fmt.Sprintf("/repos/%s/%s/readme", url.PathEscape(owner), url.PathEscape(repo))
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return ""
	}
	if resp.Content == "" {
		return ""
	}

	// GitHub wraps the base64 payload at 60 columns
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
	if err != nil {
		c.logger.Warn("GITHUB", "Undecodable readme", map[string]interface{}{"repository": repo, "error": err.Error()})
		return ""
	}
	return string(decoded)
}

// fetchLanguages returns language byte counts with their share of the
// repository, or an empty map on any failure.
func (c *Client) fetchLanguages(ctx context.Context, owner, repo string) map[string]entity.LanguageInfo {
	languages := make(map[string]entity.LanguageInfo)

	var raw map[string]int64
	path := fmt.Sprintf("/repos/%s/%s/languages", url.PathEscape(owner), url.PathEscape(repo))
	if err := c.getJSON(ctx, path, &raw); err != nil {
		return languages
	}

	var total int64
	for _, b := range raw {
		total += b
	}
	for name, b := range raw {
		info := entity.LanguageInfo{Bytes: b}
		if total > 0 {
			info.Percentage = float64(b) / float64(total) * 100
		}
		languages[name] = info
	}
	return languages
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.AccessToken != "" {
		req.Header.Set("Authorization", "token "+c.AccessToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Path: path, StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
