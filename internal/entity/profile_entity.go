package entity

import "time"

type Profile struct {
	Username    string    `json:"username"`
	Name        string    `json:"name,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	AvatarUrl   string    `json:"avatar_url,omitempty"`
	Company     string    `json:"company,omitempty"`
	Location    string    `json:"location,omitempty"`
	PublicRepos int       `json:"public_repos"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CachedAt    time.Time `json:"cached_at"`

	Repositories []Repository `json:"repositories"`

	// Calculated metadata
	TotalStars    int                     `json:"total_stars"`
	LanguageStats map[string]LanguageStat `json:"language_stats"`
}

// LanguageStat aggregates one language across every repository of a profile.
type LanguageStat struct {
	Percentage             float64 `json:"percentage"` // share of total bytes
	ReposUsingThisLanguage int     `json:"repos_using_this_language"`
}

// DisplayName falls back to the username when the profile has no name.
func (p *Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Username
}

// FindRepository returns the repository with the exact given name.
func (p *Profile) FindRepository(name string) (*Repository, bool) {
	for i := range p.Repositories {
		if p.Repositories[i].Name == name {
			return &p.Repositories[i], true
		}
	}
	return nil, false
}

// RepositoryNames returns the names of all repositories in profile order.
func (p *Profile) RepositoryNames() []string {
	names := make([]string, 0, len(p.Repositories))
	for _, r := range p.Repositories {
		names = append(names, r.Name)
	}
	return names
}

type Repository struct {
	Name            string                  `json:"name"`
	Description     string                  `json:"description,omitempty"`
	PrimaryLanguage string                  `json:"primary_language,omitempty"`
	Stars           int                     `json:"stars"`
	Forks           int                     `json:"forks"`
	IsFork          bool                    `json:"is_fork"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
	Url             string                  `json:"url,omitempty"`
	ReadmeContent   string                  `json:"readme_content,omitempty"`
	Languages       map[string]LanguageInfo `json:"languages"`
}

type LanguageInfo struct {
	Bytes      int64   `json:"bytes"`
	Percentage float64 `json:"percentage"`
}

type RateLimitInfo struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetTime time.Time `json:"reset_time"`
}
