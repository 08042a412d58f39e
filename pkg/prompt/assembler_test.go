package prompt

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"openbook-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func sampleProfile() *entity.Profile {
	return &entity.Profile{
		Username:    "octocat",
		Bio:         "Builds tools",
		PublicRepos: 3,
		Repositories: []entity.Repository{
			{
				Name:        "tool",
				Description: "CLI",
				Stars:       4,
				UpdatedAt:   day(1),
				Languages: map[string]entity.LanguageInfo{
					"Go":    {Bytes: 750, Percentage: 75},
					"Shell": {Bytes: 250, Percentage: 25},
				},
			},
			{Name: "site", PrimaryLanguage: "HTML", UpdatedAt: day(9)},
			{
				Name:      "lib",
				UpdatedAt: day(1),
				Languages: map[string]entity.LanguageInfo{"Go": {Bytes: 10, Percentage: 100}},
			},
		},
		LanguageStats: map[string]entity.LanguageStat{
			"Go":    {ReposUsingThisLanguage: 2, Percentage: 76},
			"Shell": {ReposUsingThisLanguage: 1, Percentage: 24},
			"HTML":  {ReposUsingThisLanguage: 1},
		},
	}
}

func TestBuildGeneralContext(t *testing.T) {
	expected := `=== MY PROFILE ===
Name: octocat
Bio: Builds tools
Public Repos: 3

=== LANGUAGE USAGE ===
By repo presence (not file size):
- Go: 67% (2 repos)
- HTML: 33% (1 repos)
- Shell: 33% (1 repos)

=== MY PROJECTS ===

1. site
   Languages: HTML

2. lib
   Languages: Go

3. tool
   Languages: Go, Shell
   Description: CLI

=== PROJECTS BY LANGUAGE ===
- Go: tool, lib
- HTML: site
- Shell: tool
`
	assert.Equal(t, expected, BuildGeneralContext(sampleProfile(), &entity.KnowledgeBase{}))
}

func TestBuildGeneralContext_Deterministic(t *testing.T) {
	first := BuildGeneralContext(sampleProfile(), nil)
	for i := 0; i < 50; i++ {
		require.Equal(t, first, BuildGeneralContext(sampleProfile(), nil))
	}
}

func TestBuildGeneralContext_ProjectsByLanguageLimits(t *testing.T) {
	p := &entity.Profile{Username: "busy"}
	for i := 0; i < 13; i++ {
		p.Repositories = append(p.Repositories, entity.Repository{
			Name:            fmt.Sprintf("go-%02d", i),
			PrimaryLanguage: "Go",
		})
	}
	for i := 0; i < 11; i++ {
		p.Repositories = append(p.Repositories, entity.Repository{
			Name:            fmt.Sprintf("solo-%02d", i),
			PrimaryLanguage: fmt.Sprintf("Lang%02d", i),
		})
	}

	out := BuildGeneralContext(p, nil)
	section := out[strings.Index(out, "=== PROJECTS BY LANGUAGE ==="):]
	lines := strings.Split(strings.TrimSpace(section), "\n")[1:]

	require.Len(t, lines, 10)
	assert.Equal(t, "- Go: go-00, go-01, go-02, go-03, go-04, go-05, go-06, go-07, go-08, go-09 (+3 more)", lines[0])
	assert.Equal(t, "- Lang00: solo-00", lines[1])
	assert.Equal(t, "- Lang08: solo-08", lines[9])
}

func TestBuildGeneralContext_NoLanguageStats(t *testing.T) {
	out := BuildGeneralContext(&entity.Profile{Username: "new", Name: "Newcomer"}, nil)

	assert.Contains(t, out, "Name: Newcomer\n")
	assert.NotContains(t, out, "Bio:")
	assert.NotContains(t, out, "By repo presence")
}

func TestBuildDetailedContext(t *testing.T) {
	profile := sampleProfile()
	repo, ok := profile.FindRepository("tool")
	require.True(t, ok)
	kb := &entity.KnowledgeBase{ProjectSummaries: []entity.ProjectSummary{
		{RepositoryName: "tool", AiSummary: "A fast CLI written in Go."},
	}}

	expected := `=== MY PROFILE ===
Name: octocat
Bio: Builds tools
Public Repos: 3

=== PROJECT: tool ===
Languages: Go, Shell
Description: CLI
Stars: 4

## What I built:
A fast CLI written in Go.
`
	assert.Equal(t, expected, BuildDetailedContext(profile, repo, kb))
}

func TestBuildDetailedContext_WithoutSummary(t *testing.T) {
	profile := sampleProfile()
	repo, _ := profile.FindRepository("site")

	out := BuildDetailedContext(profile, repo, &entity.KnowledgeBase{})

	assert.Contains(t, out, "=== PROJECT: site ===\nLanguages: HTML\n")
	assert.NotContains(t, out, "Stars:")
	assert.NotContains(t, out, "## What I built:")
}

func TestBuildPersona(t *testing.T) {
	persona := BuildPersona(&entity.Profile{Username: "octocat", Name: "The Octocat"})

	assert.True(t, strings.HasPrefix(persona, "You are The Octocat, a software developer on GitHub."))
	assert.Contains(t, persona, "- Respond in first person as The Octocat")
	assert.Contains(t, persona, "- Never mention you are an AI")

	assert.Contains(t, BuildPersona(&entity.Profile{Username: "octocat"}), "You are octocat,")
}
