// Package prompt renders the persona instruction and the profile context
// blocks handed to the language model. Rendering is pure: the same profile
// and knowledge base always produce byte-identical text.
package prompt

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"openbook-be/internal/entity"
)

const (
	maxLanguagesByProject = 10
	maxProjectsPerLine    = 10
)

// BuildPersona instructs the model to answer as the profile owner.
func BuildPersona(profile *entity.Profile) string {
	name := profile.DisplayName()

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s, a software developer on GitHub.\n\n", name)
	sb.WriteString("RULES:\n")
	fmt.Fprintf(&sb, "- Respond in first person as %s\n", name)
	sb.WriteString("- Use the provided context to answer questions\n")
	sb.WriteString("- Your LANGUAGE STATS show languages you're experienced with\n")
	sb.WriteString("- Your PROJECTS list shows what you've built and what languages each uses\n")
	sb.WriteString("- When asked about a language, mention specific projects that use it\n")
	sb.WriteString("- When asked about projects using a language, look at === PROJECTS BY LANGUAGE ===\n")
	sb.WriteString("- Never mention you are an AI\n")
	sb.WriteString("- Be friendly and conversational")
	return sb.String()
}

// BuildGeneralContext summarizes the whole profile: identity, language usage,
// every project and a language to projects index.
func BuildGeneralContext(profile *entity.Profile, _ *entity.KnowledgeBase) string {
	var sb strings.Builder

	writeProfile(&sb, profile)
	writeLanguageUsage(&sb, profile)
	writeProjects(&sb, profile)
	writeProjectsByLanguage(&sb, profile)

	return sb.String()
}

// BuildDetailedContext focuses on one repository, adding its generated
// summary when the knowledge base has one.
func BuildDetailedContext(profile *entity.Profile, repo *entity.Repository, kb *entity.KnowledgeBase) string {
	var sb strings.Builder

	writeProfile(&sb, profile)

	fmt.Fprintf(&sb, "\n=== PROJECT: %s ===\n", repo.Name)
	if languages := repoLanguages(repo); len(languages) > 0 {
		fmt.Fprintf(&sb, "Languages: %s\n", strings.Join(languages, ", "))
	}
	if repo.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", repo.Description)
	}
	if repo.Stars > 0 {
		fmt.Fprintf(&sb, "Stars: %d\n", repo.Stars)
	}

	if kb != nil {
		if summary, ok := kb.FindSummary(repo.Name); ok {
			sb.WriteString("\n## What I built:\n")
			sb.WriteString(summary.AiSummary)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func writeProfile(sb *strings.Builder, profile *entity.Profile) {
	sb.WriteString("=== MY PROFILE ===\n")
	fmt.Fprintf(sb, "Name: %s\n", profile.DisplayName())
	if profile.Bio != "" {
		fmt.Fprintf(sb, "Bio: %s\n", profile.Bio)
	}
	fmt.Fprintf(sb, "Public Repos: %d\n", profile.PublicRepos)
}

// writeLanguageUsage ranks languages by how many repositories use them.
// The percentage is that count over all repositories, not a byte share.
func writeLanguageUsage(sb *strings.Builder, profile *entity.Profile) {
	sb.WriteString("\n=== LANGUAGE USAGE ===\n")
	if len(profile.LanguageStats) == 0 {
		return
	}

	sb.WriteString("By repo presence (not file size):\n")

	names := make([]string, 0, len(profile.LanguageStats))
	for name := range profile.LanguageStats {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci := profile.LanguageStats[names[i]].ReposUsingThisLanguage
		cj := profile.LanguageStats[names[j]].ReposUsingThisLanguage
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})

	totalRepos := len(profile.Repositories)
	for _, name := range names {
		count := profile.LanguageStats[name].ReposUsingThisLanguage
		percent := 0.0
		if totalRepos > 0 {
			percent = float64(count) / float64(totalRepos) * 100
		}
		fmt.Fprintf(sb, "- %s: %d%% (%d repos)\n", name, int(math.Round(percent)), count)
	}
}

// writeProjects lists every repository, most recently updated first.
func writeProjects(sb *strings.Builder, profile *entity.Profile) {
	sb.WriteString("\n=== MY PROJECTS ===\n")

	repos := make([]*entity.Repository, 0, len(profile.Repositories))
	for i := range profile.Repositories {
		repos = append(repos, &profile.Repositories[i])
	}
	sort.SliceStable(repos, func(i, j int) bool {
		if !repos[i].UpdatedAt.Equal(repos[j].UpdatedAt) {
			return repos[i].UpdatedAt.After(repos[j].UpdatedAt)
		}
		return repos[i].Name < repos[j].Name
	})

	for i, repo := range repos {
		fmt.Fprintf(sb, "\n%d. %s\n", i+1, repo.Name)
		if languages := repoLanguages(repo); len(languages) > 0 {
			fmt.Fprintf(sb, "   Languages: %s\n", strings.Join(languages, ", "))
		}
		if repo.Description != "" {
			fmt.Fprintf(sb, "   Description: %s\n", repo.Description)
		}
	}
}

// writeProjectsByLanguage indexes project names under each language, keeping
// the ten most used languages and ten names per language.
func writeProjectsByLanguage(sb *strings.Builder, profile *entity.Profile) {
	sb.WriteString("\n=== PROJECTS BY LANGUAGE ===\n")

	projects := make(map[string][]string)
	for i := range profile.Repositories {
		repo := &profile.Repositories[i]
		for _, lang := range repoLanguageSet(repo) {
			projects[lang] = append(projects[lang], repo.Name)
		}
	}

	languages := make([]string, 0, len(projects))
	for lang := range projects {
		languages = append(languages, lang)
	}
	sort.Slice(languages, func(i, j int) bool {
		ci, cj := len(projects[languages[i]]), len(projects[languages[j]])
		if ci != cj {
			return ci > cj
		}
		return languages[i] < languages[j]
	})
	if len(languages) > maxLanguagesByProject {
		languages = languages[:maxLanguagesByProject]
	}

	for _, lang := range languages {
		names := projects[lang]
		more := ""
		if len(names) > maxProjectsPerLine {
			more = fmt.Sprintf(" (+%d more)", len(names)-maxProjectsPerLine)
			names = names[:maxProjectsPerLine]
		}
		fmt.Fprintf(sb, "- %s: %s%s\n", lang, strings.Join(names, ", "), more)
	}
}

// repoLanguages orders a repository's languages by byte share, falling back
// to its primary language.
func repoLanguages(repo *entity.Repository) []string {
	if len(repo.Languages) == 0 {
		if repo.PrimaryLanguage != "" {
			return []string{repo.PrimaryLanguage}
		}
		return nil
	}

	names := make([]string, 0, len(repo.Languages))
	for name := range repo.Languages {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := repo.Languages[names[i]].Percentage, repo.Languages[names[j]].Percentage
		if pi != pj {
			return pi > pj
		}
		return names[i] < names[j]
	})
	return names
}

// repoLanguageSet is the set of languages a repository counts toward, sorted by name.
func repoLanguageSet(repo *entity.Repository) []string {
	if len(repo.Languages) == 0 {
		if repo.PrimaryLanguage != "" {
			return []string{repo.PrimaryLanguage}
		}
		return nil
	}
	names := make([]string, 0, len(repo.Languages))
	for name := range repo.Languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
