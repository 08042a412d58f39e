package github

import "openbook-be/internal/entity"

// CalculateMetadata fills TotalStars and LanguageStats. A repository counts
// toward every language of its byte breakdown, or toward its primary language
// when the breakdown is empty. Percentages are shares of total bytes, so a
// language known only as a primary language contributes 0 bytes.
func CalculateMetadata(profile *entity.Profile) {
	totalStars := 0
	counts := make(map[string]int)
	bytes := make(map[string]int64)

	for _, repo := range profile.Repositories {
		totalStars += repo.Stars

		if len(repo.Languages) > 0 {
			for name, info := range repo.Languages {
				counts[name]++
				bytes[name] += info.Bytes
			}
		} else if repo.PrimaryLanguage != "" {
			counts[repo.PrimaryLanguage]++
		}
	}

	var totalBytes int64
	for _, b := range bytes {
		totalBytes += b
	}

	stats := make(map[string]entity.LanguageStat, len(counts))
	for name, count := range counts {
		stat := entity.LanguageStat{ReposUsingThisLanguage: count}
		if totalBytes > 0 {
			stat.Percentage = float64(bytes[name]) / float64(totalBytes) * 100
		}
		stats[name] = stat
	}

	profile.TotalStars = totalStars
	profile.LanguageStats = stats
}
