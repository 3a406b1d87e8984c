package catalog

import (
	"context"
	"log/slog"

	"github.com/jewgo/jewgo/internal/domain"
)

// JobSeekersLimit is how many profiles the seeking view shows
const JobSeekersLimit = 50

// LoadJobSeekers fetches the newest job seeker profiles and renders them
// as grid items. On failure it returns the user-facing message instead of
// an error.
func LoadJobSeekers(ctx context.Context, repo domain.JobSeekersRepository, logger *slog.Logger) ([]domain.CategoryItem, string) {
	if logger == nil {
		logger = slog.Default()
	}
	if repo == nil {
		return nil, "Failed to fetch job seekers"
	}

	seekers, err := repo.GetJobSeekers(ctx, domain.JobSeekerParams{
		Page:      1,
		Limit:     JobSeekersLimit,
		SortBy:    "created_at",
		SortOrder: "desc",
	})
	if err != nil {
		logger.Error("failed to fetch job seekers", "error", err)
		return nil, "Failed to fetch job seekers"
	}

	items := make([]domain.CategoryItem, 0, len(seekers))
	for _, js := range seekers {
		item, err := TransformJobSeeker(js)
		if err != nil {
			logger.Warn("dropping invalid job seeker", "error", err)
			continue
		}
		items = append(items, item)
	}
	logger.Debug("fetched job seekers", "count", len(items))
	return items, ""
}
