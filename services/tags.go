package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/m-im-ha/turbo-blog-practice/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	MaxTagsPerBlog = 5
	MinTagLength   = 2
	MaxTagLength   = 20
)

// NormalizeTags trims and lower-cases names, drops blanks and keeps the first occurrence of each.
func NormalizeTags(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// TagJob asks for tags to be attached to a blog. Replace drops the blog's current tags first.
type TagJob struct {
	BlogID  uuid.UUID `json:"blogId"`
	Tags    []string  `json:"tags"`
	Replace bool      `json:"replace"`
}

// TagScheduler accepts tag jobs without waiting for them to run.
type TagScheduler interface {
	Schedule(ctx context.Context, job TagJob) error
}

// TagAttacher upserts tag rows and links them to blogs.
type TagAttacher struct {
	store  models.Store
	logger zerolog.Logger
}

func NewTagAttacher(store models.Store) *TagAttacher {
	return &TagAttacher{
		store:  store,
		logger: log.With().Str("component", "tagAttacher").Logger(),
	}
}

// Attach runs job in one transaction. Each tag is attached inside its own savepoint; a tag that
// fails is logged and skipped. The returned slice holds the names that were attached.
func (a *TagAttacher) Attach(ctx context.Context, job TagJob) ([]string, error) {
	names := NormalizeTags(job.Tags)
	logger := a.logger.With().Str("blogId", job.BlogID.String()).Logger()

	var attached []string
	err := a.store.Transaction(ctx, func(tx models.Store) error {
		attached = attached[:0]

		if job.Replace {
			if err := tx.Tags().ClearForBlog(ctx, job.BlogID); err != nil {
				return err
			}
		}

		for _, name := range names {
			err := tx.Transaction(ctx, func(sp models.Store) error {
				tag, err := sp.Tags().Upsert(ctx, name)
				if err != nil {
					return err
				}
				return sp.Tags().Attach(ctx, job.BlogID, tag)
			})
			if err != nil {
				logger.Error().Err(err).Str("tag", name).Msg("Failed to attach tag")
				continue
			}
			attached = append(attached, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug().Strs("tags", attached).Bool("replace", job.Replace).Msg("Tags attached")
	return attached, nil
}
