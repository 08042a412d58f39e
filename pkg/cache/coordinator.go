// Package cache keeps a stored profile and its knowledge base consistent,
// regenerating either one when it is missing or stale.
package cache

import (
	"context"
	"fmt"
	"time"

	"openbook-be/internal/entity"
	"openbook-be/internal/pkg/apperror"
	"openbook-be/internal/pkg/logger"
	"openbook-be/internal/repository/contract"
	"openbook-be/pkg/clock"
	"openbook-be/pkg/events"
	"openbook-be/pkg/metrics"

	"golang.org/x/sync/singleflight"
)

const DefaultProfileMaxAge = 24 * time.Hour

// ProfileSource produces a fresh profile snapshot; CachedAt is left to the coordinator.
type ProfileSource interface {
	Scrape(ctx context.Context, username string) (*entity.Profile, error)
}

type KnowledgeGenerator interface {
	Generate(ctx context.Context, profile *entity.Profile) (*entity.KnowledgeBase, error)
}

type Coordinator struct {
	profiles       contract.ProfileRepository
	knowledgeBases contract.KnowledgeBaseRepository
	source         ProfileSource
	generator      KnowledgeGenerator
	publisher      events.Publisher
	clock          clock.Clock
	logger         logger.ILogger
	maxProfileAge  time.Duration

	// collapses concurrent Ensure calls for one username
	flight singleflight.Group
}

type ensured struct {
	profile *entity.Profile
	kb      *entity.KnowledgeBase
}

// NewCoordinator accepts a nil publisher when no event bus is configured.
func NewCoordinator(
	profiles contract.ProfileRepository,
	knowledgeBases contract.KnowledgeBaseRepository,
	source ProfileSource,
	generator KnowledgeGenerator,
	publisher events.Publisher,
	clk clock.Clock,
	log logger.ILogger,
	maxProfileAge time.Duration,
) *Coordinator {
	if maxProfileAge <= 0 {
		maxProfileAge = DefaultProfileMaxAge
	}
	return &Coordinator{
		profiles:       profiles,
		knowledgeBases: knowledgeBases,
		source:         source,
		generator:      generator,
		publisher:      publisher,
		clock:          clk,
		logger:         log,
		maxProfileAge:  maxProfileAge,
	}
}

// Ensure returns a profile and the knowledge base derived from exactly that
// profile snapshot. Any scrape, generation or store failure fails the call;
// stale data is never served as a fallback. Callers racing on the same
// username share one result. The shared work ignores any single caller's
// cancellation; a cancelled caller stops waiting and returns ctx.Err().
func (c *Coordinator) Ensure(ctx context.Context, username string) (*entity.Profile, *entity.KnowledgeBase, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(username, func() (interface{}, error) {
		profile, err := c.ensureProfile(shared, username)
		if err != nil {
			return nil, err
		}

		kb, err := c.ensureKnowledgeBase(shared, profile)
		if err != nil {
			return nil, err
		}

		return ensured{profile: profile, kb: kb}, nil
	})

	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, nil, res.Err
		}
		r := res.Val.(ensured)
		return r.profile, r.kb, nil
	}
}

// IsProfileFresh reports whether a profile cached at cachedAt is still usable at now.
func IsProfileFresh(cachedAt, now time.Time, maxAge time.Duration) bool {
	return now.Sub(cachedAt) < maxAge
}

func (c *Coordinator) ensureProfile(ctx context.Context, username string) (*entity.Profile, error) {
	stored, err := c.profiles.Get(ctx, username)
	if err != nil {
		return nil, apperror.Upstream("load profile", err)
	}

	if stored != nil && IsProfileFresh(stored.CachedAt, c.clock.Now(), c.maxProfileAge) {
		metrics.CacheLookups.WithLabelValues("profile", "fresh").Inc()
		return stored, nil
	}
	metrics.CacheLookups.WithLabelValues("profile", "stale").Inc()

	c.logger.Info("CACHE", "Profile missing or stale, scraping", map[string]interface{}{
		"username": username,
		"cached":   stored != nil,
	})

	start := time.Now()
	profile, err := c.source.Scrape(ctx, username)
	if err != nil {
		metrics.Regenerations.WithLabelValues("profile", "failure").Observe(time.Since(start).Seconds())
		return nil, apperror.Upstream(fmt.Sprintf("scrape profile %s", username), err)
	}
	metrics.Regenerations.WithLabelValues("profile", "success").Observe(time.Since(start).Seconds())

	profile.Username = username
	profile.CachedAt = c.clock.Now()

	if err := c.profiles.Put(ctx, profile); err != nil {
		return nil, apperror.Upstream("save profile", err)
	}

	c.publish(ctx, events.ProfileScraped(username, len(profile.Repositories), profile.CachedAt))
	return profile, nil
}

func (c *Coordinator) ensureKnowledgeBase(ctx context.Context, profile *entity.Profile) (*entity.KnowledgeBase, error) {
	stored, err := c.knowledgeBases.Get(ctx, profile.Username)
	if err != nil {
		return nil, apperror.Upstream("load knowledge base", err)
	}

	// Bound to one snapshot by exact timestamp, no tolerance window
	if stored != nil && stored.IsBoundTo(profile) {
		metrics.CacheLookups.WithLabelValues("knowledge_base", "fresh").Inc()
		return stored, nil
	}
	metrics.CacheLookups.WithLabelValues("knowledge_base", "stale").Inc()

	c.logger.Info("CACHE", "Knowledge base missing or stale, regenerating", map[string]interface{}{
		"username":  profile.Username,
		"cached_at": profile.CachedAt,
	})

	start := time.Now()
	kb, err := c.generator.Generate(ctx, profile)
	if err != nil {
		metrics.Regenerations.WithLabelValues("knowledge_base", "failure").Observe(time.Since(start).Seconds())
		return nil, apperror.Upstream(fmt.Sprintf("generate knowledge base %s", profile.Username), err)
	}
	metrics.Regenerations.WithLabelValues("knowledge_base", "success").Observe(time.Since(start).Seconds())

	if err := c.knowledgeBases.Put(ctx, kb); err != nil {
		return nil, apperror.Upstream("save knowledge base", err)
	}

	c.publish(ctx, events.KnowledgeBaseGenerated(kb.Username, len(kb.ProjectSummaries), kb.TokensUsed.TotalTokens, kb.GeneratedAt))
	return kb, nil
}

func (c *Coordinator) publish(ctx context.Context, event events.Event) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Error("CACHE", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
