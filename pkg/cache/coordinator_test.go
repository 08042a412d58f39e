package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"openbook-be/internal/entity"
	"openbook-be/internal/pkg/apperror"
	"openbook-be/internal/pkg/logger"
	"openbook-be/internal/repository/contract"
	"openbook-be/internal/repository/implementation"
	"openbook-be/pkg/blobstore"
	"openbook-be/pkg/clock"
	"openbook-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	calls int
	err   error
}

func (f *fakeSource) Scrape(_ context.Context, username string) (*entity.Profile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Profile{
		Username:     username,
		Repositories: []entity.Repository{{Name: "tool", ReadmeContent: "docs"}},
	}, nil
}

type fakeGenerator struct {
	calls int
	err   error
	clock clock.Clock
}

func (f *fakeGenerator) Generate(_ context.Context, profile *entity.Profile) (*entity.KnowledgeBase, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &entity.KnowledgeBase{
		Username:         profile.Username,
		GeneratedAt:      f.clock.Now(),
		ProfileScrapedAt: profile.CachedAt,
		ProjectSummaries: []entity.ProjectSummary{{RepositoryName: "tool", AiSummary: "a tool"}},
		TokensUsed:       entity.NewTokenUsage(10, 5),
	}, nil
}

type recordingPublisher struct {
	types []string
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.types = append(p.types, event.EventType())
	return p.err
}

type fixture struct {
	clock     *clock.Fake
	source    *fakeSource
	generator *fakeGenerator
	publisher *recordingPublisher
	profiles  contract.ProfileRepository
	kbs       contract.KnowledgeBaseRepository
	coord     *Coordinator
}

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newFixture() *fixture {
	store := blobstore.NewMemoryStore()
	f := &fixture{
		clock:     clock.NewFake(t0),
		source:    &fakeSource{},
		publisher: &recordingPublisher{},
	}
	f.generator = &fakeGenerator{clock: f.clock}
	f.profiles = implementation.NewProfileRepository(store, "github-profiles")
	f.kbs = implementation.NewKnowledgeBaseRepository(store, "knowledge-bases", f.profiles)
	f.coord = NewCoordinator(f.profiles, f.kbs, f.source, f.generator, f.publisher, f.clock, logger.NewNop(), 24*time.Hour)
	return f
}

func TestEnsure_ColdStart(t *testing.T) {
	f := newFixture()

	profile, kb, err := f.coord.Ensure(context.Background(), "octocat")
	require.NoError(t, err)

	assert.Equal(t, 1, f.source.calls)
	assert.Equal(t, 1, f.generator.calls)
	assert.True(t, profile.CachedAt.Equal(t0))
	assert.True(t, kb.IsBoundTo(profile))
	assert.Equal(t, []string{events.TypeProfileScraped, events.TypeKnowledgeBaseGenerated}, f.publisher.types)

	stored, err := f.kbs.Get(context.Background(), "octocat")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.ProfileScrapedAt.Equal(t0))
}

func TestEnsure_FreshnessBoundary(t *testing.T) {
	tests := []struct {
		name        string
		elapsed     time.Duration
		wantScrapes int
	}{
		{"just before max age", 24*time.Hour - time.Second, 1},
		{"exactly max age", 24 * time.Hour, 2},
		{"just after max age", 24*time.Hour + time.Second, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()

			_, _, err := f.coord.Ensure(ctx, "octocat")
			require.NoError(t, err)

			f.clock.Advance(tt.elapsed)
			profile, kb, err := f.coord.Ensure(ctx, "octocat")
			require.NoError(t, err)

			assert.Equal(t, tt.wantScrapes, f.source.calls)
			// knowledge base follows the profile snapshot
			assert.Equal(t, tt.wantScrapes, f.generator.calls)
			assert.True(t, kb.IsBoundTo(profile))
		})
	}
}

func TestEnsure_KnowledgeBaseExactMatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.profiles.Put(ctx, &entity.Profile{Username: "octocat", CachedAt: t0}))
	require.NoError(t, f.kbs.Put(ctx, &entity.KnowledgeBase{
		Username:         "octocat",
		ProfileScrapedAt: t0.Add(time.Nanosecond),
	}))

	profile, kb, err := f.coord.Ensure(ctx, "octocat")
	require.NoError(t, err)

	assert.Equal(t, 0, f.source.calls)
	assert.Equal(t, 1, f.generator.calls)
	assert.True(t, kb.ProfileScrapedAt.Equal(profile.CachedAt))

	_, _, err = f.coord.Ensure(ctx, "octocat")
	require.NoError(t, err)
	assert.Equal(t, 1, f.generator.calls)
}

func TestEnsure_ScrapeFailureHasNoStaleFallback(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.profiles.Put(ctx, &entity.Profile{Username: "octocat", CachedAt: t0.Add(-48 * time.Hour)}))
	f.source.err = errors.New("github down")

	_, _, err := f.coord.Ensure(ctx, "octocat")
	require.Error(t, err)
	assert.True(t, apperror.IsUpstream(err))
	assert.Equal(t, 0, f.generator.calls)
}

func TestEnsure_GenerationFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.generator.err = errors.New("model down")

	_, _, err := f.coord.Ensure(context.Background(), "octocat")
	require.Error(t, err)

	exists, err := f.kbs.Exists(context.Background(), "octocat")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEnsure_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("bus unavailable")

	_, _, err := f.coord.Ensure(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Len(t, f.publisher.types, 2)
}

func TestIsProfileFresh(t *testing.T) {
	assert.True(t, IsProfileFresh(t0, t0.Add(time.Hour), 2*time.Hour))
	assert.False(t, IsProfileFresh(t0, t0.Add(2*time.Hour), 2*time.Hour))
}

type gatedSource struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSource) Scrape(_ context.Context, username string) (*entity.Profile, error) {
	if g.calls.Add(1) == 1 {
		close(g.entered)
	}
	<-g.release
	return &entity.Profile{Username: username}, nil
}

func TestEnsure_ConcurrentColdStartScrapesOnce(t *testing.T) {
	f := newFixture()
	source := &gatedSource{entered: make(chan struct{}), release: make(chan struct{})}
	f.coord = NewCoordinator(f.profiles, f.kbs, source, f.generator, nil, f.clock, logger.NewNop(), 24*time.Hour)

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.coord.Ensure(context.Background(), "octocat")
			errs <- err
		}()
	}

	<-source.entered
	time.Sleep(20 * time.Millisecond)
	close(source.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), source.calls.Load())
	assert.Equal(t, 1, f.generator.calls)
}

type cancelAwareSource struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *cancelAwareSource) Scrape(ctx context.Context, username string) (*entity.Profile, error) {
	s.once.Do(func() { close(s.entered) })
	<-s.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &entity.Profile{Username: username}, nil
}

func TestEnsure_CancelledCallerDoesNotFailWaiters(t *testing.T) {
	f := newFixture()
	source := &cancelAwareSource{entered: make(chan struct{}), release: make(chan struct{})}
	f.coord = NewCoordinator(f.profiles, f.kbs, source, f.generator, nil, f.clock, logger.NewNop(), 24*time.Hour)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, _, err := f.coord.Ensure(firstCtx, "octocat")
		firstErr <- err
	}()
	<-source.entered

	type result struct {
		profile *entity.Profile
		err     error
	}
	second := make(chan result, 1)
	go func() {
		profile, _, err := f.coord.Ensure(context.Background(), "octocat")
		second <- result{profile: profile, err: err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(source.release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, "octocat", res.profile.Username)
	assert.Equal(t, 1, f.generator.calls)
}
