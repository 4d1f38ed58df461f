package media

import (
	"context"

	"golang.org/x/sync/errgroup"

	"server/internal/infra"
)

// Coordinator fans keyword queries out to the configured providers. Two
// strategies exist: Resolve keeps the first non-empty hit walking the fixed
// priority order (archive pipeline), Collect queries every provider and
// concatenates the hits (asset browser). The priority order is data, not
// call-site logic; image categories try Unsplash before Pexels before
// Pixabay, videos skip Unsplash because it carries no video content.
type Coordinator struct {
	providers []Searcher
	log       infra.Logger
}

// NewCoordinator wires a coordinator over the given providers in priority
// order.
func NewCoordinator(log infra.Logger, providers ...Searcher) *Coordinator {
	return &Coordinator{providers: providers, log: log}
}

// Resolve returns the first non-empty provider result for the keyword and
// category, or nil when every provider comes up empty.
func (c *Coordinator) Resolve(ctx context.Context, keyword string, category Category) *Result {
	for _, p := range c.providers {
		res, err := p.Search(ctx, keyword, category)
		if err != nil {
			// Providers normalize their own failures; an error here is a
			// cancelled context, which ends the chain.
			return nil
		}
		if res != nil {
			return res
		}
	}
	c.log.Debug().Str("keyword", keyword).Str("category", string(category)).Msg("no provider returned a hit")
	return nil
}

// ResolvedSet holds the per-category winners for one keyword. Absent
// categories hold nil.
type ResolvedSet struct {
	Image      *Result
	Video      *Result
	Background *Result
}

// ResolveAll resolves the image, video and background categories for one
// keyword with a three-way concurrent fan-out.
func (c *Coordinator) ResolveAll(ctx context.Context, keyword string) ResolvedSet {
	var set ResolvedSet
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		set.Image = c.Resolve(ctx, keyword, CategoryImage)
		return nil
	})
	g.Go(func() error {
		set.Video = c.Resolve(ctx, keyword, CategoryVideo)
		return nil
	})
	g.Go(func() error {
		set.Background = c.Resolve(ctx, keyword, CategoryBackground)
		return nil
	})
	_ = g.Wait()
	return set
}

// Collect queries every provider for the category and returns the
// concatenation of all hits. Each provider call is independent; one failing
// or returning nothing never affects the others.
func (c *Coordinator) Collect(ctx context.Context, query string, category Category) []Result {
	perProvider := make([][]Result, len(c.providers))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range c.providers {
		g.Go(func() error {
			hits, err := p.SearchAll(ctx, query, category)
			if err != nil {
				return nil
			}
			perProvider[i] = hits
			return nil
		})
	}
	_ = g.Wait()
	var all []Result
	for _, hits := range perProvider {
		all = append(all, hits...)
	}
	return all
}
