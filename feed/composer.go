package feed

import (
	"context"

	"github.com/devplatform/social-backend/identity"
	"github.com/devplatform/social-backend/model"
	"github.com/devplatform/social-backend/socialgraph"
	"github.com/devplatform/social-backend/store"
)

// FeedPost is a post hydrated with its author's current byline. The
// byline comes from the identity provider, never from denormalized
// copies, so a feed rendered right after a profile edit already shows
// the new name even while comment snapshots are still converging.
type FeedPost struct {
	model.Post
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture"`
}

// Composer builds the personalized two-partition feed.
type Composer struct {
	posts      store.PostStore
	graph      *socialgraph.Graph
	identities identity.Provider
}

func NewComposer(posts store.PostStore, graph *socialgraph.Graph, identities identity.Provider) *Composer {
	return &Composer{posts: posts, graph: graph, identities: identities}
}

// ComposeFeed returns the viewer's feed: first every post authored by
// the viewer or an account they follow, then every other post whose
// author's privacy admits the viewer. Each partition is ordered newest
// first (created_at desc, id desc); the partitions are concatenated,
// never interleaved. Posts by private, non-followed authors are absent
// entirely.
func (c *Composer) ComposeFeed(ctx context.Context, viewerId string) ([]*FeedPost, error) {
	if _, err := c.identities.GetIdentity(ctx, viewerId); err != nil {
		return nil, err
	}

	followed, err := c.graph.Following(ctx, viewerId)
	if err != nil {
		return nil, err
	}
	firstPartyAuthors := append([]string{viewerId}, followed...)

	followedPosts, err := c.posts.ListPostsByAuthors(ctx, firstPartyAuthors)
	if err != nil {
		return nil, err
	}

	otherPosts, err := c.posts.ListPostsExcludingAuthors(ctx, firstPartyAuthors)
	if err != nil {
		return nil, err
	}

	// One visibility decision per distinct author, not per post.
	visible := map[string]bool{}
	visiblePosts := make([]*model.Post, 0, len(otherPosts))
	for _, post := range otherPosts {
		canView, decided := visible[post.UserId]
		if !decided {
			canView, err = c.graph.CanView(ctx, viewerId, post.UserId)
			if err != nil {
				return nil, err
			}
			visible[post.UserId] = canView
		}
		if canView {
			visiblePosts = append(visiblePosts, post)
		}
	}

	return c.Hydrate(ctx, append(followedPosts, visiblePosts...))
}

// Hydrate attaches current author bylines to posts, preserving order.
func (c *Composer) Hydrate(ctx context.Context, posts []*model.Post) ([]*FeedPost, error) {
	bylines := map[string]*identity.Identity{}
	hydrated := make([]*FeedPost, 0, len(posts))
	for _, post := range posts {
		byline, ok := bylines[post.UserId]
		if !ok {
			var err error
			byline, err = c.identities.GetIdentity(ctx, post.UserId)
			if err != nil {
				return nil, err
			}
			bylines[post.UserId] = byline
		}
		hydrated = append(hydrated, &FeedPost{
			Post:           *post,
			Username:       byline.Username,
			ProfilePicture: byline.ProfilePicture,
		})
	}
	return hydrated, nil
}
