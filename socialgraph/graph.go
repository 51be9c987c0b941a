package socialgraph

import (
	"context"

	"github.com/devplatform/social-backend/store"
	"github.com/devplatform/social-backend/utils"
)

// Graph owns the follower/following edges and the privacy-aware
// visibility predicate gating post listings.
type Graph struct {
	edges store.GraphStore
	users store.UserStore
}

func New(edges store.GraphStore, users store.UserStore) *Graph {
	return &Graph{edges: edges, users: users}
}

// Follow establishes follower -> target. Idempotent: following an
// already-followed user succeeds and leaves state unchanged.
func (g *Graph) Follow(ctx context.Context, followerId, targetId string) error {
	if followerId == targetId {
		return utils.ValidationError("cannot follow yourself")
	}
	if _, err := g.users.GetUser(ctx, targetId); err != nil {
		return err
	}
	if _, err := g.users.GetUser(ctx, followerId); err != nil {
		return err
	}
	return g.edges.AddFollow(ctx, followerId, targetId)
}

// Unfollow removes the edge if present. Unfollowing a non-followed user
// succeeds silently.
func (g *Graph) Unfollow(ctx context.Context, followerId, targetId string) error {
	if followerId == targetId {
		return utils.ValidationError("cannot unfollow yourself")
	}
	return g.edges.RemoveFollow(ctx, followerId, targetId)
}

// Following returns the ids the user follows.
func (g *Graph) Following(ctx context.Context, userId string) ([]string, error) {
	return g.edges.ListFollowing(ctx, userId)
}

// Followers returns the ids following the user.
func (g *Graph) Followers(ctx context.Context, userId string) ([]string, error) {
	return g.edges.ListFollowers(ctx, userId)
}

// CanView reports whether viewer may see owner's posts: public account,
// the owner themselves, or a follower of a private account.
func (g *Graph) CanView(ctx context.Context, viewerId, ownerId string) (bool, error) {
	if viewerId == ownerId {
		return true, nil
	}
	owner, err := g.users.GetUser(ctx, ownerId)
	if err != nil {
		return false, err
	}
	if !owner.IsPrivate {
		return true, nil
	}
	return g.edges.IsFollowing(ctx, viewerId, ownerId)
}
