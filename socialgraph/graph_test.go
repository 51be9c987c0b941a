package socialgraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devplatform/social-backend/model"
	"github.com/devplatform/social-backend/store/inmemory"
	"github.com/devplatform/social-backend/utils"
)

func newTestGraph(t *testing.T, users ...*model.User) *Graph {
	entities := inmemory.New()
	ctx := context.Background()
	for _, u := range users {
		require.NoError(t, entities.CreateUser(ctx, u))
	}
	return New(entities, entities)
}

func user(id string, private bool) *model.User {
	return &model.User{Id: id, Username: id, Email: id + "@example.com", IsPrivate: private}
}

func TestFollow_Bidirectional(t *testing.T) {
	graph := newTestGraph(t, user("alice", false), user("bob", false))
	ctx := context.Background()

	require.NoError(t, graph.Follow(ctx, "alice", "bob"))

	following, err := graph.Following(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, following)

	followers, err := graph.Followers(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, followers)
}

func TestFollow_Idempotent(t *testing.T) {
	graph := newTestGraph(t, user("alice", false), user("bob", false))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, graph.Follow(ctx, "alice", "bob"))
	}

	following, err := graph.Following(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, following, 1)
}

func TestFollow_SelfRejected(t *testing.T) {
	graph := newTestGraph(t, user("alice", false))

	err := graph.Follow(context.Background(), "alice", "alice")
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestFollow_UnknownTarget(t *testing.T) {
	graph := newTestGraph(t, user("alice", false))

	err := graph.Follow(context.Background(), "alice", "ghost")
	require.Error(t, err)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestUnfollow_NonFollowedIsNoOp(t *testing.T) {
	graph := newTestGraph(t, user("alice", false), user("bob", false))
	ctx := context.Background()

	require.NoError(t, graph.Unfollow(ctx, "alice", "bob"))

	require.NoError(t, graph.Follow(ctx, "alice", "bob"))
	require.NoError(t, graph.Unfollow(ctx, "alice", "bob"))
	require.NoError(t, graph.Unfollow(ctx, "alice", "bob"))

	following, err := graph.Following(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, following)

	followers, err := graph.Followers(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, followers)
}

func TestCanView(t *testing.T) {
	graph := newTestGraph(t,
		user("public", false),
		user("private", true),
		user("viewer", false),
	)
	ctx := context.Background()

	cases := []struct {
		name    string
		viewer  string
		owner   string
		follows bool
		want    bool
	}{
		{"public account", "viewer", "public", false, true},
		{"own account", "private", "private", false, true},
		{"private not followed", "viewer", "private", false, false},
		{"private followed", "viewer", "private", true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.follows {
				require.NoError(t, graph.Follow(ctx, tc.viewer, tc.owner))
			}
			got, err := graph.CanView(ctx, tc.viewer, tc.owner)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
