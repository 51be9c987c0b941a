package identity

import (
	"context"

	"github.com/devplatform/social-backend/store"
)

// Identity is what the rest of the system may know about a user without
// trusting denormalized snapshots: the current byline fields plus the
// privacy flag.
type Identity struct {
	UserId         string `json:"user_id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture"`
	IsPrivate      bool   `json:"is_private"`
}

// Provider resolves fresh identities. Feed author bylines read through
// here instead of through post- or comment-embedded copies.
type Provider interface {
	GetIdentity(ctx context.Context, userId string) (*Identity, error)
	// Invalidate drops any cached identity after a profile edit.
	Invalidate(ctx context.Context, userId string)
}

// StoreProvider reads identities straight from the entity store.
type StoreProvider struct {
	users store.UserStore
}

func NewStoreProvider(users store.UserStore) *StoreProvider {
	return &StoreProvider{users: users}
}

func (p *StoreProvider) GetIdentity(ctx context.Context, userId string) (*Identity, error) {
	user, err := p.users.GetUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	return &Identity{
		UserId:         user.Id,
		Username:       user.Username,
		ProfilePicture: user.ProfilePicture,
		IsPrivate:      user.IsPrivate,
	}, nil
}

func (p *StoreProvider) Invalidate(ctx context.Context, userId string) {}

var _ Provider = (*StoreProvider)(nil)
