package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devplatform/social-backend/model"
	"github.com/devplatform/social-backend/store"
	"github.com/devplatform/social-backend/utils"
)

// Store implements store.EntityStore in memory. It mirrors the Postgres
// implementation's semantics (set membership, comment tombstones, image
// hash uniqueness) and is used by unit tests and local development.
type Store struct {
	mu sync.RWMutex

	users        map[string]*model.User
	usersByEmail map[string]string

	posts        map[string]*model.Post
	deletedPosts map[string]bool

	comments         map[string]*model.Comment // key commentId
	deletedComments  map[string]*model.Comment // tombstones, key commentId
	commentsByPost   map[string][]string
	commentsByAuthor map[string][]string

	images map[string]*model.Image

	likes     map[string]map[string]bool // postId -> set<userId>
	saved     map[string]map[string]bool // userId -> set<postId>
	savedAt   map[string]map[string]time.Time
	following map[string]map[string]bool // followerId -> set<followeeId>
	followers map[string]map[string]bool // followeeId -> set<followerId>
}

func New() *Store {
	return &Store{
		users:            make(map[string]*model.User),
		usersByEmail:     make(map[string]string),
		posts:            make(map[string]*model.Post),
		deletedPosts:     make(map[string]bool),
		comments:         make(map[string]*model.Comment),
		deletedComments:  make(map[string]*model.Comment),
		commentsByPost:   make(map[string][]string),
		commentsByAuthor: make(map[string][]string),
		images:           make(map[string]*model.Image),
		likes:            make(map[string]map[string]bool),
		saved:            make(map[string]map[string]bool),
		savedAt:          make(map[string]map[string]time.Time),
		following:        make(map[string]map[string]bool),
		followers:        make(map[string]map[string]bool),
	}
}

var _ store.EntityStore = (*Store)(nil)

// === Users ===

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usersByEmail[user.Email]; ok {
		return utils.Conflict("user with email %s already exists", user.Email)
	}
	if user.Id == "" {
		user.Id = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	clone := *user
	s.users[user.Id] = &clone
	s.usersByEmail[user.Email] = user.Id
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, utils.NotFound("user %s not found", id)
	}
	clone := *user
	return &clone, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		clone := *u
		users = append(users, &clone)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (s *Store) UpdateUserProfile(ctx context.Context, id string, update store.UserProfileUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, utils.NotFound("user %s not found", id)
	}
	previous := *user

	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.ProfilePicture != nil {
		user.ProfilePicture = *update.ProfilePicture
	}
	if update.IsPrivate != nil {
		user.IsPrivate = *update.IsPrivate
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.Links != nil {
		user.Links = update.Links
	}
	if update.Skills != nil {
		user.Skills = update.Skills
	}
	user.UpdatedAt = time.Now()
	return &previous, nil
}

// === Posts ===

func (s *Store) CreatePost(ctx context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if post.Id == "" {
		post.Id = uuid.New().String()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	clone := *post
	s.posts[post.Id] = &clone
	return nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, utils.NotFound("post %s not found", id)
	}
	clone := *post
	return &clone, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return utils.NotFound("post %s not found", id)
	}
	delete(s.posts, id)
	s.deletedPosts[id] = true
	return nil
}

// sortNewestFirst orders posts by created_at desc, id desc, the same
// composite key the Postgres store orders by.
func sortNewestFirst(posts []*model.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].Id > posts[j].Id
	})
}

func (s *Store) ListPostsByAuthors(ctx context.Context, authorIds []string) ([]*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	authors := make(map[string]bool, len(authorIds))
	for _, id := range authorIds {
		authors[id] = true
	}
	posts := []*model.Post{}
	for _, p := range s.posts {
		if authors[p.UserId] {
			clone := *p
			posts = append(posts, &clone)
		}
	}
	sortNewestFirst(posts)
	return posts, nil
}

func (s *Store) ListPostsExcludingAuthors(ctx context.Context, authorIds []string) ([]*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	excluded := make(map[string]bool, len(authorIds))
	for _, id := range authorIds {
		excluded[id] = true
	}
	posts := []*model.Post{}
	for _, p := range s.posts {
		if !excluded[p.UserId] {
			clone := *p
			posts = append(posts, &clone)
		}
	}
	sortNewestFirst(posts)
	return posts, nil
}

func (s *Store) ListPostsByIds(ctx context.Context, ids []string) ([]*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := []*model.Post{}
	for _, id := range ids {
		if p, ok := s.posts[id]; ok {
			clone := *p
			posts = append(posts, &clone)
		}
	}
	sortNewestFirst(posts)
	return posts, nil
}

// === Comments ===

func (s *Store) AddComment(ctx context.Context, comment *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if comment.Id == "" {
		comment.Id = uuid.New().String()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	clone := *comment
	s.comments[comment.Id] = &clone
	s.commentsByPost[comment.PostId] = append(s.commentsByPost[comment.PostId], comment.Id)
	s.commentsByAuthor[comment.UserId] = append(s.commentsByAuthor[comment.UserId], comment.Id)
	return nil
}

func (s *Store) GetComment(ctx context.Context, postId, commentId string) (*model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[commentId]
	if !ok || comment.PostId != postId {
		return nil, utils.NotFound("comment %s not found on post %s", commentId, postId)
	}
	clone := *comment
	return &clone, nil
}

func (s *Store) GetCommentAny(ctx context.Context, postId, commentId string) (*model.Comment, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if comment, ok := s.comments[commentId]; ok && comment.PostId == postId {
		clone := *comment
		return &clone, false, nil
	}
	if tombstone, ok := s.deletedComments[commentId]; ok && tombstone.PostId == postId {
		clone := *tombstone
		return &clone, true, nil
	}
	return nil, false, utils.NotFound("comment %s not found on post %s", commentId, postId)
}

func (s *Store) DeleteComment(ctx context.Context, postId, commentId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[commentId]
	if !ok || comment.PostId != postId {
		return utils.NotFound("comment %s not found on post %s", commentId, postId)
	}
	delete(s.comments, commentId)
	s.deletedComments[commentId] = comment
	return nil
}

func (s *Store) ListComments(ctx context.Context, postId string) ([]*model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comments := []*model.Comment{}
	for _, id := range s.commentsByPost[postId] {
		if c, ok := s.comments[id]; ok {
			clone := *c
			comments = append(comments, &clone)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		}
		return comments[i].Id < comments[j].Id
	})
	return comments, nil
}

func (s *Store) UpdateCommentAuthorSnapshot(ctx context.Context, userId, username, profilePicture string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated int64
	for _, id := range s.commentsByAuthor[userId] {
		if c, ok := s.comments[id]; ok {
			c.Username = username
			c.ProfilePicture = profilePicture
			updated++
		}
	}
	return updated, nil
}

// === Images ===

func (s *Store) GetImage(ctx context.Context, contentHash string) (*model.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	image, ok := s.images[contentHash]
	if !ok {
		return nil, utils.NotFound("image %s not found", contentHash)
	}
	clone := *image
	return &clone, nil
}

func (s *Store) InsertImage(ctx context.Context, image *model.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.images[image.ContentHash]; ok {
		return utils.Conflict("image %s already exists", image.ContentHash)
	}
	image.CreatedAt = time.Now()
	clone := *image
	s.images[image.ContentHash] = &clone
	return nil
}

func (s *Store) DeleteImage(ctx context.Context, contentHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.images[contentHash]; !ok {
		return utils.NotFound("image %s not found", contentHash)
	}
	delete(s.images, contentHash)
	return nil
}

func (s *Store) ImageReferenced(ctx context.Context, contentHash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.posts {
		for _, img := range p.Images {
			if img.ContentHash == contentHash {
				return true, nil
			}
		}
	}
	return false, nil
}

// === Likes / saves ===

func (s *Store) AddLike(ctx context.Context, postId, userId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.likes[postId] == nil {
		s.likes[postId] = make(map[string]bool)
	}
	s.likes[postId][userId] = true
	return nil
}

func (s *Store) RemoveLike(ctx context.Context, postId, userId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.likes[postId], userId)
	return nil
}

func (s *Store) ListLikes(ctx context.Context, postId string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userIds := make([]string, 0, len(s.likes[postId]))
	for id := range s.likes[postId] {
		userIds = append(userIds, id)
	}
	sort.Strings(userIds)
	return userIds, nil
}

func (s *Store) ToggleSave(ctx context.Context, userId, postId string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saved[userId] == nil {
		s.saved[userId] = make(map[string]bool)
		s.savedAt[userId] = make(map[string]time.Time)
	}
	if s.saved[userId][postId] {
		delete(s.saved[userId], postId)
		delete(s.savedAt[userId], postId)
		return false, nil
	}
	s.saved[userId][postId] = true
	s.savedAt[userId][postId] = time.Now()
	return true, nil
}

func (s *Store) ListSavedPostIds(ctx context.Context, userId string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	postIds := make([]string, 0, len(s.saved[userId]))
	for id := range s.saved[userId] {
		postIds = append(postIds, id)
	}
	sort.Slice(postIds, func(i, j int) bool {
		return s.savedAt[userId][postIds[i]].Before(s.savedAt[userId][postIds[j]])
	})
	return postIds, nil
}

// === Follow edges ===

func (s *Store) AddFollow(ctx context.Context, followerId, followeeId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.following[followerId] == nil {
		s.following[followerId] = make(map[string]bool)
	}
	if s.followers[followeeId] == nil {
		s.followers[followeeId] = make(map[string]bool)
	}
	// Both directions mutate under the same lock, readers never observe a
	// half-established edge.
	s.following[followerId][followeeId] = true
	s.followers[followeeId][followerId] = true
	return nil
}

func (s *Store) RemoveFollow(ctx context.Context, followerId, followeeId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.following[followerId], followeeId)
	delete(s.followers[followeeId], followerId)
	return nil
}

func (s *Store) IsFollowing(ctx context.Context, followerId, followeeId string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.following[followerId][followeeId], nil
}

func (s *Store) ListFollowing(ctx context.Context, userId string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.following[userId]))
	for id := range s.following[userId] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) ListFollowers(ctx context.Context, userId string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.followers[userId]))
	for id := range s.followers[userId] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
