package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/devplatform/social-backend/model"
	"github.com/devplatform/social-backend/store"
	"github.com/devplatform/social-backend/utils"
)

// Store implements store.EntityStore on Postgres through gorm. All set
// mutations go through ON CONFLICT / keyed DELETE so that concurrent
// requests racing on the same record cannot lose updates.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ store.EntityStore = (*Store)(nil)

// isDuplicateKey detects a unique-constraint violation. gorm does not
// normalize driver errors on this version, so match the Postgres message.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key value")
}

// === Users ===

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	if user.Id == "" {
		user.Id = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return utils.Conflict("user with email %s already exists", user.Email)
		}
		return errors.Wrap(err, "create user")
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("user %s not found", id)
		}
		return nil, errors.Wrap(err, "get user")
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return users, nil
}

func (s *Store) UpdateUserProfile(ctx context.Context, id string, update store.UserProfileUpdate) (*model.User, error) {
	var previous model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&previous, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("user %s not found", id)
			}
			return err
		}

		fields := map[string]interface{}{}
		if update.Username != nil {
			fields["username"] = *update.Username
		}
		if update.ProfilePicture != nil {
			fields["profile_picture"] = *update.ProfilePicture
		}
		if update.IsPrivate != nil {
			fields["is_private"] = *update.IsPrivate
		}
		if update.Bio != nil {
			fields["bio"] = *update.Bio
		}
		if update.Links != nil {
			fields["links"] = update.Links
		}
		if update.Skills != nil {
			fields["skills"] = update.Skills
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
	})
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "update user profile")
	}
	return &previous, nil
}

// === Posts ===

func (s *Store) CreatePost(ctx context.Context, post *model.Post) error {
	if post.Id == "" {
		post.Id = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return errors.Wrap(err, "create post")
	}
	return nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).Preload("Images").First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("post %s not found", id)
		}
		return nil, errors.Wrap(err, "get post")
	}
	return &post, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Post{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete post")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound("post %s not found", id)
	}
	return nil
}

func (s *Store) ListPostsByAuthors(ctx context.Context, authorIds []string) ([]*model.Post, error) {
	if len(authorIds) == 0 {
		return []*model.Post{}, nil
	}
	var posts []*model.Post
	err := s.db.WithContext(ctx).Preload("Images").
		Where("user_id IN ?", authorIds).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, errors.Wrap(err, "list posts by authors")
	}
	return posts, nil
}

func (s *Store) ListPostsExcludingAuthors(ctx context.Context, authorIds []string) ([]*model.Post, error) {
	query := s.db.WithContext(ctx).Preload("Images").
		Order("created_at DESC, id DESC")
	if len(authorIds) > 0 {
		query = query.Where("user_id NOT IN ?", authorIds)
	}
	var posts []*model.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, errors.Wrap(err, "list posts excluding authors")
	}
	return posts, nil
}

func (s *Store) ListPostsByIds(ctx context.Context, ids []string) ([]*model.Post, error) {
	if len(ids) == 0 {
		return []*model.Post{}, nil
	}
	var posts []*model.Post
	err := s.db.WithContext(ctx).Preload("Images").
		Where("id IN ?", ids).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, errors.Wrap(err, "list posts by ids")
	}
	return posts, nil
}

// === Comments ===

func (s *Store) AddComment(ctx context.Context, comment *model.Comment) error {
	if comment.Id == "" {
		comment.Id = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return errors.Wrap(err, "add comment")
	}
	return nil
}

func (s *Store) GetComment(ctx context.Context, postId, commentId string) (*model.Comment, error) {
	var comment model.Comment
	err := s.db.WithContext(ctx).
		First(&comment, "id = ? AND post_id = ?", commentId, postId).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("comment %s not found on post %s", commentId, postId)
		}
		return nil, errors.Wrap(err, "get comment")
	}
	return &comment, nil
}

func (s *Store) GetCommentAny(ctx context.Context, postId, commentId string) (*model.Comment, bool, error) {
	var comment model.Comment
	err := s.db.WithContext(ctx).Unscoped().
		First(&comment, "id = ? AND post_id = ?", commentId, postId).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, utils.NotFound("comment %s not found on post %s", commentId, postId)
		}
		return nil, false, errors.Wrap(err, "get comment")
	}
	return &comment, comment.DeletedAt.Valid, nil
}

func (s *Store) DeleteComment(ctx context.Context, postId, commentId string) error {
	res := s.db.WithContext(ctx).
		Delete(&model.Comment{}, "id = ? AND post_id = ?", commentId, postId)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete comment")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound("comment %s not found on post %s", commentId, postId)
	}
	return nil
}

func (s *Store) ListComments(ctx context.Context, postId string) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postId).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, errors.Wrap(err, "list comments")
	}
	return comments, nil
}

func (s *Store) UpdateCommentAuthorSnapshot(ctx context.Context, userId, username, profilePicture string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Comment{}).
		Where("user_id = ?", userId).
		Updates(map[string]interface{}{
			"username":        username,
			"profile_picture": profilePicture,
		})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "update comment snapshots")
	}
	return res.RowsAffected, nil
}

// === Images ===

func (s *Store) GetImage(ctx context.Context, contentHash string) (*model.Image, error) {
	var image model.Image
	err := s.db.WithContext(ctx).First(&image, "content_hash = ?", contentHash).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("image %s not found", contentHash)
		}
		return nil, errors.Wrap(err, "get image")
	}
	return &image, nil
}

func (s *Store) InsertImage(ctx context.Context, image *model.Image) error {
	image.CreatedAt = time.Now()
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(image)
	if res.Error != nil {
		return errors.Wrap(res.Error, "insert image")
	}
	if res.RowsAffected == 0 {
		// Another writer committed the same hash first.
		return utils.Conflict("image %s already exists", image.ContentHash)
	}
	return nil
}

func (s *Store) DeleteImage(ctx context.Context, contentHash string) error {
	res := s.db.WithContext(ctx).Delete(&model.Image{}, "content_hash = ?", contentHash)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete image")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound("image %s not found", contentHash)
	}
	return nil
}

func (s *Store) ImageReferenced(ctx context.Context, contentHash string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.PostImage{}).
		Where("content_hash = ?", contentHash).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "count image references")
	}
	return count > 0, nil
}

// === Likes / saves ===

func (s *Store) AddLike(ctx context.Context, postId, userId string) error {
	like := model.PostLike{PostId: postId, UserId: userId, CreatedAt: time.Now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like).Error
	if err != nil {
		return errors.Wrap(err, "add like")
	}
	return nil
}

func (s *Store) RemoveLike(ctx context.Context, postId, userId string) error {
	err := s.db.WithContext(ctx).
		Delete(&model.PostLike{}, "post_id = ? AND user_id = ?", postId, userId).Error
	if err != nil {
		return errors.Wrap(err, "remove like")
	}
	return nil
}

func (s *Store) ListLikes(ctx context.Context, postId string) ([]string, error) {
	var userIds []string
	err := s.db.WithContext(ctx).Model(&model.PostLike{}).
		Where("post_id = ?", postId).
		Order("created_at ASC").
		Pluck("user_id", &userIds).Error
	if err != nil {
		return nil, errors.Wrap(err, "list likes")
	}
	return userIds, nil
}

func (s *Store) ToggleSave(ctx context.Context, userId, postId string) (bool, error) {
	saved := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.SavedPost{}, "user_id = ? AND post_id = ?", userId, postId)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		saved = true
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.SavedPost{UserId: userId, PostId: postId, CreatedAt: time.Now()}).Error
	})
	if err != nil {
		return false, errors.Wrap(err, "toggle save")
	}
	return saved, nil
}

func (s *Store) ListSavedPostIds(ctx context.Context, userId string) ([]string, error) {
	var postIds []string
	err := s.db.WithContext(ctx).Model(&model.SavedPost{}).
		Where("user_id = ?", userId).
		Order("created_at ASC").
		Pluck("post_id", &postIds).Error
	if err != nil {
		return nil, errors.Wrap(err, "list saved posts")
	}
	return postIds, nil
}

// === Follow edges ===

func (s *Store) AddFollow(ctx context.Context, followerId, followeeId string) error {
	edge := model.UserFollow{FollowerId: followerId, FolloweeId: followeeId, CreatedAt: time.Now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge).Error
	if err != nil {
		return errors.Wrap(err, "add follow")
	}
	return nil
}

func (s *Store) RemoveFollow(ctx context.Context, followerId, followeeId string) error {
	err := s.db.WithContext(ctx).
		Delete(&model.UserFollow{}, "follower_id = ? AND followee_id = ?", followerId, followeeId).Error
	if err != nil {
		return errors.Wrap(err, "remove follow")
	}
	return nil
}

func (s *Store) IsFollowing(ctx context.Context, followerId, followeeId string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.UserFollow{}).
		Where("follower_id = ? AND followee_id = ?", followerId, followeeId).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "is following")
	}
	return count > 0, nil
}

func (s *Store) ListFollowing(ctx context.Context, userId string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&model.UserFollow{}).
		Where("follower_id = ?", userId).
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "list following")
	}
	return ids, nil
}

func (s *Store) ListFollowers(ctx context.Context, userId string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&model.UserFollow{}).
		Where("followee_id = ?", userId).
		Pluck("follower_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "list followers")
	}
	return ids, nil
}
