package server

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"gorm.io/datatypes"

	"github.com/devplatform/social-backend/model"
	"github.com/devplatform/social-backend/propagator"
	"github.com/devplatform/social-backend/store"
	"github.com/devplatform/social-backend/utils"
)

const maxPostImages = 10

type handlers struct {
	deps Deps
}

// requesterId resolves the acting user. Auth middleware (excluded glue)
// is expected to set the X-User-Id header after token verification; a
// user_id query param is accepted for direct tooling.
func requesterId(c *gin.Context) string {
	if id := c.GetHeader("X-User-Id"); id != "" {
		return id
	}
	return c.Query("user_id")
}

// publicUser is the user payload crossing the boundary: no email, no
// credential digest.
type publicUser struct {
	Id             string         `json:"id"`
	Username       string         `json:"username"`
	ProfilePicture string         `json:"profile_picture"`
	IsPrivate      bool           `json:"is_private"`
	Bio            string         `json:"bio"`
	Links          datatypes.JSON `json:"links,omitempty"`
	Skills         datatypes.JSON `json:"skills,omitempty"`
}

func toPublicUser(user *model.User) *publicUser {
	out := &publicUser{}
	if err := copier.Copy(out, user); err != nil {
		return &publicUser{Id: user.Id, Username: user.Username}
	}
	return out
}

// === Posts ===

type createPostRequest struct {
	UserId      string   `json:"user_id"`
	Content     string   `json:"content"`
	ImageHashes []string `json:"image_hashes"`
}

func (h *handlers) createPost(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		h.createPostMultipart(c)
		return
	}

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, utils.ValidationError("invalid request body"))
		return
	}
	if req.UserId == "" {
		req.UserId = requesterId(c)
	}
	if req.UserId == "" {
		respondError(c, utils.ValidationError("user_id is required"))
		return
	}
	if req.Content == "" {
		respondError(c, utils.ValidationError("content is required"))
		return
	}
	if len(req.ImageHashes) > maxPostImages {
		respondError(c, utils.ValidationError("a post may attach at most %d images", maxPostImages))
		return
	}
	if _, err := h.deps.Store.GetUser(c.Request.Context(), req.UserId); err != nil {
		respondError(c, err)
		return
	}

	images := make([]model.PostImage, 0, len(req.ImageHashes))
	for i, hash := range req.ImageHashes {
		image, err := h.deps.Store.GetImage(c.Request.Context(), hash)
		if err != nil {
			respondError(c, err)
			return
		}
		images = append(images, model.PostImage{
			Position:    i,
			ContentHash: image.ContentHash,
			Url:         image.Url,
		})
	}

	post := &model.Post{UserId: req.UserId, Content: req.Content, Images: images}
	if err := h.deps.Store.CreatePost(c.Request.Context(), post); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// createPostMultipart handles content plus raw files in one request.
// Every file goes through the dedup media store before the post is
// committed; any upload failure aborts the whole creation so a post can
// never reference an image that was not stored.
func (h *handlers) createPostMultipart(c *gin.Context) {
	userId := c.PostForm("user_id")
	if userId == "" {
		userId = requesterId(c)
	}
	if userId == "" {
		respondError(c, utils.ValidationError("user_id is required"))
		return
	}
	content := c.PostForm("content")
	if content == "" {
		respondError(c, utils.ValidationError("content is required"))
		return
	}
	if _, err := h.deps.Store.GetUser(c.Request.Context(), userId); err != nil {
		respondError(c, err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, utils.ValidationError("invalid multipart form"))
		return
	}
	files := form.File["files"]
	if len(files) > maxPostImages {
		respondError(c, utils.ValidationError("a post may attach at most %d images", maxPostImages))
		return
	}

	images := make([]model.PostImage, 0, len(files))
	for i, header := range files {
		f, err := header.Open()
		if err != nil {
			respondError(c, utils.ValidationError("unreadable file %s", header.Filename))
			return
		}
		data, err := ioutil.ReadAll(f)
		f.Close()
		if err != nil {
			respondError(c, utils.ValidationError("unreadable file %s", header.Filename))
			return
		}

		image, err := h.deps.Media.Put(c.Request.Context(), data, header.Header.Get("Content-Type"))
		if err != nil {
			respondError(c, err)
			return
		}
		images = append(images, model.PostImage{
			Position:    i,
			ContentHash: image.ContentHash,
			Url:         image.Url,
		})
	}

	post := &model.Post{UserId: userId, Content: content, Images: images}
	if err := h.deps.Store.CreatePost(c.Request.Context(), post); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

func (h *handlers) getPost(c *gin.Context) {
	post, err := h.deps.Store.GetPost(c.Request.Context(), c.Param("postId"))
	if err != nil {
		respondError(c, err)
		return
	}
	comments, err := h.deps.Ledger.Comments(c.Request.Context(), post.Id)
	if err != nil {
		respondError(c, err)
		return
	}
	likes, err := h.deps.Ledger.Likes(c.Request.Context(), post.Id)
	if err != nil {
		respondError(c, err)
		return
	}
	post.LikeCount = len(likes)
	post.CommentCount = len(comments)
	c.JSON(http.StatusOK, gin.H{"post": post, "comments": comments, "likes": likes})
}

func (h *handlers) deletePost(c *gin.Context) {
	post, err := h.deps.Store.GetPost(c.Request.Context(), c.Param("postId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if post.UserId != requesterId(c) {
		respondError(c, utils.Unauthorized("only the post author may delete it"))
		return
	}
	if err := h.deps.Store.DeletePost(c.Request.Context(), post.Id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "post deleted"})
}

func (h *handlers) getFeed(c *gin.Context) {
	viewerId := requesterId(c)
	if viewerId == "" {
		respondError(c, utils.ValidationError("user_id is required"))
		return
	}
	posts, err := h.deps.Feed.ComposeFeed(c.Request.Context(), viewerId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// === Engagement ===

func (h *handlers) likePost(c *gin.Context) {
	userId := requesterId(c)
	if userId == "" {
		respondError(c, utils.ValidationError("user_id is required"))
		return
	}
	if err := h.deps.Ledger.Like(c.Request.Context(), c.Param("postId"), userId); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "liked"})
}

func (h *handlers) unlikePost(c *gin.Context) {
	userId := requesterId(c)
	if userId == "" {
		respondError(c, utils.ValidationError("user_id is required"))
		return
	}
	if err := h.deps.Ledger.Unlike(c.Request.Context(), c.Param("postId"), userId); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "unliked"})
}

func (h *handlers) listComments(c *gin.Context) {
	comments, err := h.deps.Ledger.Comments(c.Request.Context(), c.Param("postId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

type addCommentRequest struct {
	UserId string `json:"user_id"`
	Text   string `json:"text"`
}

func (h *handlers) addComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, utils.ValidationError("invalid request body"))
		return
	}
	if req.UserId == "" {
		req.UserId = requesterId(c)
	}
	if req.UserId == "" {
		respondError(c, utils.ValidationError("user_id is required"))
		return
	}
	comment, err := h.deps.Ledger.AddComment(c.Request.Context(), c.Param("postId"), req.UserId, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func (h *handlers) removeComment(c *gin.Context) {
	reqId := requesterId(c)
	if reqId == "" {
		respondError(c, utils.ValidationError("user_id is required"))
		return
	}
	err := h.deps.Ledger.RemoveComment(c.Request.Context(),
		c.Param("postId"), c.Param("commentId"), reqId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "comment deleted"})
}

func (h *handlers) toggleSave(c *gin.Context) {
	saved, err := h.deps.Ledger.ToggleSave(c.Request.Context(),
		c.Param("userId"), c.Param("postId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

func (h *handlers) listSaved(c *gin.Context) {
	posts, err := h.deps.Ledger.SavedPosts(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	hydrated, err := h.deps.Feed.Hydrate(c.Request.Context(), posts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": hydrated})
}

// === Users / social graph ===

func (h *handlers) listUsers(c *gin.Context) {
	users, err := h.deps.Store.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]*publicUser, 0, len(users))
	for _, u := range users {
		out = append(out, toPublicUser(u))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

func (h *handlers) getUser(c *gin.Context) {
	user, err := h.deps.Store.GetUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toPublicUser(user)})
}

type updateProfileRequest struct {
	Username       *string         `json:"username"`
	ProfilePicture *string         `json:"profile_picture"`
	IsPrivate      *bool           `json:"is_private"`
	Bio            *string         `json:"bio"`
	Links          json.RawMessage `json:"links"`
	Skills         json.RawMessage `json:"skills"`
}

// updateProfile persists the edit, then triggers snapshot propagation.
// The edit is committed first; whatever happens to the fan-out, the
// caller's update is never lost.
func (h *handlers) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, utils.ValidationError("invalid request body"))
		return
	}

	userId := c.Param("userId")
	update := store.UserProfileUpdate{
		Username:       req.Username,
		ProfilePicture: req.ProfilePicture,
		IsPrivate:      req.IsPrivate,
		Bio:            req.Bio,
	}
	if req.Links != nil {
		update.Links = datatypes.JSON(req.Links)
	}
	if req.Skills != nil {
		update.Skills = datatypes.JSON(req.Skills)
	}

	previous, err := h.deps.Store.UpdateUserProfile(c.Request.Context(), userId, update)
	if err != nil {
		respondError(c, err)
		return
	}
	updated, err := h.deps.Store.GetUser(c.Request.Context(), userId)
	if err != nil {
		respondError(c, err)
		return
	}

	h.deps.Identities.Invalidate(c.Request.Context(), userId)
	h.deps.Propagator.OnProfileIdentityChange(c.Request.Context(), userId,
		propagator.Snapshot{Username: previous.Username, ProfilePicture: previous.ProfilePicture},
		propagator.Snapshot{Username: updated.Username, ProfilePicture: updated.ProfilePicture})

	c.JSON(http.StatusOK, gin.H{"msg": "profile updated", "user": toPublicUser(updated)})
}

func (h *handlers) follow(c *gin.Context) {
	followerId := requesterId(c)
	if followerId == "" {
		respondError(c, utils.ValidationError("user_id is required"))
		return
	}
	if err := h.deps.Graph.Follow(c.Request.Context(), followerId, c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "following"})
}

func (h *handlers) unfollow(c *gin.Context) {
	followerId := requesterId(c)
	if followerId == "" {
		respondError(c, utils.ValidationError("user_id is required"))
		return
	}
	if err := h.deps.Graph.Unfollow(c.Request.Context(), followerId, c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "unfollowed"})
}

// === Media ===

func (h *handlers) uploadMedia(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, utils.ValidationError("invalid multipart form"))
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		respondError(c, utils.ValidationError("no files uploaded"))
		return
	}
	if len(files) > maxPostImages {
		respondError(c, utils.ValidationError("at most %d files per upload", maxPostImages))
		return
	}

	images := make([]*model.Image, 0, len(files))
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			respondError(c, utils.ValidationError("unreadable file %s", header.Filename))
			return
		}
		data, err := ioutil.ReadAll(f)
		f.Close()
		if err != nil {
			respondError(c, utils.ValidationError("unreadable file %s", header.Filename))
			return
		}

		image, err := h.deps.Media.Put(c.Request.Context(), data, header.Header.Get("Content-Type"))
		if err != nil {
			respondError(c, err)
			return
		}
		images = append(images, image)
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}
