package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/devplatform/social-backend/engagement"
	"github.com/devplatform/social-backend/feed"
	"github.com/devplatform/social-backend/identity"
	"github.com/devplatform/social-backend/media"
	"github.com/devplatform/social-backend/propagator"
	"github.com/devplatform/social-backend/socialgraph"
	"github.com/devplatform/social-backend/store"
)

// Deps bundles the core components the HTTP surface exposes. The server
// itself is glue: validation, decoding and error mapping only, no
// business rules.
type Deps struct {
	Store      store.EntityStore
	Media      *media.DedupStore
	Graph      *socialgraph.Graph
	Feed       *feed.Composer
	Ledger     *engagement.Ledger
	Propagator *propagator.Propagator
	Identities identity.Provider
}

// NewRouter wires all API routes. Default gin engine comes with the
// Logger and Recovery middleware already attached.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	h := &handlers{deps: deps}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API is running"})
	})

	api := router.Group("/api")

	api.POST("/posts", h.createPost)
	api.GET("/posts/:postId", h.getPost)
	api.DELETE("/posts/:postId", h.deletePost)
	api.GET("/feed", h.getFeed)

	api.POST("/posts/:postId/like", h.likePost)
	api.DELETE("/posts/:postId/like", h.unlikePost)
	api.GET("/posts/:postId/comments", h.listComments)
	api.POST("/posts/:postId/comments", h.addComment)
	api.DELETE("/posts/:postId/comments/:commentId", h.removeComment)

	api.GET("/users", h.listUsers)
	api.GET("/users/:userId", h.getUser)
	api.PATCH("/users/:userId", h.updateProfile)
	api.POST("/users/:userId/follow", h.follow)
	api.DELETE("/users/:userId/follow", h.unfollow)
	api.PATCH("/users/:userId/save/:postId", h.toggleSave)
	api.GET("/users/:userId/saved", h.listSaved)

	api.POST("/upload", h.uploadMedia)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"msg": "API not found"})
	})

	return router
}
