package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bonsai-buddy/internal/container"
	handlers "github.com/oksasatya/bonsai-buddy/internal/interface/http"
	"github.com/oksasatya/bonsai-buddy/internal/interface/middleware"
)

// PostModule exposes the feed, posts, likes and the comment threads under
// each post.
type PostModule struct {
	Posts    *handlers.PostHandler
	Comments *handlers.CommentHandler
	Auth     middleware.Authenticator
}

func NewPostModule(posts *handlers.PostHandler, comments *handlers.CommentHandler, auth middleware.Authenticator) *PostModule {
	return &PostModule{Posts: posts, Comments: comments, Auth: auth}
}

func (m *PostModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	public := rg.Group("/")
	public.Use(
		middleware.OptionalAuth(m.Auth),
		middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), nil),
	)
	{
		public.GET("/posts", m.Posts.Feed)
		public.GET("/posts/:id", m.Posts.Get)
		public.GET("/posts/:id/comments", m.Comments.Thread)
		public.GET("/posts/:id/comments/count", m.Comments.Count)
	}

	auth := rg.Group("/")
	auth.Use(
		middleware.Auth(m.Auth),
		middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/posts", middleware.RateLimit(rdb, 20, time.Minute, middleware.KeyByUserID(), nil), m.Posts.Create)
		auth.PATCH("/posts/:id", m.Posts.Update)
		auth.DELETE("/posts/:id", m.Posts.Delete)
		auth.PUT("/posts/:id/privacy", m.Posts.SetPrivacy)
		auth.POST("/posts/:id/like", m.Posts.Like)
		auth.DELETE("/posts/:id/like", m.Posts.Unlike)

		auth.POST("/posts/:id/comments", m.Comments.Create)
		auth.PATCH("/comments/:id", m.Comments.Update)
		auth.DELETE("/comments/:id", m.Comments.Delete)
		auth.POST("/comments/:id/like", m.Comments.Like)
		auth.DELETE("/comments/:id/like", m.Comments.Unlike)
	}
}
