package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/simpleblog/services"
	"github.com/cppla/simpleblog/utils"
)

// StatsController reports aggregate counts for the blog.
type StatsController struct {
	users *services.UserService
	posts *services.PostService
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(users *services.UserService, posts *services.PostService) *StatsController {
	return &StatsController{users: users, posts: posts}
}

// GetStats returns the number of accounts and posts.
func (s *StatsController) GetStats(ctx *gin.Context) {
	userCount, err := s.users.Count(ctx.Request.Context())
	if err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		utils.Sugar.Warnf("count users: %v", err)
		userCount = 0
	}
	postCount, err := s.posts.Count(ctx.Request.Context())
	if err != nil {
		utils.Sugar.Warnf("count posts: %v", err)
		postCount = 0
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user_count": userCount,
		"post_count": postCount,
	})
}
