package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cppla/simpleblog/services"
	"github.com/cppla/simpleblog/utils"
)

// PostController exposes post CRUD over HTTP.
type PostController struct {
	posts    *services.PostService
	sanitize bool
}

// NewPostController creates a new PostController. With sanitize set, titles and
// content are passed through an HTML policy before they are stored.
func NewPostController(posts *services.PostService, sanitize bool) *PostController {
	return &PostController{posts: posts, sanitize: sanitize}
}

// Content is optional on create.
type postCreateRequest struct {
	Title   string `json:"title" binding:"required,notblank,max=255"`
	Content string `json:"content"`
}

// Both fields must be present; content may be empty.
type postEditRequest struct {
	Title   *string `json:"title" binding:"required,notblank,max=255"`
	Content *string `json:"content" binding:"required"`
}

// CreatePost stores a post and points at it with the Location header.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req postCreateRequest
	if err := bindJSON(ctx, &req); err != nil {
		utils.Abort(ctx, err)
		return
	}

	id, err := p.posts.Create(ctx.Request.Context(), services.PostCreate{
		Title:   p.clean(req.Title),
		Content: p.clean(req.Content),
	})
	if err != nil {
		utils.Abort(ctx, err)
		return
	}

	ctx.Header("Location", "/posts/"+strconv.FormatUint(uint64(id), 10))
	ctx.Status(http.StatusOK)
}

// GetPost returns a single post.
func (p *PostController) GetPost(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err != nil {
		utils.Abort(ctx, err)
		return
	}

	view, err := p.posts.Get(ctx.Request.Context(), id)
	if err != nil {
		utils.Abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// ListPosts returns one page of posts, newest first.
func (p *PostController) ListPosts(ctx *gin.Context) {
	search := services.PostSearch{
		Page: queryInt(ctx, "page"),
		Size: queryInt(ctx, "size"),
	}

	views, err := p.posts.List(ctx.Request.Context(), search)
	if err != nil {
		utils.Abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, views)
}

// EditPost replaces the title and content of a post.
func (p *PostController) EditPost(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err != nil {
		utils.Abort(ctx, err)
		return
	}

	var req postEditRequest
	if err := bindJSON(ctx, &req); err != nil {
		utils.Abort(ctx, err)
		return
	}

	title, content := p.clean(*req.Title), p.clean(*req.Content)
	if err := p.posts.Edit(ctx.Request.Context(), id, services.PostEdit{Title: &title, Content: &content}); err != nil {
		utils.Abort(ctx, err)
		return
	}
	ctx.Status(http.StatusOK)
}

// DeletePost removes a post.
func (p *PostController) DeletePost(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err != nil {
		utils.Abort(ctx, err)
		return
	}

	if err := p.posts.Delete(ctx.Request.Context(), id); err != nil {
		utils.Abort(ctx, err)
		return
	}
	ctx.Status(http.StatusOK)
}

func (p *PostController) clean(s string) string {
	if !p.sanitize {
		return s
	}
	return ugcPolicy.Sanitize(s)
}
