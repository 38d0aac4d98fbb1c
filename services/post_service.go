package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/simpleblog/models"
	"github.com/cppla/simpleblog/utils"
)

const (
	// TitleDisplayLimit is the number of characters of a title shown in responses.
	TitleDisplayLimit = 10

	defaultPageSize = 10
	maxPageSize     = 2000
	postCachePrefix = "cache:post:detail:"
)

// PostCreate is the input for a new post. Title is validated at the boundary.
type PostCreate struct {
	Title   string
	Content string
}

// PostEdit carries replacement values. A nil field keeps the stored value;
// the HTTP layer requires both, so edits over HTTP always replace title and content.
type PostEdit struct {
	Title   *string
	Content *string
}

// PostSearch selects one page of posts, newest first.
type PostSearch struct {
	Page int
	Size int
}

// Limit is the page size clamped to [1, 2000], defaulting to 10.
func (s PostSearch) Limit() int {
	switch {
	case s.Size <= 0:
		return defaultPageSize
	case s.Size > maxPageSize:
		return maxPageSize
	default:
		return s.Size
	}
}

// Offset is the number of rows skipped before the page. Pages start at 1.
func (s PostSearch) Offset() int {
	page := s.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * s.Limit()
}

// PostView is the response shape of a post.
type PostView struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NewPostView projects p for display, cutting the title to TitleDisplayLimit characters.
func NewPostView(p *models.Post) PostView {
	return PostView{
		ID:      p.ID,
		Title:   truncate(p.Title, TitleDisplayLimit),
		Content: p.Content,
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// PostService implements post CRUD over gorm with an optional view cache.
type PostService struct {
	db       *gorm.DB
	cache    *utils.Cache
	cacheTTL time.Duration
}

// NewPostService creates a PostService; cache may be nil.
func NewPostService(db *gorm.DB, cache *utils.Cache, cacheTTL time.Duration) *PostService {
	return &PostService{db: db, cache: cache, cacheTTL: cacheTTL}
}

// Create stores a new post and returns its id.
func (s *PostService) Create(ctx context.Context, in PostCreate) (uint, error) {
	post := models.Post{Title: in.Title, Content: in.Content}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return 0, fmt.Errorf("create post: %w", err)
	}
	return post.ID, nil
}

// Get returns the display view of post id.
func (s *PostService) Get(ctx context.Context, id uint) (PostView, error) {
	key := postCacheKey(id)
	var view PostView
	if s.cache.GetJSON(ctx, key, &view) {
		return view, nil
	}

	post, err := s.find(s.db.WithContext(ctx), id)
	if err != nil {
		return PostView{}, err
	}
	view = NewPostView(post)
	s.remember(ctx, view)
	return view, nil
}

// List returns one page of post views ordered by id descending.
func (s *PostService) List(ctx context.Context, search PostSearch) ([]PostView, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Order("id DESC").
		Offset(search.Offset()).
		Limit(search.Limit()).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	views := make([]PostView, 0, len(posts))
	for i := range posts {
		views = append(views, NewPostView(&posts[i]))
	}
	return views, nil
}

// Edit replaces title and content of post id. The read and the write share one transaction.
func (s *PostService) Edit(ctx context.Context, id uint, in PostEdit) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := s.find(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}

		editor := post.Editor()
		if in.Title != nil {
			editor.Title = *in.Title
		}
		if in.Content != nil {
			editor.Content = *in.Content
		}
		post.Edit(editor)

		if err := tx.Save(post).Error; err != nil {
			return fmt.Errorf("save post: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, postCacheKey(id))
	return nil
}

// Delete removes post id.
func (s *PostService) Delete(ctx context.Context, id uint) error {
	db := s.db.WithContext(ctx)
	post, err := s.find(db, id)
	if err != nil {
		return err
	}
	if err := db.Delete(post).Error; err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	s.cache.Invalidate(ctx, postCacheKey(id))
	return nil
}

// Count returns the number of stored posts.
func (s *PostService) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// remember caches a view loaded from the database unless the post was
// edited or deleted while it was being loaded.
func (s *PostService) remember(ctx context.Context, view PostView) {
	s.cache.SetJSONGuarded(ctx, postCacheKey(view.ID), view, s.cacheTTL)
}

func (s *PostService) find(db *gorm.DB, id uint) (*models.Post, error) {
	var post models.Post
	err := db.First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &post, nil
}

func postCacheKey(id uint) string {
	return postCachePrefix + strconv.FormatUint(uint64(id), 10)
}
