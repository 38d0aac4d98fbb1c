package models

import "time"

// Post is a blog entry. Title is required; content is free text.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostEditor is the full replacement value applied by Edit.
// Build one from the stored post with Editor, overwrite its fields, then apply it.
type PostEditor struct {
	Title   string
	Content string
}

// Editor returns an editor pre-filled with the post's current values.
func (p *Post) Editor() PostEditor {
	return PostEditor{Title: p.Title, Content: p.Content}
}

// Edit replaces title and content wholesale with the editor's values.
func (p *Post) Edit(e PostEditor) {
	p.Title = e.Title
	p.Content = e.Content
}
