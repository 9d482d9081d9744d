package api

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits, counted in code points.
const (
	MaxNameLength    = 50
	MaxContentLength = 500
)

// Comment is a single comment as assigned by the service.
type Comment struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewComment is a comment that has not been created yet.
type NewComment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Normalize returns a copy with surrounding whitespace removed.
func (n NewComment) Normalize() NewComment {
	return NewComment{
		Name:    strings.TrimSpace(n.Name),
		Content: strings.TrimSpace(n.Content),
	}
}

// Validate checks the trimmed fields against the service limits.
func (n NewComment) Validate() error {
	n = n.Normalize()
	switch {
	case n.Name == "":
		return &ValidationError{Field: "name", Err: ErrEmptyName}
	case utf8.RuneCountInString(n.Name) > MaxNameLength:
		return &ValidationError{Field: "name", Err: ErrNameTooLong}
	case n.Content == "":
		return &ValidationError{Field: "content", Err: ErrEmptyContent}
	case utf8.RuneCountInString(n.Content) > MaxContentLength:
		return &ValidationError{Field: "content", Err: ErrContentTooLong}
	}
	return nil
}

// Page is one page of comments plus the size of the whole collection.
type Page struct {
	Items []Comment `json:"comments"`
	Total int       `json:"total"`
}

// Envelope is the service's response wrapper. Code 0 means success.
type Envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// CodeOK is the envelope code for a successful call.
const CodeOK = 0
