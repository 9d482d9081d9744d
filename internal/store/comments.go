package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fragmede/commentbox/internal/api"
	"github.com/fragmede/commentbox/internal/pager"
)

// ErrNotFound is returned for an ID with no comment.
var ErrNotFound = errors.New("comment not found")

// List returns one page of comments, newest first, and the collection size.
// size may be pager.Unbounded to return everything.
func (d *DB) List(ctx context.Context, page, size int) ([]api.Comment, int, error) {
	var total int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting comments: %w", err)
	}

	query := `SELECT id, name, content, created_at FROM comments ORDER BY created_at DESC, id DESC`
	var args []interface{}
	if size != pager.Unbounded {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, size, pager.Offset(page, size))
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	comments := make([]api.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("listing comments: %w", err)
	}
	return comments, total, nil
}

// Create validates and stores a new comment.
func (d *DB) Create(ctx context.Context, nc api.NewComment) (api.Comment, error) {
	nc = nc.Normalize()
	if err := nc.Validate(); err != nil {
		return api.Comment{}, err
	}

	now := time.Now().UTC()
	res, err := d.db.ExecContext(ctx, `INSERT INTO comments (name, content, created_at) VALUES (?, ?, ?)`,
		nc.Name, nc.Content, now.UnixNano())
	if err != nil {
		return api.Comment{}, fmt.Errorf("creating comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return api.Comment{}, fmt.Errorf("reading comment id: %w", err)
	}

	return api.Comment{
		ID:        uint64(id),
		Name:      nc.Name,
		Content:   nc.Content,
		CreatedAt: time.Unix(0, now.UnixNano()).UTC(),
	}, nil
}

// Get returns a single comment.
func (d *DB) Get(ctx context.Context, id uint64) (api.Comment, error) {
	row := d.db.QueryRowContext(ctx, `SELECT id, name, content, created_at FROM comments WHERE id = ?`, id)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Comment{}, ErrNotFound
	}
	if err != nil {
		return api.Comment{}, fmt.Errorf("querying comment %d: %w", id, err)
	}
	return c, nil
}

// Delete removes a comment.
func (d *DB) Delete(ctx context.Context, id uint64) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting comment %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting comment %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanComment(s scanner) (api.Comment, error) {
	var c api.Comment
	var id int64
	var createdAt int64
	if err := s.Scan(&id, &c.Name, &c.Content, &createdAt); err != nil {
		return api.Comment{}, err
	}
	c.ID = uint64(id)
	c.CreatedAt = time.Unix(0, createdAt).UTC()
	return c, nil
}
