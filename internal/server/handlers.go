package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/fragmede/commentbox/internal/api"
	"github.com/fragmede/commentbox/internal/pager"
	"github.com/fragmede/commentbox/internal/store"
)

const (
	defaultPage = 1
	defaultSize = 10

	maxBodyBytes = 16 << 10
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writing response: %v", err)
	}
}

type envelope struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

func writeOK(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, envelope{Code: api.CodeOK, Msg: "success", Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Code: status, Msg: msg})
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", defaultPage)
	if err != nil || page < 1 {
		writeError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	size, err := queryInt(r, "size", defaultSize)
	if err != nil || !pager.ValidSize(size) {
		writeError(w, http.StatusBadRequest, "size must be a positive integer or -1")
		return
	}

	comments, total, err := s.store.List(r.Context(), page, size)
	if err != nil {
		log.Printf("[%s] listing comments: %v", RequestID(r.Context()), err)
		writeError(w, http.StatusInternalServerError, "failed to load comments")
		return
	}
	writeOK(w, api.Page{Items: comments, Total: total})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var nc api.NewComment
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&nc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.store.Create(r.Context(), nc)
	if err != nil {
		var ve *api.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Err.Error())
			return
		}
		log.Printf("[%s] creating comment: %v", RequestID(r.Context()), err)
		writeError(w, http.StatusInternalServerError, "failed to add comment")
		return
	}
	writeOK(w, created)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}

	// The deleted comment is echoed back as data.
	c, err := s.store.Get(r.Context(), id)
	if err == nil {
		err = s.store.Delete(r.Context(), id)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("comment %d not found", id))
			return
		}
		log.Printf("[%s] deleting comment %d: %v", RequestID(r.Context()), id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete comment")
		return
	}
	writeOK(w, c)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		log.Printf("health check: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "database": "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "connected"})
}
