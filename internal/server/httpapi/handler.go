package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/common"
	"github.com/dmitrijs2005/moodnotes/internal/server/models"
	"github.com/dmitrijs2005/moodnotes/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type errorResponse struct {
	Error string `json:"error"`
}

type signInRequest struct {
	IdentityToken string `json:"identity_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id,omitempty"`
}

type presignUploadRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	// Path re-presigns an already assigned key, used when retrying an
	// interrupted upload.
	Path string `json:"path,omitempty"`
}

type presignDownloadRequest struct {
	Path string `json:"path"`
}

type presignResponse struct {
	Path string `json:"path,omitempty"`
	URL  string `json:"url"`
}

type imagesResponse struct {
	Paths []string `json:"paths"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps service errors to HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrInvalidMood):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorUnauthenticated), errors.Is(err, common.ErrRefreshTokenExpired):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	default:
		s.logger.Error(r.Context(), err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {

	var req signInRequest
	if !decode(w, r, &req) {
		return
	}

	pair, userID, err := s.users.SignIn(r.Context(), req.IdentityToken)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Signed in", "user_id", userID)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		UserID:       userID,
	})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {

	var req refreshRequest
	if !decode(w, r, &req) {
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// listNotes returns the caller's notes, optionally limited to a half-open
// window [from, to) supplied as RFC3339 query parameters.
func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {

	userID, _ := userIDFromContext(r.Context())

	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")

	var (
		result []*models.Note
		err    error
	)

	if fromStr != "" || toStr != "" {
		var from, to time.Time
		from, err = time.Parse(time.RFC3339, fromStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from")
			return
		}
		to, err = time.Parse(time.RFC3339, toStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to")
			return
		}
		result, err = s.notes.GetBetween(r.Context(), userID, from, to)
	} else {
		result, err = s.notes.GetAll(r.Context(), userID)
	}

	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if result == nil {
		result = []*models.Note{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) getNote(w http.ResponseWriter, r *http.Request) {

	userID, _ := userIDFromContext(r.Context())

	note, err := s.notes.GetOne(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

func (s *Server) addNote(w http.ResponseWriter, r *http.Request) {

	userID, _ := userIDFromContext(r.Context())

	var note models.Note
	if !decode(w, r, &note) {
		return
	}

	created, err := s.notes.Add(r.Context(), userID, &note)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateNote(w http.ResponseWriter, r *http.Request) {

	userID, _ := userIDFromContext(r.Context())

	var note models.Note
	if !decode(w, r, &note) {
		return
	}
	note.ID = chi.URLParam(r, "id")

	updated, err := s.notes.Update(r.Context(), userID, &note)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// deleteNote removes a note and returns the deleted document so the caller
// can clean up its image blobs.
func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {

	userID, _ := userIDFromContext(r.Context())

	note, err := s.notes.Delete(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

func (s *Server) deleteAllNotes(w http.ResponseWriter, r *http.Request) {

	userID, _ := userIDFromContext(r.Context())

	if err := s.notes.DeleteAll(r.Context(), userID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// presignUpload computes the storage key for a new image and returns it with
// a presigned PUT URL.
func (s *Server) presignUpload(w http.ResponseWriter, r *http.Request) {

	userID, _ := userIDFromContext(r.Context())

	var req presignUploadRequest
	if !decode(w, r, &req) {
		return
	}

	key := req.Path
	if key != "" {
		if !ownsKey(userID, key) {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
	} else {
		key = services.BuildKey(userID, req.FileName, req.ContentType)
	}

	url, err := s.blobs.GetPresignedPutURL(r.Context(), key)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, presignResponse{Path: key, URL: url})
}

func (s *Server) presignDownload(w http.ResponseWriter, r *http.Request) {

	userID, _ := userIDFromContext(r.Context())

	var req presignDownloadRequest
	if !decode(w, r, &req) {
		return
	}

	if !ownsKey(userID, req.Path) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	url, err := s.blobs.GetPresignedGetURL(r.Context(), req.Path)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, presignResponse{URL: url})
}

func (s *Server) listImages(w http.ResponseWriter, r *http.Request) {

	userID, _ := userIDFromContext(r.Context())

	keys, err := s.blobs.List(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, imagesResponse{Paths: keys})
}

func (s *Server) deleteImage(w http.ResponseWriter, r *http.Request) {

	userID, _ := userIDFromContext(r.Context())

	key := r.URL.Query().Get("path")
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing path")
		return
	}

	if !ownsKey(userID, key) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := s.blobs.Delete(r.Context(), key); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ownsKey reports whether key sits under the user's image prefix.
func ownsKey(userID, key string) bool {
	prefix := services.UserPrefix(userID)
	return len(key) > len(prefix) && key[:len(prefix)] == prefix
}
