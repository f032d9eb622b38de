package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/devconnector/internal/service"
)

// PostHandler serves /api/posts. Every route requires a signed-in user.
type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

// HandleCreate: POST /api/posts {"text"}
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var in service.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleList: GET /api/posts, newest first.
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// HandleGet: GET /api/posts/{id}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleDelete: DELETE /api/posts/{id}, author only.
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.posts.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Msg: "Post removed"})
}

// HandleLike toggles the caller's like and returns the post's likes.
//
// HTTP: PUT /api/posts/like/{id}
func (h *PostHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	likes, err := h.posts.ToggleLike(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likes)
}

// HandleComment: POST /api/posts/comment/{id} {"text"}, returns the comments.
func (h *PostHandler) HandleComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var in service.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	comments, err := h.posts.AddComment(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// HandleDeleteComment: DELETE /api/posts/comment/{id}/{comment_id}
func (h *PostHandler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	comments, err := h.posts.DeleteComment(r.Context(), userID, chi.URLParam(r, "id"), chi.URLParam(r, "comment_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}
