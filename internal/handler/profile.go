package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/devconnector/internal/service"
)

// RepoLookup fetches a GitHub user's recent repositories. *github.Client
// implements it.
type RepoLookup interface {
	GetRepos(ctx context.Context, username string) (json.RawMessage, error)
}

// ProfileHandler serves /api/profile.
type ProfileHandler struct {
	profiles *service.ProfileService
	repos    RepoLookup
	logger   *slog.Logger
}

func NewProfileHandler(profiles *service.ProfileService, repos RepoLookup, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		repos:    repos,
		logger:   logger,
	}
}

// HandleMe: GET /api/profile/me
func (h *ProfileHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	p, err := h.profiles.GetOwn(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleUpsert creates or updates the caller's profile from the supplied
// fields.
//
// HTTP: POST /api/profile
func (h *ProfileHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var in service.ProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.profiles.Upsert(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleList: GET /api/profile
func (h *ProfileHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.GetAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

// HandleGetByUser: GET /api/profile/user/{user_id}
func (h *ProfileHandler) HandleGetByUser(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.GetByUserID(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleDelete removes the caller's posts, profile and account.
//
// HTTP: DELETE /api/profile
func (h *ProfileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.profiles.DeleteOwn(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Msg: "User deleted"})
}

// HandleAddExperience: PUT /api/profile/experience
func (h *ProfileHandler) HandleAddExperience(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var in service.ExperienceInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.profiles.AddExperience(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleRemoveExperience: DELETE /api/profile/experience/{exp_id}
func (h *ProfileHandler) HandleRemoveExperience(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	p, err := h.profiles.RemoveExperience(r.Context(), userID, chi.URLParam(r, "exp_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleAddEducation: PUT /api/profile/education
func (h *ProfileHandler) HandleAddEducation(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var in service.EducationInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.profiles.AddEducation(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleRemoveEducation: DELETE /api/profile/education/{edu_id}
func (h *ProfileHandler) HandleRemoveEducation(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	p, err := h.profiles.RemoveEducation(r.Context(), userID, chi.URLParam(r, "edu_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleGitHubRepos relays the five newest repositories of a GitHub user.
// The upstream body is written as-is.
//
// HTTP: GET /api/profile/github/{username}
func (h *ProfileHandler) HandleGitHubRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := h.repos.GetRepos(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(repos); err != nil {
		h.logger.Warn("writing github repos response", slog.String("error", err.Error()))
	}
}
