package handler

// Every error leaves the API in one of two shapes:
//
//	{"msg": "Post not found"}
//	{"errors": [{"value": "", "msg": "Status is required", "param": "status", "location": "body"}]}
//
// writeError is the only place that maps apperror kinds to status codes.

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/auth"
)

// maxBodyBytes bounds request bodies; profiles and posts are small.
const maxBodyBytes = 1 << 20

type MessageResponse struct {
	Msg string `json:"msg"`
}

type ValidationResponse struct {
	Errors []apperror.FieldError `json:"errors"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are already sent
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps an error to its HTTP status and body:
//
//	ErrValidation   → 400 {"errors": [...]}
//	ErrNotFound     → 400 {"msg"}
//	ErrUnauthorized → 401 {"msg"}
//	ErrForbidden    → 403 {"msg"}
//	ErrUpstream     → 404 {"msg"}
//	ErrConflict     → 409 {"msg"}
//	anything else   → 500 {"msg": "Server Error"}, details logged only
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		slog.Error("unhandled error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, MessageResponse{Msg: "Server Error"})
		return
	}

	switch {
	case errors.Is(err, apperror.ErrValidation):
		fields := appErr.Fields
		if len(fields) == 0 {
			fields = []apperror.FieldError{{Msg: appErr.Message, Param: appErr.Field}}
		}
		writeJSON(w, http.StatusBadRequest, ValidationResponse{Errors: fields})
	case errors.Is(err, apperror.ErrNotFound):
		writeJSON(w, http.StatusBadRequest, MessageResponse{Msg: appErr.Message})
	case errors.Is(err, apperror.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, MessageResponse{Msg: appErr.Message})
	case errors.Is(err, apperror.ErrForbidden):
		writeJSON(w, http.StatusForbidden, MessageResponse{Msg: appErr.Message})
	case errors.Is(err, apperror.ErrUpstream):
		writeJSON(w, http.StatusNotFound, MessageResponse{Msg: appErr.Message})
	case errors.Is(err, apperror.ErrConflict):
		writeJSON(w, http.StatusConflict, MessageResponse{Msg: appErr.Message})
	default:
		slog.Error("unmapped application error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, MessageResponse{Msg: "Server Error"})
	}
}

// decodeJSON reads a JSON body into dst. A malformed body is a validation
// error; an empty body decodes as {}.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperror.ValidationFailed("", "Invalid JSON body")
	}
	return nil
}

// callerID returns the authenticated user, or writes 401 and reports false.
// Only reachable without a user on a route missing RequireAuth.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("No token, authorization denied"))
	}
	return id, ok
}
