package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	gerrors "github.com/matzehuels/gmplayout/pkg/errors"
	"github.com/matzehuels/gmplayout/pkg/pipeline"
	"github.com/matzehuels/gmplayout/pkg/store"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    gerrors.Code `json:"code"`
	Message string       `json:"message"`
	Stage   string       `json:"stage,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status and a JSON error body. Store lookups and
// plain errors get codes here so every response carries one.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		err = gerrors.Wrap(gerrors.ErrCodeTimeout, err, "request timed out")
	case errors.Is(err, store.ErrNotFound):
		err = gerrors.Wrap(gerrors.ErrCodeLayoutNotFound, err, "layout %q not found", layoutID(r))
	case errors.Is(err, store.ErrInvalidID):
		err = gerrors.Wrap(gerrors.ErrCodeInvalidInput, err, "%v", err)
	case gerrors.GetCode(err) == "":
		err = gerrors.Wrap(gerrors.ErrCodeInternal, err, "%v", err)
	}

	status := gerrors.HTTPStatus(err)
	body := errorBody{Error: errorDetail{
		Code:    gerrors.GetCode(err),
		Message: gerrors.UserMessage(err),
	}}
	var se *pipeline.StageError
	if errors.As(err, &se) {
		body.Error.Stage = string(se.Stage)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, body)
}

// decode reads a JSON body, rejecting unknown fields and oversized bodies.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return gerrors.New(gerrors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return gerrors.Wrap(gerrors.ErrCodeInvalidInput, err, "invalid request body: %v", err)
	}
	if dec.More() {
		return gerrors.New(gerrors.ErrCodeInvalidInput, "request body must hold a single JSON value")
	}
	return nil
}

func cacheHeader(w http.ResponseWriter, hit bool) {
	v := "miss"
	if hit {
		v = "hit"
	}
	w.Header().Set("X-Cache", v)
}
