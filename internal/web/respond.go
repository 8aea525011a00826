package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/vbonduro/fieldsales/internal/collection"
	"github.com/vbonduro/fieldsales/internal/form"
	"github.com/vbonduro/fieldsales/internal/photostore"
	"github.com/vbonduro/fieldsales/internal/remote"
	"github.com/vbonduro/fieldsales/internal/service"
	"github.com/vbonduro/fieldsales/internal/session"
)

const maxJSONBody = 1 << 20

type listResponse[T any] struct {
	Source collection.Source `json:"source"`
	Items  []T               `json:"items"`
}

func list[T any](res collection.Result[T]) listResponse[T] {
	items := res.Items
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Source: res.Source, Items: items}
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	return true
}

// writeError maps service errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr    *form.ValidationError
		credErr *session.CredentialsError
		rej     *remote.RemoteRejected
		netErr  *remote.NetworkUnavailable
	)
	switch {
	case errors.As(err, &verr):
		respond(w, http.StatusUnprocessableEntity, map[string]string{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, collection.ErrBusy):
		respond(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.As(err, &credErr):
		respond(w, http.StatusUnauthorized, map[string]string{"error": credErr.Error()})
	case errors.As(err, &rej):
		status := http.StatusBadGateway
		if remote.IsUnauthorized(err) {
			status = http.StatusUnauthorized
		}
		respond(w, status, map[string]any{"error": rej.Error(), "status": rej.Status})
	case errors.As(err, &netErr):
		respond(w, http.StatusServiceUnavailable, map[string]string{"error": "network unavailable, try again when online"})
	case errors.Is(err, photostore.ErrPermissionDenied):
		respond(w, http.StatusForbidden, map[string]string{"error": "permission denied"})
	case errors.Is(err, photostore.ErrNotFound):
		respond(w, http.StatusUnprocessableEntity, map[string]string{"error": "photo not found"})
	case errors.Is(err, service.ErrUnknownCollection):
		respond(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, remote.ErrMalformedResponse):
		respond(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respond(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
