package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/importer-intel/internal/alerts"
	"github.com/sells-group/importer-intel/internal/dashboard"
	"github.com/sells-group/importer-intel/internal/export"
	"github.com/sells-group/importer-intel/internal/search"
)

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON encodes v before the header goes out, so an unencodable value
// becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorBody{Error: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n')) //nolint:errcheck
}

func writeSVG(w http.ResponseWriter, svg string) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(svg)) //nolint:errcheck
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, search.ErrEmptyQuery),
		errors.Is(err, alerts.ErrInvalidSubscription),
		errors.Is(err, export.ErrUnknownFormat):
		status = http.StatusBadRequest
	case errors.Is(err, dashboard.ErrUnknownImporter),
		errors.Is(err, dashboard.ErrNoRecord):
		status = http.StatusNotFound
	case errors.Is(err, search.ErrSearchInFlight),
		errors.Is(err, dashboard.ErrRefreshBusy):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		zap.L().Error("server: request failed", zap.Error(err))
	}
	writeMessage(w, status, err.Error())
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
