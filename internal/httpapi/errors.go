package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"leadhunt-engine/internal/apperr"
)

// APIError is the envelope every non-2xx response uses. Kind, Source and
// Status are filled when the failure carries an apperr classification, so
// the UI can tell a revoked key from an upstream outage.
type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Kind      string `json:"kind,omitempty"`
		Source    string `json:"source,omitempty"`
		Status    int    `json:"upstream_status,omitempty"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteJSON(w, status, newAPIError(r, code, message))
}

// WriteErr writes err with its apperr kind, source and upstream status.
func WriteErr(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	e := newAPIError(r, code, err.Error())
	var ae *apperr.Error
	if errors.As(err, &ae) {
		e.Error.Kind = ae.Kind.String()
		e.Error.Source = ae.Source
		e.Error.Status = ae.Status
	}
	WriteJSON(w, status, e)
}

func newAPIError(r *http.Request, code, message string) APIError {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	return e
}
