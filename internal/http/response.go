package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"portfolio-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const maxJSONBody = 1 << 20

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
	Slug    string `json:"slug,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError renders err for the client. Causes are logged, never
// sent.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var serr services.ServiceError
	if !errors.As(err, &serr) {
		serr = services.ErrInternal("Internal server error", err)
	}
	if serr.Status >= http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg(serr.Message)
	}
	WriteJSON(w, serr.Status, ErrorResponse{Error: serr.Message, Details: serr.Details})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return false
	}
	return true
}

// pathID parses a positive integer URL parameter, writing a 400 otherwise.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// OptionalID accepts a JSON number, a numeric string, an empty string or
// null. Form selects in the web client send ids as strings.
type OptionalID struct {
	Value *int64
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		o.Value = nil
	case float64:
		id := int64(v)
		if float64(id) != v {
			return errors.New("id must be an integer")
		}
		o.Value = &id
	case string:
		if v == "" {
			o.Value = nil
			return nil
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		o.Value = &id
	default:
		return errors.New("id must be a number or string")
	}
	return nil
}
