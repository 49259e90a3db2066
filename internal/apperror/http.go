package apperror

import (
	"encoding/json"
	"net/http"
)

// Response is the wire shape of an error returned by the HTTP API.
type Response struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// ToResponse converts err, normalizing it into the taxonomy first. Internal
// faults keep their generic message so infrastructure details do not leak.
func ToResponse(err error) (int, Response) {
	e := FromError(err)
	return e.Status, Response{
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Payload,
	}
}

// WriteHTTP writes err as JSON with the status of its kind.
func WriteHTTP(w http.ResponseWriter, err error) {
	status, body := ToResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
