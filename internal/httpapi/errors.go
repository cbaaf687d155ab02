package httpapi

import (
	"encoding/json"
	"net/http"
)

// errorEnvelope is the shape every failing endpoint returns. Code is a stable
// machine key; Message is for humans and may be pt-BR, like the bot-facing
// texts. The request id lets a user report be matched to the access log.
type errorEnvelope struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

// WriteJSON serializes v onto the response. Encode errors are dropped: the
// status line is already on the wire, there is nothing left to tell the
// client.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e errorEnvelope
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}
