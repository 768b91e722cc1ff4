package core

import (
	"encoding/json"
	"net/http"

	"github.com/joeydtaylor/durable-starter/pkg/codec"
)

type requestEnvelope struct {
	Key     string          `json:"key,omitempty"`
	Request json.RawMessage `json:"request"`
}

type responseEnvelope struct {
	Response json.RawMessage `json:"response"`
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, payload []byte, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if len(payload) > 0 {
		_, _ = w.Write(payload)
		return
	}
	_, _ = w.Write([]byte(`{}`))
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	b, _ := codec.JSON.Marshal(errorBody{Code: status, Message: err.Error()})
	writeJSON(w, b, status)
}
