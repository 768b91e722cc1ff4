package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCommand(t *testing.T) {
	got := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		got <- body
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"register", "--admin", srv.URL, "--uri", "http://localhost:9080", "--force"})
	require.NoError(t, rootCmd.Execute())

	body := <-got
	assert.Equal(t, "http://localhost:9080", body["uri"])
	assert.Equal(t, true, body["force"])
	assert.Contains(t, out.String(), "registered http://localhost:9080")
}

func TestRegisterRequiresURI(t *testing.T) {
	endpointURI = ""
	rootCmd.SetArgs([]string{"register", "--admin", "http://localhost:1"})
	assert.ErrorContains(t, rootCmd.Execute(), "--uri is required")
}
