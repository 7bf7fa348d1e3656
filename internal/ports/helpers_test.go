package ports_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/puttlog/puttlog/internal/domain"
	"github.com/puttlog/puttlog/internal/ports"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func noopMiddleware(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(w, r)
	}
}

func testAllowedOrigins(t *testing.T) *ports.DomainSuffixes {
	t.Helper()
	allowedOrigins, err := ports.NewDomainSuffixes("example.com", "test.com")
	require.NoError(t, err)
	return allowedOrigins
}

func makePlayerRequest(method, path, playerID, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.SetPathValue("playerID", playerID)
	return req
}

type errorBody struct {
	Success *bool   `json:"success"`
	Cause   *string `json:"cause"`
}

func requireErrorResponse(t *testing.T, w *httptest.ResponseRecorder, statusCode int, cause string) {
	t.Helper()

	require.Equal(t, statusCode, w.Code)
	require.Equal(t, "application/json", w.Result().Header.Get("Content-Type"))

	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Success)
	require.False(t, *body.Success)
	require.NotNil(t, body.Cause)
	require.Equal(t, cause, *body.Cause)
}

func definitionByID(t *testing.T, id string) domain.AchievementDefinition {
	t.Helper()
	for _, definition := range domain.DefaultAchievementDefinitions() {
		if definition.ID == id {
			return definition
		}
	}
	t.Fatalf("no default achievement with id %s", id)
	return domain.AchievementDefinition{}
}
