package contextsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPServiceFetchReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "1")
		_, _ = w.Write([]byte("OK:" + r.URL.Query().Get("q")))
	}))
	defer server.Close()

	svc := NewHTTPService[struct{}]()
	methods := svc.ContextMethods()
	fetch, ok := methods["fetch"]
	require.True(t, ok)

	reqPayload := []byte(`{"url":"` + server.URL + `?q=hello"}`)
	respPayload, err := fetch(context.Background(), reqPayload)
	require.NoError(t, err)

	var resp FetchResponse
	require.NoError(t, json.Unmarshal(respPayload, &resp))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "OK:hello", string(resp.Body))
}

func TestHTTPServiceFetchRejectsMissingURL(t *testing.T) {
	svc := NewHTTPService[struct{}]()
	fetch := svc.ContextMethods()["fetch"]

	_, err := fetch(context.Background(), []byte(`{}`))
	require.Error(t, err)
}

func TestHTTPServiceFetchRejectsInvalidJSON(t *testing.T) {
	svc := NewHTTPService[struct{}]()
	fetch := svc.ContextMethods()["fetch"]

	_, err := fetch(context.Background(), []byte(`not json`))
	require.Error(t, err)
}
