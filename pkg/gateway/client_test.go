package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) ObserveUpstream(method, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, method+" "+route)
}

func TestClientFetchesTokenPerRequest(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	n := 0
	tokens := TokenFunc(func(context.Context) (string, error) {
		n++
		return "tok-" + string(rune('0'+n)), nil
	})
	client := New(Config{BaseURL: srv.URL + "/"}, tokens)

	var out []interface{}
	require.NoError(t, client.Get(context.Background(), "/jobs", nil, &out))
	require.NoError(t, client.Get(context.Background(), "jobs", nil, &out))
	require.Equal(t, []string{"Bearer tok-1", "Bearer tok-2"}, seen)
}

func TestClientTrimsWriteBodies(t *testing.T) {
	var received map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL}, StaticToken("abc"))
	body := map[string]interface{}{
		"role":  "  admin ",
		"count": 3,
		"tags":  []string{" a", "b  "},
		"nested": map[string]interface{}{
			"name": "\tWidget\n",
		},
	}
	require.NoError(t, client.Put(context.Background(), "/users/change_role/9", nil, body, nil))

	require.Equal(t, "admin", received["role"])
	require.EqualValues(t, 3, received["count"])
	require.Equal(t, []interface{}{"a", "b"}, received["tags"])
	require.Equal(t, "Widget", received["nested"].(map[string]interface{})["name"])
	require.Equal(t, "  admin ", body["role"])
}

func TestClientNormalizesHTTPErrors(t *testing.T) {
	cases := []struct {
		name string
		code int
		body string
		want string
	}{
		{"detail string", http.StatusBadRequest, `{"detail":"Job already processed"}`, "Job already processed"},
		{"detail list", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"},{"msg":"bad value"}]}`, "field required; bad value"},
		{"message", http.StatusForbidden, `{"message":"Admins only"}`, "Admins only"},
		{"html", http.StatusInternalServerError, `<html>oops</html>`, GenericErrorMessage},
		{"empty", http.StatusBadGateway, ``, GenericErrorMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			err := New(Config{BaseURL: srv.URL}, nil).Post(context.Background(), "/jobs/1/status", url.Values{"action": {"reject"}}, nil, nil)
			var gwErr *Error
			require.True(t, errors.As(err, &gwErr))
			require.Equal(t, tc.code, gwErr.Status)
			require.Equal(t, tc.want, gwErr.Message)
		})
	}
}

func TestClientNetworkFailureIsStatusZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	obs := &recordingObserver{}
	err := New(Config{BaseURL: base, Timeout: time.Second}, nil, WithObserver(obs)).Get(context.Background(), "/jobs/12", nil, nil)
	var gwErr *Error
	require.True(t, errors.As(err, &gwErr))
	require.True(t, gwErr.Network())
	require.Equal(t, NetworkErrorMessage, gwErr.Message)
	require.Equal(t, []string{"GET /jobs/:id"}, obs.calls)
}

func TestClientTokenFailureSkipsRequest(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hit = true }))
	defer srv.Close()

	tokens := TokenFunc(func(context.Context) (string, error) { return "", errors.New("provider down") })
	err := New(Config{BaseURL: srv.URL}, tokens).Get(context.Background(), "/clients/approved", nil, nil)
	var gwErr *Error
	require.True(t, errors.As(err, &gwErr))
	require.Equal(t, http.StatusUnauthorized, gwErr.Status)
	require.False(t, hit)
}

func TestClientContextTokenAndUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)
		require.Equal(t, "prices.xlsx", header.Filename)
		require.Equal(t, "sheet-bytes", string(content))
		_, _ = w.Write([]byte(`{"job_id": 55, "next_step": "review"}`))
	}))
	defer srv.Close()

	ctx := WithToken(context.Background(), "user-token")
	var out struct {
		JobID    int    `json:"job_id"`
		NextStep string `json:"next_step"`
	}
	client := New(Config{BaseURL: srv.URL}, ContextToken)
	require.NoError(t, client.Upload(ctx, "/cpl/3", "file", "prices.xlsx", strings.NewReader("sheet-bytes"), &out))
	require.Equal(t, 55, out.JobID)
}

func TestClientDownloadStreamsBlob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="catalog.csv"`)
		_, _ = w.Write([]byte("a,b\n"))
	}))
	defer srv.Close()

	blob, err := New(Config{BaseURL: srv.URL}, nil).Download(context.Background(), "/export/", nil)
	require.NoError(t, err)
	defer blob.Body.Close()
	data, _ := io.ReadAll(blob.Body)
	require.Equal(t, "a,b\n", string(data))
	require.Equal(t, "catalog.csv", blob.Filename)
	require.Equal(t, "text/csv", blob.ContentType)
}

func TestRouteLabel(t *testing.T) {
	require.Equal(t, "/jobs/:id/status", routeLabel("jobs/42/status"))
	require.Equal(t, "/users/change_role/:id", routeLabel("/users/change_role/7"))
	require.Equal(t, "/export", routeLabel("/export/"))
}
