package castsweep

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"castsweep/neynar"
)

// mockAPI is a stand-in for the remote graph service, serving the
// signer, following-list, and follow-mutation endpoints.
type mockAPI struct {
	t *testing.T

	myFID     int64
	following []neynar.User

	// failUnfollow/failFollow mark FIDs whose mutation should be
	// rejected with a server error.
	failUnfollow map[int64]bool
	failFollow   map[int64]bool

	mu            sync.Mutex
	unfollowCalls []int64
	followCalls   []int64
}

func (m *mockAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/signer/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"fid": %d}`, m.myFID)
	})

	mux.HandleFunc("/following/", func(w http.ResponseWriter, r *http.Request) {
		items := make([]map[string]any, 0, len(m.following))
		for i := range m.following {
			items = append(items, map[string]any{"user": &m.following[i]})
		}
		json.NewEncoder(w).Encode(map[string]any{
			"users": items,
			"next":  map[string]any{},
		})
	})

	mux.HandleFunc("/user/follow", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			TargetFIDs []int64 `json:"target_fids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.TargetFIDs) != 1 {
			m.t.Errorf("bad mutation payload: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fid := payload.TargetFIDs[0]

		m.mu.Lock()
		defer m.mu.Unlock()

		switch r.Method {
		case http.MethodDelete:
			m.unfollowCalls = append(m.unfollowCalls, fid)
			if m.failUnfollow[fid] {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		case http.MethodPost:
			m.followCalls = append(m.followCalls, fid)
			if m.failFollow[fid] {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		default:
			m.t.Errorf("unexpected method %s", r.Method)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		fmt.Fprint(w, `{"success": true}`)
	})

	return mux
}

func newTestService(t *testing.T, api *mockAPI) (*Castsweep, string) {
	t.Helper()

	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	dataDir := t.TempDir()

	c, err := New(&Args{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: &neynar.Config{
			APIKey:     "test-key",
			SignerUUID: "test-signer",
			BaseURL:    srv.URL,
		},
		DataDir: dataDir,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	return c, dataDir
}

func testUsers(n int) []neynar.User {
	users := make([]neynar.User, 0, n)
	for i := 1; i <= n; i++ {
		users = append(users, neynar.User{
			FID:         int64(i),
			Username:    fmt.Sprintf("user%d", i),
			DisplayName: fmt.Sprintf("User %d", i),
		})
	}
	return users
}
