package atlas

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	atlasclient "github.com/teabranch/atlas-provision/internal/clients/atlas"
	"github.com/teabranch/atlas-provision/internal/logging"
	"github.com/teabranch/atlas-provision/internal/types"
)

// Endpoint keys counted by atlasStub.
const (
	epListOrgs      = "list-orgs"
	epCreateProject = "create-project"
	epCreateCluster = "create-cluster"
	epGetCluster    = "get-cluster"
	epCreateUser    = "create-user"
)

type stubReply struct {
	status int
	body   any
}

// atlasStub is an in-process Atlas Admin API. Each endpoint returns its
// configured reply; get-cluster walks through states and repeats the last.
type atlasStub struct {
	t *testing.T

	mu     sync.Mutex
	calls  map[string]int
	bodies map[string][]map[string]any

	orgs          stubReply
	createProject stubReply
	createCluster stubReply
	getCluster    *stubReply
	createUser    stubReply

	states      []string
	standardSrv string
}

func newAtlasStub(t *testing.T) *atlasStub {
	return &atlasStub{
		t:      t,
		calls:  map[string]int{},
		bodies: map[string][]map[string]any{},
		orgs: stubReply{status: http.StatusOK, body: map[string]any{
			"results":    []map[string]any{{"id": "org-a", "name": "Org A"}, {"id": "org-b", "name": "Org B"}},
			"totalCount": 2,
		}},
		createProject: stubReply{status: http.StatusCreated, body: map[string]any{
			"id": "proj-123", "name": "placeholder", "orgId": "org-a", "clusterCount": 0, "created": "2024-01-01T00:00:00Z",
		}},
		createCluster: stubReply{status: http.StatusCreated, body: map[string]any{"name": "placeholder", "stateName": "CREATING"}},
		createUser:    stubReply{status: http.StatusCreated, body: map[string]any{"username": "admin", "databaseName": "admin", "groupId": "proj-123"}},
		states:        []string{"IDLE"},
	}
}

func apiError(status int, code, detail string) stubReply {
	return stubReply{status: status, body: map[string]any{
		"error": status, "errorCode": code, "detail": detail, "reason": http.StatusText(status),
	}}
}

func (s *atlasStub) start() *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(s.serve))
	s.t.Cleanup(srv.Close)
	return srv
}

func (s *atlasStub) serve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	var key string
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/orgs"):
		key = epListOrgs
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/groups"):
		key = epCreateProject
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/clusters"):
		key = epCreateCluster
	case r.Method == http.MethodGet && strings.Contains(path, "/clusters/"):
		key = epGetCluster
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/databaseUsers"):
		key = epCreateUser
	default:
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	n := s.calls[key]
	s.calls[key]++
	if r.Body != nil {
		raw, _ := io.ReadAll(r.Body)
		var decoded map[string]any
		if json.Unmarshal(raw, &decoded) == nil {
			s.bodies[key] = append(s.bodies[key], decoded)
		}
	}
	reply := s.replyFor(key, n)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.status)
	_ = json.NewEncoder(w).Encode(reply.body)
}

func (s *atlasStub) replyFor(key string, n int) stubReply {
	switch key {
	case epListOrgs:
		return s.orgs
	case epCreateProject:
		return s.createProject
	case epCreateCluster:
		return s.createCluster
	case epCreateUser:
		return s.createUser
	default:
		if s.getCluster != nil {
			return *s.getCluster
		}
		state := s.states[min(n, len(s.states)-1)]
		body := map[string]any{"name": "placeholder", "stateName": state}
		if s.standardSrv != "" {
			body["connectionStrings"] = map[string]any{"standardSrv": s.standardSrv}
		}
		return stubReply{status: http.StatusOK, body: body}
	}
}

func (s *atlasStub) count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

func (s *atlasStub) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *atlasStub) lastBody(key string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bodies[key]
	require.NotEmpty(s.t, b, "no request body recorded for %s", key)
	return b[len(b)-1]
}

func newClient(t *testing.T, baseURL string) *atlasclient.Client {
	return newClientWithCredentials(t, baseURL, types.Credentials{PublicKey: "pub", PrivateKey: "priv"})
}

func newClientWithCredentials(t *testing.T, baseURL string, creds types.Credentials) *atlasclient.Client {
	t.Helper()
	c, err := atlasclient.NewClient(atlasclient.Config{
		Credentials:    creds,
		BaseURL:        baseURL,
		RequestTimeout: 5 * time.Second,
		Logger:         logging.Discard(),
	})
	require.NoError(t, err)
	return c
}

// instantTimer fires immediately and records requested delays.
type instantTimer struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (t *instantTimer) After(d time.Duration) <-chan time.Time {
	t.mu.Lock()
	t.delays = append(t.delays, d)
	t.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

func (t *instantTimer) recorded() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.delays...)
}
