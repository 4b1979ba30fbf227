package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/api"
	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/auth"
	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/domain"
	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/storage/memory"
)

// testServer creates a test server with in-memory storage.
type testServer struct {
	handler http.Handler
	store   *memory.Store
	tokens  *auth.TokenService
}

func newTestServer() *testServer {
	store := memory.New()
	hasher := auth.NewPasswordHasher(bcrypt.MinCost, 2)
	tokens := auth.NewTokenService([]byte("0123456789abcdef0123456789abcdef"), time.Hour)

	handler := api.NewRouter(store, hasher, tokens, 15*time.Second)

	return &testServer{
		handler: handler,
		store:   store,
		tokens:  tokens,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody io.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewReader(jsonBytes)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// register creates a user and returns the session response.
func (ts *testServer) register(t *testing.T, name, email string) *domain.SessionResponse {
	t.Helper()

	rr := ts.request("POST", "/identities", domain.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "hunter2hunter2",
	}, "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("register %s: expected status 201, got %d: %s", name, rr.Code, rr.Body.String())
	}

	var resp domain.SessionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("register %s: decoding response: %v", name, err)
	}
	if resp.Token == "" {
		t.Fatalf("register %s: expected token in response", name)
	}
	return &resp
}

func (ts *testServer) createGroup(t *testing.T, token, name, subject string) *domain.Group {
	t.Helper()

	rr := ts.request("POST", "/groups", domain.CreateGroupRequest{Name: name, Subject: subject}, token)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create group %s: expected status 201, got %d: %s", name, rr.Code, rr.Body.String())
	}

	var group domain.Group
	_ = json.Unmarshal(rr.Body.Bytes(), &group)
	return &group
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer()

	rr := ts.request("GET", "/health", nil, "")

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	var resp map[string]string
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %s", resp["status"])
	}
}

func TestRegisterThenLogin(t *testing.T) {
	ts := newTestServer()

	reg := ts.register(t, "alice-smith", "alice@example.com")

	// Login with the same credentials.
	rr := ts.request("POST", "/sessions", domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var login domain.SessionResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &login)
	if login.User.ID != reg.User.ID {
		t.Errorf("Expected login user %s, got %s", reg.User.ID, login.User.ID)
	}

	// The token resolves to the same identity.
	rr = ts.request("GET", "/session", nil, login.Token)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var me domain.User
	_ = json.Unmarshal(rr.Body.Bytes(), &me)
	if me.ID != reg.User.ID {
		t.Errorf("Expected session user %s, got %s", reg.User.ID, me.ID)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ts := newTestServer()
	ts.register(t, "alice-smith", "alice@example.com")

	wrongPassword := ts.request("POST", "/sessions", domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "not-the-password",
	}, "")
	unknownEmail := ts.request("POST", "/sessions", domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "hunter2hunter2",
	}, "")

	if wrongPassword.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for wrong password, got %d", wrongPassword.Code)
	}
	if unknownEmail.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for unknown email, got %d", unknownEmail.Code)
	}
	// Same status, same body: no account enumeration.
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Errorf("Expected identical bodies, got %q and %q",
			wrongPassword.Body.String(), unknownEmail.Body.String())
	}
}

func TestPasswordHashNeverSerialized(t *testing.T) {
	ts := newTestServer()
	ts.register(t, "alice-smith", "alice@example.com")

	rr := ts.request("POST", "/sessions", domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	}, "")
	for _, needle := range []string{"password", "$2a$", "hash"} {
		if strings.Contains(strings.ToLower(rr.Body.String()), needle) {
			t.Errorf("Response body leaks %q: %s", needle, rr.Body.String())
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer()

	cases := []struct {
		name string
		req  domain.RegisterRequest
	}{
		{"short name", domain.RegisterRequest{Name: "abc", Email: "a@example.com", Password: "hunter2hunter2"}},
		{"bad email", domain.RegisterRequest{Name: "alice-smith", Email: "not-an-email", Password: "hunter2hunter2"}},
		{"short password", domain.RegisterRequest{Name: "alice-smith", Email: "a@example.com", Password: "short"}},
	}
	for _, tc := range cases {
		rr := ts.request("POST", "/identities", tc.req, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", tc.name, rr.Code)
		}
	}
}

func TestRegisterDuplicateName(t *testing.T) {
	ts := newTestServer()
	ts.register(t, "alice-smith", "alice@example.com")

	rr := ts.request("POST", "/identities", domain.RegisterRequest{
		Name:     "alice-smith",
		Email:    "other@example.com",
		Password: "hunter2hunter2",
	}, "")
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rr.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer()

	// Missing header
	rr := ts.request("GET", "/session", nil, "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}

	// Wrong scheme
	req := httptest.NewRequest("GET", "/session", nil)
	req.Header.Set("Authorization", "Basic invalid")
	rr = httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}

	// Garbage token
	rr = ts.request("GET", "/session", nil, "not.a.jwt")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}
}

func TestExpiredToken(t *testing.T) {
	ts := newTestServer()
	reg := ts.register(t, "alice-smith", "alice@example.com")

	expired := auth.NewTokenService([]byte("0123456789abcdef0123456789abcdef"), -time.Minute)
	tok, err := expired.Issue(reg.User)
	if err != nil {
		t.Fatalf("issuing expired token: %v", err)
	}

	rr := ts.request("GET", "/session", nil, tok)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "expired") {
		t.Errorf("Expected expiry reason in body, got %s", rr.Body.String())
	}
}

func TestDeletedSubjectTreatedAsUnauthenticated(t *testing.T) {
	ts := newTestServer()

	// Token for a subject that does not exist in the store.
	tok, err := ts.tokens.Issue(&domain.User{ID: "ghost", Email: "ghost@example.com"})
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	rr := ts.request("GET", "/session", nil, tok)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}
	// The body must not hint at whether the account ever existed.
	if strings.Contains(strings.ToLower(rr.Body.String()), "found") {
		t.Errorf("Body leaks subject resolution detail: %s", rr.Body.String())
	}
}

func TestPublicGroupDiscovery(t *testing.T) {
	ts := newTestServer()
	alice := ts.register(t, "alice-smith", "alice@example.com")
	group := ts.createGroup(t, alice.Token, "algorithms", "computer science")

	// Listing and detail need no auth.
	rr := ts.request("GET", "/groups", nil, "")
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	var groups []*domain.Group
	_ = json.Unmarshal(rr.Body.Bytes(), &groups)
	if len(groups) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(groups))
	}

	rr = ts.request("GET", "/groups/"+group.ID, nil, "")
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	// Creating needs auth.
	rr = ts.request("POST", "/groups", domain.CreateGroupRequest{Name: "x", Subject: "y"}, "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}
}

func TestJoinGroupRepeatRejected(t *testing.T) {
	ts := newTestServer()
	alice := ts.register(t, "alice-smith", "alice@example.com")
	bob := ts.register(t, "bobby-jones", "bob@example.com")
	group := ts.createGroup(t, alice.Token, "algorithms", "computer science")

	rr := ts.request("POST", "/groups/"+group.ID+"/members", nil, bob.Token)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var joined domain.Group
	_ = json.Unmarshal(rr.Body.Bytes(), &joined)
	if len(joined.Members) != 1 || joined.Members[0] != "bobby-jones" {
		t.Errorf("Expected members [bobby-jones], got %v", joined.Members)
	}

	// Second join conflicts and leaves the set unchanged.
	rr = ts.request("POST", "/groups/"+group.ID+"/members", nil, bob.Token)
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rr.Code)
	}

	rr = ts.request("GET", "/groups/"+group.ID, nil, "")
	var after domain.Group
	_ = json.Unmarshal(rr.Body.Bytes(), &after)
	if len(after.Members) != 1 {
		t.Errorf("Expected 1 member after repeat join, got %d", len(after.Members))
	}
}

func TestConcurrentJoinsDistinctUsers(t *testing.T) {
	ts := newTestServer()
	alice := ts.register(t, "alice-smith", "alice@example.com")
	group := ts.createGroup(t, alice.Token, "algorithms", "computer science")

	const n = 16
	tokens := make([]string, n)
	for i := 0; i < n; i++ {
		resp := ts.register(t, fmt.Sprintf("member-%02d", i), fmt.Sprintf("m%02d@example.com", i))
		tokens[i] = resp.Token
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(tok string) {
			defer wg.Done()
			rr := ts.request("POST", "/groups/"+group.ID+"/members", nil, tok)
			if rr.Code != http.StatusOK {
				t.Errorf("Expected status 200, got %d", rr.Code)
			}
		}(tokens[i])
	}
	wg.Wait()

	rr := ts.request("GET", "/groups/"+group.ID, nil, "")
	var after domain.Group
	_ = json.Unmarshal(rr.Body.Bytes(), &after)
	if len(after.Members) != n {
		t.Errorf("Expected %d members, got %d", n, len(after.Members))
	}
}

func TestPostsRequireMembership(t *testing.T) {
	ts := newTestServer()
	alice := ts.register(t, "alice-smith", "alice@example.com")
	group := ts.createGroup(t, alice.Token, "algorithms", "computer science")

	// The owner is not automatically a member.
	rr := ts.request("POST", "/groups/"+group.ID+"/posts", domain.CreatePostRequest{Text: "hi"}, alice.Token)
	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rr.Code)
	}
	rr = ts.request("GET", "/groups/"+group.ID+"/posts", nil, alice.Token)
	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rr.Code)
	}

	// After joining, both work.
	ts.request("POST", "/groups/"+group.ID+"/members", nil, alice.Token)
	rr = ts.request("POST", "/groups/"+group.ID+"/posts", domain.CreatePostRequest{Text: "hi"}, alice.Token)
	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	rr = ts.request("GET", "/groups/"+group.ID+"/posts", nil, alice.Token)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
}

func TestGroupDeleteOwnerOnly(t *testing.T) {
	ts := newTestServer()
	alice := ts.register(t, "alice-smith", "alice@example.com")
	bob := ts.register(t, "bobby-jones", "bob@example.com")
	group := ts.createGroup(t, alice.Token, "algorithms", "computer science")

	rr := ts.request("DELETE", "/groups/"+group.ID, nil, bob.Token)
	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rr.Code)
	}

	rr = ts.request("DELETE", "/groups/"+group.ID, nil, alice.Token)
	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rr.Code)
	}
}

func TestEndToEndScenario(t *testing.T) {
	ts := newTestServer()

	// alice registers, logs in, creates G1.
	alice := ts.register(t, "alice-smith", "alice@example.com")
	group := ts.createGroup(t, alice.Token, "G1", "mathematics")

	// bob registers and joins G1; member list becomes ["bobby-jones"].
	bob := ts.register(t, "bobby-jones", "bob@example.com")
	rr := ts.request("POST", "/groups/"+group.ID+"/members", nil, bob.Token)
	if rr.Code != http.StatusOK {
		t.Fatalf("join: expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var joined domain.Group
	_ = json.Unmarshal(rr.Body.Bytes(), &joined)
	if len(joined.Members) != 1 || joined.Members[0] != "bobby-jones" {
		t.Fatalf("Expected members [bobby-jones], got %v", joined.Members)
	}

	// bob creates a post.
	rr = ts.request("POST", "/groups/"+group.ID+"/posts", domain.CreatePostRequest{Text: "hi"}, bob.Token)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create post: expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var post domain.Post
	_ = json.Unmarshal(rr.Body.Bytes(), &post)
	if post.AuthorName != "bobby-jones" {
		t.Errorf("Expected author bobby-jones, got %s", post.AuthorName)
	}

	// alice cannot delete bob's post.
	rr = ts.request("DELETE", "/posts/"+post.ID, nil, alice.Token)
	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rr.Code)
	}

	// bob edits his own post, then deletes it.
	rr = ts.request("PUT", "/posts/"+post.ID, domain.UpdatePostRequest{Text: "hello"}, bob.Token)
	if rr.Code != http.StatusOK {
		t.Errorf("edit post: expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	rr = ts.request("DELETE", "/posts/"+post.ID, nil, bob.Token)
	if rr.Code != http.StatusNoContent {
		t.Errorf("delete post: expected status 204, got %d", rr.Code)
	}

	// Post is absent from subsequent listing.
	rr = ts.request("GET", "/groups/"+group.ID+"/posts", nil, bob.Token)
	var posts []*domain.Post
	_ = json.Unmarshal(rr.Body.Bytes(), &posts)
	if len(posts) != 0 {
		t.Errorf("Expected 0 posts, got %d", len(posts))
	}

	// alice deletes G1; group and posts are gone.
	rr = ts.request("DELETE", "/groups/"+group.ID, nil, alice.Token)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete group: expected status 204, got %d", rr.Code)
	}
	rr = ts.request("GET", "/groups/"+group.ID, nil, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestPostOnMissingGroup(t *testing.T) {
	ts := newTestServer()
	alice := ts.register(t, "alice-smith", "alice@example.com")

	rr := ts.request("POST", "/groups/no-such-group/posts", domain.CreatePostRequest{Text: "hi"}, alice.Token)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}
