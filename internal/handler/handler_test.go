package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"chatterbox/internal/app/identity"
	"chatterbox/internal/app/otp"
	"chatterbox/internal/app/profile"
	"chatterbox/internal/app/verify"
	"chatterbox/internal/configs"
	"chatterbox/internal/pkg/pow"
)

// capturingSender records dispatched codes instead of sending SMS.
type capturingSender struct {
	codes map[string]string
}

func (s *capturingSender) SendCode(_ context.Context, phoneNumber, code string) error {
	s.codes[phoneNumber] = code
	return nil
}

// stubStorage satisfies the avatar storage interface without talking to S3.
type stubStorage struct{}

func (stubStorage) PresignUpload(_ context.Context, key, _ string, _ int64, _ time.Duration) (string, error) {
	return "https://storage.test/upload/" + key, nil
}

func (stubStorage) PresignDownload(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.test/download/" + key, nil
}

func (stubStorage) Delete(context.Context, string) error { return nil }

type testServer struct {
	srv      *httptest.Server
	sender   *capturingSender
	profiles *profile.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	sender := &capturingSender{codes: make(map[string]string)}
	codeStore := otp.NewCodeStore(client, time.Minute, 3)
	provider := otp.NewProvider(codeStore, sender, otp.ProviderConfig{
		TestNumbers: map[string]struct{}{"+15550009999": {}},
	})
	identityStore := identity.NewStore(codeStore, identity.NewMemoryRepository())

	flows := verify.NewManager(provider, identityStore, verify.ManagerOptions{})
	t.Cleanup(flows.Shutdown)

	profileStore := profile.NewMemoryStore()

	deps := &AppDeps{
		Flows: flows,
		Config: &configs.AppConfig{
			Environment: "development",
			JWTSecret:   "test-secret",
		},
		Profiles:      profile.NewService(profileStore),
		AvatarStorage: stubStorage{},
		// Difficulty zero accepts any counter, keeping tests fast.
		Pow: pow.NewPoWManager(0),
	}

	srv := httptest.NewServer(Router(deps))
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, sender: sender, profiles: profileStore}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (ts *testServer) post(t *testing.T, path, token string, body any, headers map[string]string) (*http.Response, envelope) {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, ts.srv.URL+path, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return ts.do(t, req)
}

func (ts *testServer) get(t *testing.T, path, token string) (*http.Response, envelope) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.srv.URL+path, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return ts.do(t, req)
}

func (ts *testServer) do(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return res, env
}

// powToken solves a challenge and returns a proof token for the dispatch endpoint.
func (ts *testServer) powToken(t *testing.T) string {
	t.Helper()

	_, env := ts.get(t, "/api/pow/challenge", "")
	var challenge struct {
		Nonce string `json:"nonce"`
	}
	if err := json.Unmarshal(env.Data, &challenge); err != nil {
		t.Fatalf("decode challenge: %v", err)
	}

	_, env = ts.post(t, "/api/pow/verify", "", map[string]string{
		"nonce":   challenge.Nonce,
		"counter": "0",
	}, nil)
	var proof struct {
		PowToken string `json:"powToken"`
	}
	if err := json.Unmarshal(env.Data, &proof); err != nil {
		t.Fatalf("decode proof: %v", err)
	}
	if proof.PowToken == "" {
		t.Fatal("expected a proof token")
	}
	return proof.PowToken
}

// signIn walks the full verification flow and returns the identity token.
func (ts *testServer) signIn(t *testing.T, phoneNumber string) string {
	t.Helper()

	_, env := ts.post(t, "/api/auth/phone", "", map[string]string{"phoneNumber": phoneNumber},
		map[string]string{pow.TokenHeaderKey: ts.powToken(t)})
	if env.Code != 0 {
		t.Fatalf("start verification failed: %+v", env)
	}
	var started struct {
		FlowID string `json:"flowId"`
	}
	if err := json.Unmarshal(env.Data, &started); err != nil {
		t.Fatalf("decode flow: %v", err)
	}

	code, ok := ts.sender.codes[phoneNumber]
	if !ok {
		t.Fatalf("no code captured for %s", phoneNumber)
	}

	_, env = ts.post(t, "/api/auth/verify", "", map[string]string{
		"flowId": started.FlowID,
		"code":   code,
	}, nil)
	if env.Code != 0 {
		t.Fatalf("code submission failed: %+v", env)
	}
	var session struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected an identity token")
	}
	return session.Token
}

func TestSignInAndSaveProfile(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signIn(t, "+15550001111")

	// A fresh account starts with an empty username.
	_, env := ts.get(t, "/api/user/profile", token)
	if env.Code != 0 {
		t.Fatalf("get profile failed: %+v", env)
	}
	var got struct {
		User struct {
			UserID   string `json:"userId"`
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if got.User.Username != "" {
		t.Fatalf("expected empty username, got %q", got.User.Username)
	}

	_, env = ts.post(t, "/api/user/profile", token, map[string]string{"username": "alice"}, nil)
	if env.Code != 0 {
		t.Fatalf("save profile failed: %+v", env)
	}

	puts := ts.profiles.Puts()
	if len(puts) != 1 {
		t.Fatalf("expected exactly one store write, got %d", len(puts))
	}
	if puts[0].UserID != got.User.UserID || puts[0].Username != "alice" {
		t.Fatalf("unexpected stored record %+v", puts[0])
	}
}

func TestStartVerificationRequiresProofToken(t *testing.T) {
	ts := newTestServer(t)

	_, env := ts.post(t, "/api/auth/phone", "", map[string]string{"phoneNumber": "+15550001111"}, nil)
	if env.Code == 0 {
		t.Fatal("expected rejection without proof token")
	}
}

func TestWrongCodeEndsAttempt(t *testing.T) {
	ts := newTestServer(t)

	_, env := ts.post(t, "/api/auth/phone", "", map[string]string{"phoneNumber": "+15550001111"},
		map[string]string{pow.TokenHeaderKey: ts.powToken(t)})
	if env.Code != 0 {
		t.Fatalf("start verification failed: %+v", env)
	}
	var started struct {
		FlowID string `json:"flowId"`
	}
	if err := json.Unmarshal(env.Data, &started); err != nil {
		t.Fatalf("decode flow: %v", err)
	}

	_, env = ts.post(t, "/api/auth/verify", "", map[string]string{
		"flowId": started.FlowID,
		"code":   "000000",
	}, nil)
	if env.Code == 0 {
		t.Fatal("expected wrong code to be rejected")
	}

	// The attempt is over; the right code no longer helps.
	code := ts.sender.codes["+15550001111"]
	_, env = ts.post(t, "/api/auth/verify", "", map[string]string{
		"flowId": started.FlowID,
		"code":   code,
	}, nil)
	if env.Code == 0 {
		t.Fatal("expected flow to require a fresh phone submission")
	}
}

func TestMalformedCodeDoesNotConsumeAttempt(t *testing.T) {
	ts := newTestServer(t)

	_, env := ts.post(t, "/api/auth/phone", "", map[string]string{"phoneNumber": "+15550001111"},
		map[string]string{pow.TokenHeaderKey: ts.powToken(t)})
	if env.Code != 0 {
		t.Fatalf("start verification failed: %+v", env)
	}
	var started struct {
		FlowID string `json:"flowId"`
	}
	if err := json.Unmarshal(env.Data, &started); err != nil {
		t.Fatalf("decode flow: %v", err)
	}

	_, env = ts.post(t, "/api/auth/verify", "", map[string]string{
		"flowId": started.FlowID,
		"code":   "12ab",
	}, nil)
	if env.Code == 0 {
		t.Fatal("expected malformed code to be rejected")
	}

	// The attempt is still alive; the real code signs in.
	_, env = ts.post(t, "/api/auth/verify", "", map[string]string{
		"flowId": started.FlowID,
		"code":   ts.sender.codes["+15550001111"],
	}, nil)
	if env.Code != 0 {
		t.Fatalf("real code should still sign in: %+v", env)
	}
}

func TestTestNumberSignsInWithoutCode(t *testing.T) {
	ts := newTestServer(t)

	_, env := ts.post(t, "/api/auth/phone", "", map[string]string{"phoneNumber": "+15550009999"},
		map[string]string{pow.TokenHeaderKey: ts.powToken(t)})
	if env.Code != 0 {
		t.Fatalf("start verification failed: %+v", env)
	}

	var session struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected direct sign-in for test number")
	}
	if _, sent := ts.sender.codes["+15550009999"]; sent {
		t.Fatal("test number must not receive SMS")
	}
}

func TestProfileRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	res, env := ts.get(t, "/api/user/profile", "")
	if env.Code == 0 {
		t.Fatal("expected unauthorized")
	}
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}
}

func TestAvatarPresignRecordsKey(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signIn(t, "+15550002222")

	_, env := ts.post(t, "/api/user/avatar/presign", token, map[string]any{
		"mimeType": "image/png",
		"fileSize": 1024,
	}, nil)
	if env.Code != 0 {
		t.Fatalf("presign failed: %+v", env)
	}

	var presigned struct {
		UploadURL string `json:"uploadUrl"`
		Key       string `json:"key"`
	}
	if err := json.Unmarshal(env.Data, &presigned); err != nil {
		t.Fatalf("decode presign: %v", err)
	}
	if presigned.UploadURL == "" || presigned.Key == "" {
		t.Fatalf("incomplete presign response %+v", presigned)
	}

	// The new key shows up on the profile as a download URL.
	_, env = ts.get(t, "/api/user/profile", token)
	var got struct {
		User struct {
			Avatar string `json:"avatar"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	want := fmt.Sprintf("https://storage.test/download/%s", presigned.Key)
	if got.User.Avatar != want {
		t.Fatalf("expected avatar URL %q, got %q", want, got.User.Avatar)
	}
}
