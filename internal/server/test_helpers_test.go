package server

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wavespace/internal/config"
	"wavespace/internal/store"
)

const testAdminSecret = "test-admin-secret"

func testConfig() config.Config {
	cfg := config.Default()
	cfg.GinMode = gin.TestMode
	cfg.AdminSecret = testAdminSecret
	cfg.TokenSecret = "test-token-secret"
	cfg.JoinRatePerMinute = 100000
	cfg.ResyncSeconds = 0
	return cfg
}

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func newTestApp(t *testing.T, cfg config.Config) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(store.NewMemory(), cfg, zap.NewNop())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return srv, ts
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func adminRequest(t *testing.T, ts *httptest.Server, method, path string, payload any) *http.Response {
	t.Helper()
	return doRequest(t, ts, method, path, payload, map[string]string{"X-Admin-Secret": testAdminSecret})
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func expectStatus(t *testing.T, resp *http.Response, want int) map[string]any {
	t.Helper()
	if resp.StatusCode != want {
		body := decodeBody(t, resp)
		t.Fatalf("expected status %d, got %d: %v", want, resp.StatusCode, body)
	}
	if resp.StatusCode == http.StatusNoContent {
		resp.Body.Close()
		return nil
	}
	return decodeBody(t, resp)
}

func quizPayload(questionCount int) map[string]any {
	questions := make([]map[string]any, 0, questionCount)
	for i := 0; i < questionCount; i++ {
		n := strconv.Itoa(i + 1)
		questions = append(questions, map[string]any{
			"text":           "Question " + n,
			"options":        []string{"A" + n, "B" + n, "C" + n, "D" + n},
			"correct_option": 1,
		})
	}
	return map[string]any{"title": "Test quiz", "questions": questions}
}

// createQuiz creates a quiz whose questions all have option 1 correct.
func createQuiz(t *testing.T, ts *httptest.Server, questionCount int) (string, string) {
	t.Helper()
	body := expectStatus(t, adminRequest(t, ts, http.MethodPost, "/api/admin/quizzes", quizPayload(questionCount)), http.StatusCreated)
	created := body["quiz"].(map[string]any)
	return created["id"].(string), created["join_code"].(string)
}

func sendCommand(t *testing.T, ts *httptest.Server, quizID, command string, payload any) *http.Response {
	t.Helper()
	return adminRequest(t, ts, http.MethodPost, "/api/admin/quizzes/"+quizID+"/commands/"+command, payload)
}

func mustCommand(t *testing.T, ts *httptest.Server, quizID string, commands ...string) map[string]any {
	t.Helper()
	var body map[string]any
	for _, command := range commands {
		body = expectStatus(t, sendCommand(t, ts, quizID, command, nil), http.StatusOK)
	}
	return body
}

func joinQuiz(t *testing.T, ts *httptest.Server, code, nickname string) (string, string) {
	t.Helper()
	body := expectStatus(t, doRequest(t, ts, http.MethodPost, "/api/join", map[string]string{
		"join_code": code,
		"nickname":  nickname,
	}, nil), http.StatusOK)
	return body["participant_id"].(string), body["token"].(string)
}

func submitAnswer(t *testing.T, ts *httptest.Server, token, questionID string, option int) map[string]any {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/answers", map[string]any{
		"question_id":     questionID,
		"selected_option": option,
	}, map[string]string{"Authorization": "Bearer " + token})
	return expectStatus(t, resp, http.StatusOK)
}

func hostSnapshot(t *testing.T, ts *httptest.Server, quizID string) map[string]any {
	t.Helper()
	return expectStatus(t, adminRequest(t, ts, http.MethodGet, "/api/admin/quizzes/"+quizID, nil), http.StatusOK)
}

func publicSnapshot(t *testing.T, ts *httptest.Server, quizID string) map[string]any {
	t.Helper()
	return expectStatus(t, doRequest(t, ts, http.MethodGet, "/api/quizzes/"+quizID, nil, nil), http.StatusOK)
}

func currentQuestionID(t *testing.T, snapshot map[string]any) string {
	t.Helper()
	question, ok := snapshot["question"].(map[string]any)
	if !ok {
		t.Fatalf("expected a current question in %v", snapshot)
	}
	return question["id"].(string)
}
