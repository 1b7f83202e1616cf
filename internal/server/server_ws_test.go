package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"wavespace/internal/quiz"
)

func wsURL(ts *httptest.Server, quizID, query string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/quizzes/" + quizID + query
}

func dialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
	HTML string          `json:"html"`
}

func readWSMessage(t *testing.T, conn *websocket.Conn, timeout time.Duration) wsMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read websocket message: %v", err)
	}
	var msg wsMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("decode websocket message: %v", err)
	}
	return msg
}

// waitForSnapshot reads until a snapshot satisfies match. Broadcasts may
// repeat or coalesce, so intermediate snapshots are skipped.
func waitForSnapshot(t *testing.T, conn *websocket.Conn, timeout time.Duration, match func(map[string]any) bool) map[string]any {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		msg := readWSMessage(t, conn, time.Until(deadline))
		if msg.Type != "snapshot" {
			continue
		}
		var data map[string]any
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		if match(data) {
			return data
		}
	}
	t.Fatalf("no matching snapshot within %s", timeout)
	return nil
}

func readUntilType(t *testing.T, conn *websocket.Conn, timeout time.Duration, kind string) wsMessage {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		msg := readWSMessage(t, conn, time.Until(deadline))
		if msg.Type == kind {
			return msg
		}
	}
}

func statusOf(snapshot map[string]any) string {
	return snapshot["quiz"].(map[string]any)["status"].(string)
}

func TestWebsocketRolePayloads(t *testing.T) {
	_, ts := newTestApp(t, testConfig())
	quizID, code := createQuiz(t, ts, 1)
	mustCommand(t, ts, quizID, "open_lobby")

	player := dialWS(t, wsURL(ts, quizID, ""))
	driver := dialWS(t, wsURL(ts, quizID, "?role=driver"))
	host := dialWS(t, wsURL(ts, quizID, "?role=host&secret="+testAdminSecret))

	if msg := readWSMessage(t, player, 5*time.Second); msg.Type != "snapshot" {
		t.Fatalf("expected player first message snapshot, got %s", msg.Type)
	}
	if msg := readWSMessage(t, driver, 5*time.Second); msg.Type != "snapshot" {
		t.Fatalf("expected driver first message snapshot, got %s", msg.Type)
	}
	status := readUntilType(t, driver, 5*time.Second, "html")
	if !strings.Contains(status.HTML, code) {
		t.Fatalf("expected driver status fragment with join code, got %+v", status)
	}

	first := waitForSnapshot(t, host, 5*time.Second, func(map[string]any) bool { return true })
	if first["next_command"] != "start" {
		t.Fatalf("expected host snapshot to carry next_command, got %v", first["next_command"])
	}

	joinQuiz(t, ts, code, "Ada")
	waitForSnapshot(t, player, 5*time.Second, func(s map[string]any) bool {
		return s["participant_count"] == float64(1)
	})

	mustCommand(t, ts, quizID, "start")
	live := waitForSnapshot(t, player, 5*time.Second, func(s map[string]any) bool {
		return statusOf(s) == "question"
	})
	if _, leaked := live["question"].(map[string]any)["correct_option"]; leaked {
		t.Fatalf("player saw the correct option during the question")
	}
	hostLive := waitForSnapshot(t, host, 5*time.Second, func(s map[string]any) bool {
		return statusOf(s) == "question"
	})
	if _, ok := hostLive["question"].(map[string]any)["correct_option"]; !ok {
		t.Fatalf("host snapshot should include the correct option")
	}
}

func TestWebsocketHostRequiresSecret(t *testing.T) {
	_, ts := newTestApp(t, testConfig())
	quizID, _ := createQuiz(t, ts, 1)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, quizID, "?role=host"), nil)
	if err == nil {
		t.Fatalf("expected host dial without secret to fail")
	}
	if resp == nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, resp.StatusCode)
	}

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(ts, "missing", ""), nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected unknown quiz to be rejected with 404, got %v", err)
	}
}

func TestWebsocketDeletedQuiz(t *testing.T) {
	_, ts := newTestApp(t, testConfig())
	quizID, _ := createQuiz(t, ts, 1)
	player := dialWS(t, wsURL(ts, quizID, ""))
	readWSMessage(t, player, 5*time.Second)

	expectStatus(t, adminRequest(t, ts, http.MethodDelete, "/api/admin/quizzes/"+quizID, nil), http.StatusNoContent)
	readUntilType(t, player, 5*time.Second, "deleted")
}

func TestAutoRevealClosesQuestion(t *testing.T) {
	cfg := testConfig()
	cfg.AutoReveal = true
	cfg.RevealGraceSeconds = 0
	srv, ts := newTestApp(t, cfg)

	created, _, err := srv.Service().CreateQuiz(context.Background(), quiz.Draft{
		Title: "Quick",
		Questions: []quiz.DraftQuestion{
			{Text: "Fast?", Options: []string{"a", "b", "c", "d"}, CorrectOption: 0, TimeLimitSeconds: 1},
		},
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	player := dialWS(t, wsURL(ts, created.ID, ""))
	mustCommand(t, ts, created.ID, "open_lobby", "start")

	revealed := waitForSnapshot(t, player, 5*time.Second, func(s map[string]any) bool {
		return statusOf(s) == "results"
	})
	if _, ok := revealed["question"].(map[string]any)["correct_option"]; !ok {
		t.Fatalf("expected correct option once results are shown")
	}

	// The host's own reveal after the timer is a no-op.
	again := mustCommand(t, ts, created.ID, "reveal_results")
	if again["status"] != "results" {
		t.Fatalf("expected results, got %v", again)
	}
}
