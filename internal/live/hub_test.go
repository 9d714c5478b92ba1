package live

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/appstate"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/photo"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/store"
)

func newTestHub(t *testing.T) (*Hub, *appstate.Store, *httptest.Server) {
	t.Helper()
	dir := t.TempDir()
	db := store.NewSQLiteStore(filepath.Join(dir, "diary.db"))
	t.Cleanup(func() { db.Close() })

	hub := NewHub(nil)
	st := appstate.New(appstate.Options{
		Gateway:  db,
		Photos:   photo.NewFileStore(dir),
		Notifier: hub,
	})
	if err := st.InitializeAppState(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	hub.Attach(st)

	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, st, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// next reads messages until one of the given type arrives.
func next(t *testing.T, conn *websocket.Conn, typ string) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read %s: %v", typ, err)
		}
		if msg.Type == typ {
			return msg
		}
	}
}

func TestHealth(t *testing.T) {
	_, _, srv := newTestHub(t)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "OK" {
		t.Errorf("unexpected health response %d %q", resp.StatusCode, body)
	}
}

func TestSnapshotOnConnectAndChange(t *testing.T) {
	_, st, srv := newTestHub(t)
	conn := dial(t, srv)

	var first model.AppData
	if err := json.Unmarshal(next(t, conn, "snapshot").Data, &first); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if first.Settings.Theme != model.ThemeSystem || len(first.Water) != 0 {
		t.Errorf("unexpected initial snapshot: %+v", first)
	}

	if _, err := st.AddWater(context.Background(), model.WaterEntry{Date: "2024-05-01", Time: "09:00", Amount: 250}); err != nil {
		t.Fatalf("add water: %v", err)
	}
	var changed model.AppData
	if err := json.Unmarshal(next(t, conn, "snapshot").Data, &changed); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(changed.Water) != 1 || changed.Water[0].Amount != 250 {
		t.Errorf("change not pushed: %+v", changed.Water)
	}
}

func TestClientActions(t *testing.T) {
	_, st, srv := newTestHub(t)
	conn := dial(t, srv)
	next(t, conn, "snapshot")

	conn.WriteJSON(map[string]any{
		"type": "add_weight",
		"data": map[string]any{"date": "2024-05-01", "weight": 70.5},
	})
	var snap model.AppData
	json.Unmarshal(next(t, conn, "snapshot").Data, &snap)
	if len(snap.Weights) != 1 || snap.Weights[0].Weight != 70.5 {
		t.Fatalf("weight not added: %+v", snap.Weights)
	}
	if got := st.Snapshot().Weights; len(got) != 1 {
		t.Errorf("store not updated: %+v", got)
	}

	conn.WriteJSON(map[string]any{
		"type": "add_water",
		"data": map[string]any{"date": "2024-05-01", "time": "10:00", "amount": 5000},
	})
	var notice appstate.Notice
	json.Unmarshal(next(t, conn, "notice").Data, &notice)
	if notice.Level != appstate.NoticeError || !strings.HasPrefix(notice.Message, "Error: ") {
		t.Errorf("unexpected notice: %+v", notice)
	}
	if msg := next(t, conn, "error"); msg.Message == "" {
		t.Error("error reply without message")
	}

	conn.WriteJSON(map[string]any{"type": "bogus"})
	if msg := next(t, conn, "error"); msg.Message != "Unknown message type" {
		t.Errorf("unexpected error reply %q", msg.Message)
	}
}
