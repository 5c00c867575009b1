package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/handsignal/internal/alert"
	"github.com/ayusman/handsignal/internal/app"
	"github.com/ayusman/handsignal/internal/server"
	"github.com/ayusman/handsignal/internal/signal"
	"github.com/ayusman/handsignal/internal/store"
	"github.com/ayusman/handsignal/testdata"
)

func TestE2E_DistressSignalWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	// Alert receiver
	var (
		mu       sync.Mutex
		received []alert.Alert
	)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var a alert.Alert
		json.NewDecoder(r.Body).Decode(&a)
		mu.Lock()
		received = append(received, a)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()

	dispatcher := alert.NewDispatcher(alert.DispatcherConfig{
		Notifier: alert.NewWebhookNotifier(hook.URL, time.Second, nil),
		Recorder: s,
	})

	application := app.New(app.Config{
		Store:       s,
		FrameWidth:  640,
		FrameHeight: 480,
		Dispatcher:  dispatcher,
	})

	srv := server.New(server.Config{Store: s, Tracker: application})
	defer srv.Shutdown(context.Background())

	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	getStatus := func(t *testing.T) app.Status {
		t.Helper()
		resp, err := client.Get(ts.URL + "/api/status")
		if err != nil {
			t.Fatalf("GET /api/status error = %v", err)
		}
		defer resp.Body.Close()

		var st app.Status
		if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		return st
	}

	sessionID, err := application.BeginSession(store.SourceReplay)
	if err != nil {
		t.Fatalf("BeginSession() error = %v", err)
	}

	t.Run("StartsNormal", func(t *testing.T) {
		st := getStatus(t)
		if st.Status != signal.StatusNormal {
			t.Errorf("status = %s, want NORMAL", st.Status)
		}
		if st.SessionID != sessionID {
			t.Errorf("session_id = %q, want %q", st.SessionID, sessionID)
		}
	})

	// Watch the status stream while frames are processed.
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/status/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial status stream: %v", err)
	}
	defer conn.Close()

	seen := make(chan signal.Status, 16)
	go func() {
		defer close(seen)
		for {
			var st app.Status
			if err := conn.ReadJSON(&st); err != nil {
				return
			}
			seen <- st.Status
		}
	}()

	base := time.Now().Add(-time.Minute).UnixMilli()
	frames := testdata.Frames(base, testdata.Distress...)

	t.Run("SignalTriggers", func(t *testing.T) {
		for _, f := range frames {
			application.ProcessFrame(time.UnixMilli(f.Timestamp), f.Hands)
			if f.Timestamp-base == 990 {
				if st := getStatus(t); st.Status != signal.StatusTriggered || st.DebugText != "DISTRESS ALERT!" {
					t.Errorf("status after fist = %+v, want TRIGGERED", st.Snapshot)
				}
				// Give the stream a chance to publish the triggered state.
				time.Sleep(200 * time.Millisecond)
			}
		}

		if st := getStatus(t); st.Status != signal.StatusNormal {
			t.Errorf("status after display window = %s, want NORMAL", st.Status)
		}
	})

	t.Run("AlertDelivered", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := dispatcher.Wait(ctx); err != nil {
			t.Fatalf("dispatcher.Wait() error = %v", err)
		}

		mu.Lock()
		defer mu.Unlock()
		if len(received) != 1 {
			t.Fatalf("received %d alerts, want 1", len(received))
		}
		if received[0].SessionID != sessionID || received[0].Type != alert.TypeDistress {
			t.Errorf("unexpected alert %+v", received[0])
		}
		if received[0].Timestamp != base+990 {
			t.Errorf("alert timestamp = %d, want %d", received[0].Timestamp, base+990)
		}
	})

	t.Run("AlertHistory", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/sessions/" + sessionID + "/alerts")
		if err != nil {
			t.Fatalf("GET session alerts error = %v", err)
		}
		defer resp.Body.Close()

		var history struct {
			Alerts []struct {
				SessionID string `json:"session_id"`
				Delivered bool   `json:"delivered"`
			} `json:"alerts"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
			t.Fatalf("decode history: %v", err)
		}

		if len(history.Alerts) != 1 || !history.Alerts[0].Delivered {
			t.Errorf("history = %+v, want one delivered alert", history.Alerts)
		}
	})

	t.Run("StreamSawTrigger", func(t *testing.T) {
		deadline := time.After(2 * time.Second)
		for {
			select {
			case st, ok := <-seen:
				if !ok {
					t.Fatal("status stream closed before TRIGGERED was seen")
				}
				if st == signal.StatusTriggered {
					return
				}
			case <-deadline:
				t.Fatal("TRIGGERED never pushed on the status stream")
			}
		}
	})

	application.EndSession()

	t.Run("SessionEnded", func(t *testing.T) {
		sess, err := s.Sessions().GetByID(sessionID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if sess.EndedAt == nil {
			t.Error("session should have an end time")
		}
	})
}
