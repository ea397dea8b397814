package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"autocaptions/internal/config"
)

func TestNewServiceReturnsNoopWhenUnconfigured(t *testing.T) {
	cfg := config.Default()
	service := NewService(&cfg)
	if _, ok := service.(noopService); !ok {
		t.Fatalf("expected noop service without credentials, got %T", service)
	}
	if err := service.NotifyJobCompleted(context.Background(), "title", "missing.mp4"); err != nil {
		t.Fatalf("noop should never fail: %v", err)
	}
}

func newTestTelegram(t *testing.T, handler http.HandlerFunc) *telegramService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &telegramService{
		baseURL: server.URL,
		token:   "123:abc",
		chatID:  "42",
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func TestNotifyJobCompletedUploadsVideo(t *testing.T) {
	video := filepath.Join(t.TempDir(), "final.mp4")
	if err := os.WriteFile(video, []byte("mp4-bytes"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}

	var gotPath string
	var gotChatID, gotCaption, gotFilename, gotBody string
	service := newTestTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		gotChatID = r.FormValue("chat_id")
		gotCaption = r.FormValue("caption")
		file, header, err := r.FormFile("video")
		if err != nil {
			t.Errorf("missing video part: %v", err)
			return
		}
		defer file.Close()
		gotFilename = header.Filename
		data, err := io.ReadAll(file)
		if err != nil {
			t.Errorf("read video part: %v", err)
		}
		gotBody = string(data)
		w.WriteHeader(http.StatusOK)
	})

	if err := service.NotifyJobCompleted(context.Background(), "My Clip", video); err != nil {
		t.Fatalf("NotifyJobCompleted: %v", err)
	}
	if gotPath != "/bot123:abc/sendVideo" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotChatID != "42" || gotCaption != "My Clip" {
		t.Fatalf("unexpected form values chat_id=%q caption=%q", gotChatID, gotCaption)
	}
	if gotFilename != "final.mp4" || gotBody != "mp4-bytes" {
		t.Fatalf("unexpected upload %q %q", gotFilename, gotBody)
	}
}

func TestNotifyJobFailedSendsMessage(t *testing.T) {
	var gotPath, gotText string
	service := newTestTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		gotText = r.FormValue("text")
		w.WriteHeader(http.StatusOK)
	})

	if err := service.NotifyJobFailed(context.Background(), "My Clip", "recognizer timed out"); err != nil {
		t.Fatalf("NotifyJobFailed: %v", err)
	}
	if gotPath != "/bot123:abc/sendMessage" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotText, "My Clip") || !strings.Contains(gotText, "recognizer timed out") {
		t.Fatalf("unexpected message %q", gotText)
	}
}

func TestPostSurfacesAPIErrors(t *testing.T) {
	service := newTestTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	})

	err := service.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error from 400 response")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected API detail in error, got %v", err)
	}
}
