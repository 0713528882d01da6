package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNotifierDisabledIsNoOp(t *testing.T) {
	n := New("", "secret")
	if n.Enabled() {
		t.Error("Notifier with empty URL must be disabled")
	}
	if err := n.Deliver(context.Background(), &Event{Type: EventExtractCompleted}); err != nil {
		t.Errorf("disabled Deliver() returned error: %v", err)
	}
}

func TestDeliverSignsPayload(t *testing.T) {
	const secret = "hook-secret"

	var gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Mallscan-Signature")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	event := &Event{
		Type:      EventExtractCompleted,
		Timestamp: 1700000000,
		URL:       "https://www.kolonmall.com/Search/Outer",
		Total:     42,
		Engine:    "http",
	}
	if err := New(srv.URL, secret).Deliver(context.Background(), event); err != nil {
		t.Fatalf("Deliver() failed: %v", err)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(gotBody)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if gotSig != want {
		t.Errorf("signature = %q, want %q", gotSig, want)
	}

	var decoded Event
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded.Total != 42 || decoded.Type != EventExtractCompleted {
		t.Errorf("payload = %+v", decoded)
	}
}

func TestDeliverWithoutSecretOmitsSignature(t *testing.T) {
	var gotSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Mallscan-Signature")
	}))
	defer srv.Close()

	if err := New(srv.URL, "").Deliver(context.Background(), &Event{Type: EventExtractCompleted}); err != nil {
		t.Fatalf("Deliver() failed: %v", err)
	}
	if gotSig != "" {
		t.Errorf("unexpected signature header %q", gotSig)
	}
}

func TestDeliverErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := New(srv.URL, "").Deliver(context.Background(), &Event{Type: EventExtractCompleted}); err == nil {
		t.Error("expected error for a 500 response")
	}
}
