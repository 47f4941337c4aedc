package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGetDefaultClient(t *testing.T) {
	client := GetDefaultClient()
	if client == nil {
		t.Fatal("Expected client to not be nil")
	}
	if client.Timeout != DefaultTimeout {
		t.Errorf("Expected timeout to be %v, got %v", DefaultTimeout, client.Timeout)
	}
	if GetDefaultClient() != client {
		t.Errorf("Expected singleton client instance")
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient(5 * time.Second)
	if client.Timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", client.Timeout)
	}
	transport, ok := client.Transport.(*http.Transport)
	if !ok || transport == nil {
		t.Fatalf("Expected transport to be *http.Transport")
	}
	if transport.MaxIdleConnsPerHost != MaxIdleConnsPerHost {
		t.Errorf("Expected MaxIdleConnsPerHost %d, got %d", MaxIdleConnsPerHost, transport.MaxIdleConnsPerHost)
	}
	if NewClient(0).Timeout != DefaultTimeout {
		t.Errorf("Expected zero timeout to fall back to default")
	}
}

func TestNewJSONRequest_Headers(t *testing.T) {
	var gotAuth, gotUA, gotCT, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotCT = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	req, err := NewJSONRequest(context.Background(), http.MethodPost, server.URL, map[string]string{"a": "b"}, "tok")
	if err != nil {
		t.Fatalf("NewJSONRequest failed: %v", err)
	}
	if _, _, err := DoAndRead(GetDefaultClient(), req); err != nil {
		t.Fatalf("DoAndRead failed: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if !strings.HasPrefix(gotUA, "noll-go/") {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotCT != "application/json" {
		t.Errorf("Content-Type = %q", gotCT)
	}
	if gotBody != `{"a":"b"}` {
		t.Errorf("body = %q", gotBody)
	}
}

func TestNewJSONRequest_NoBearer(t *testing.T) {
	req, err := NewJSONRequest(context.Background(), http.MethodGet, "http://example.invalid", nil, "")
	if err != nil {
		t.Fatalf("NewJSONRequest failed: %v", err)
	}
	if req.Header.Get("Authorization") != "" {
		t.Errorf("expected no Authorization header")
	}
	if req.Header.Get("Content-Type") != "" {
		t.Errorf("expected no Content-Type without a body")
	}
}

func TestDoAndReadTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", MaxResponseBytes+1))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req, _ := http.NewRequest("GET", server.URL, nil)
	_, _, err := DoAndRead(GetDefaultClient(), req)
	if err == nil || !strings.Contains(err.Error(), "response body too large") {
		t.Fatalf("expected response body too large error, got: %v", err)
	}
}

func TestErrorText(t *testing.T) {
	resp := &http.Response{StatusCode: 429, Status: "429 Too Many Requests"}
	if got := ErrorText(resp, []byte("  rate limited \n")); got != "rate limited" {
		t.Errorf("ErrorText = %q", got)
	}
	if got := ErrorText(resp, nil); got != "429 Too Many Requests" {
		t.Errorf("ErrorText empty body = %q", got)
	}
	long := strings.Repeat("x", MaxErrorTextBytes+10)
	if got := ErrorText(resp, []byte(long)); len(got) != MaxErrorTextBytes+3 {
		t.Errorf("ErrorText not truncated: len=%d", len(got))
	}
}

func TestSetDefaultClientForTesting(t *testing.T) {
	custom := &http.Client{Timeout: 3 * time.Second}
	restore := SetDefaultClientForTesting(custom)
	defer restore()

	if GetDefaultClient() != custom {
		t.Fatalf("Expected overridden default client")
	}
}
