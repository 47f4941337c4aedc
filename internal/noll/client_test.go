package noll

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/noll-to/noll/internal/apperrors"
)

func TestSubmit_SendsJSON(t *testing.T) {
	image := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/ext/translate" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		var body translateRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		decoded, _ := base64.StdEncoding.DecodeString(body.Image)
		if string(decoded) != string(image) || body.Filename != "shot.png" || body.TargetLanguage != "de" {
			t.Errorf("unexpected body: %+v", body)
		}
		w.Write([]byte(`{"jobId":"job-1","providerJobId":"prov-9"}`))
	}))
	defer server.Close()

	job, err := NewClient(server.URL+"/", server.Client()).Submit(context.Background(), "tok", image, "de", "shot.png")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if job.JobID != "job-1" || job.ProviderJobID != "prov-9" {
		t.Fatalf("job = %+v", job)
	}
}

func TestSubmit_ServerErrorTextEmbedded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limited"))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, server.Client()).Submit(context.Background(), "tok", []byte("x"), "en", "a.png")
	if !apperrors.Is(err, apperrors.KindSubmit) {
		t.Fatalf("expected submit error, got %v", err)
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("server text missing: %q", err.Error())
	}
}

func TestSubmit_NoToken(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	_, err := NewClient(server.URL, server.Client()).Submit(context.Background(), "", []byte("x"), "en", "a.png")
	if !apperrors.Is(err, apperrors.KindAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if called {
		t.Fatalf("no request expected without a token")
	}
}

func TestSubmit_MissingJobID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, server.Client()).Submit(context.Background(), "tok", []byte("x"), "en", "a.png")
	if !apperrors.Is(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPoll_QueryAndDecode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/ext/job/job 1" {
			t.Errorf("unexpected request %s %q", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("providerJobId"); got != "prov-9" {
			t.Errorf("providerJobId = %q", got)
		}
		if got := r.URL.Query().Get("targetLanguage"); got != "ja" {
			t.Errorf("targetLanguage = %q", got)
		}
		w.Write([]byte(`{"status":"ready","progress":100,"result":{"image":"aGk=","detectedLanguage":"de"}}`))
	}))
	defer server.Close()

	st, err := NewClient(server.URL, server.Client()).Poll(context.Background(), "tok", "job 1", "prov-9", "ja")
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if st.Status != StatusReady || st.ProgressValue() != 100 {
		t.Fatalf("status = %+v", st)
	}
	if st.Result == nil || st.Result.Image != "aGk=" || st.Result.DetectedLanguage != "de" {
		t.Fatalf("result = %+v", st.Result)
	}
}

func TestPoll_NoOptionalParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("expected no query, got %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"status":"pending"}`))
	}))
	defer server.Close()

	st, err := NewClient(server.URL, server.Client()).Poll(context.Background(), "tok", "job-1", "", "")
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if st.Status != StatusPending || st.ProgressValue() != 0 {
		t.Fatalf("status = %+v", st)
	}
}

func TestPoll_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Job not found"))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, server.Client()).Poll(context.Background(), "tok", "job-1", "", "")
	if !apperrors.Is(err, apperrors.KindPoll) || !strings.Contains(err.Error(), "Job not found") {
		t.Fatalf("expected poll error with server text, got %v", err)
	}
}

func TestPoll_FractionalProgress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"processing","progress":12.5}`))
	}))
	defer server.Close()

	st, err := NewClient(server.URL, server.Client()).Poll(context.Background(), "tok", "job-1", "", "")
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if st.Status != StatusProcessing || st.ProgressValue() != 12 {
		t.Fatalf("status = %+v, progress %d", st, st.ProgressValue())
	}
}

func TestProgressValue_Clamped(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{140, 100},
		{-3, 0},
		{99.9, 99},
		{0.4, 0},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		v := tt.in
		if got := (JobStatus{Progress: &v}).ProgressValue(); got != tt.want {
			t.Errorf("ProgressValue(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
