// Package noll is the client for the Noll image translation API.
//
// Images are submitted as JSON with a base64 payload:
//
//	POST /api/ext/translate  {"image": "<base64>", "filename": "...", "targetLanguage": "de"}
//
// and progress is read from GET /api/ext/job/{jobId}.
package noll

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/noll-to/noll/internal/apperrors"
	"github.com/noll-to/noll/internal/httpclient"
	"github.com/noll-to/noll/internal/logger"
)

const (
	translatePath = "/api/ext/translate"
	jobPath       = "/api/ext/job/"
)

// Job status values reported by the service.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusFailed     = "failed"
)

// TranslationJob identifies a server-side job.
type TranslationJob struct {
	JobID         string `json:"jobId"`
	ProviderJobID string `json:"providerJobId,omitempty"`
}

// JobResult carries the translated image.
type JobResult struct {
	Image            string `json:"image"` // base64
	DetectedLanguage string `json:"detectedLanguage,omitempty"`
}

// JobStatus is one poll response. Each response supersedes the previous one.
type JobStatus struct {
	Status   string     `json:"status"`
	Progress *float64   `json:"progress,omitempty"`
	Result   *JobResult `json:"result,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// ProgressValue returns progress floored and clamped to 0..100, or 0 when
// absent.
func (s JobStatus) ProgressValue() int {
	if s.Progress == nil || math.IsNaN(*s.Progress) {
		return 0
	}
	return int(min(max(math.Floor(*s.Progress), 0), 100))
}

type translateRequest struct {
	Image          string `json:"image"`
	Filename       string `json:"filename"`
	TargetLanguage string `json:"targetLanguage"`
}

// Client talks to one Noll deployment.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL. A nil httpClient uses the shared default.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = httpclient.GetDefaultClient()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Submit uploads an image for translation.
func (c *Client) Submit(ctx context.Context, token string, image []byte, targetLanguage, filename string) (TranslationJob, error) {
	if token == "" {
		return TranslationJob{}, apperrors.Auth(errors.New("no access token available"))
	}

	payload := translateRequest{
		Image:          base64.StdEncoding.EncodeToString(image),
		Filename:       filename,
		TargetLanguage: targetLanguage,
	}
	req, err := httpclient.NewJSONRequest(ctx, http.MethodPost, c.baseURL+translatePath, payload, token)
	if err != nil {
		return TranslationJob{}, apperrors.New(apperrors.KindSubmit, "", err)
	}

	logger.Debug("Submitting image", "filename", filename, "bytes", len(image), "target", targetLanguage)
	body, resp, err := httpclient.DoAndRead(c.http, req)
	if err != nil {
		if ctx.Err() != nil {
			return TranslationJob{}, ctx.Err()
		}
		return TranslationJob{}, apperrors.New(apperrors.KindTransient, "Could not reach Noll to start the translation.", err)
	}
	if !httpclient.IsSuccess(resp) {
		text := httpclient.ErrorText(resp, body)
		return TranslationJob{}, apperrors.New(apperrors.KindSubmit,
			"Failed to start translation: "+text,
			fmt.Errorf("translate returned %s", resp.Status))
	}

	var job TranslationJob
	if err := json.Unmarshal(body, &job); err != nil {
		return TranslationJob{}, apperrors.New(apperrors.KindValidation, "", fmt.Errorf("failed to decode translate response: %w", err))
	}
	if job.JobID == "" {
		return TranslationJob{}, apperrors.New(apperrors.KindValidation, "", errors.New("translate response has no jobId"))
	}
	return job, nil
}

// Poll reads the current status of a job once. providerJobID and
// targetLanguage are optional correlation parameters.
func (c *Client) Poll(ctx context.Context, token, jobID, providerJobID, targetLanguage string) (JobStatus, error) {
	if token == "" {
		return JobStatus{}, apperrors.Auth(errors.New("no access token available"))
	}

	u := c.baseURL + jobPath + url.PathEscape(jobID)
	q := url.Values{}
	if providerJobID != "" {
		q.Set("providerJobId", providerJobID)
	}
	if targetLanguage != "" {
		q.Set("targetLanguage", targetLanguage)
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := httpclient.NewJSONRequest(ctx, http.MethodGet, u, nil, token)
	if err != nil {
		return JobStatus{}, apperrors.New(apperrors.KindPoll, "", err)
	}
	body, resp, err := httpclient.DoAndRead(c.http, req)
	if err != nil {
		if ctx.Err() != nil {
			return JobStatus{}, ctx.Err()
		}
		return JobStatus{}, apperrors.New(apperrors.KindTransient, "Could not reach Noll to check the translation.", err)
	}
	if !httpclient.IsSuccess(resp) {
		text := httpclient.ErrorText(resp, body)
		return JobStatus{}, apperrors.New(apperrors.KindPoll,
			"Failed to get job status: "+text,
			fmt.Errorf("job %s returned %s", jobID, resp.Status))
	}

	var status JobStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return JobStatus{}, apperrors.New(apperrors.KindValidation, "", fmt.Errorf("failed to decode job status: %w", err))
	}
	return status, nil
}
