package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"fieldcheck/internal/bootstrap/logging"
	"fieldcheck/internal/domain/datasync"
	"fieldcheck/internal/errs"
	"fieldcheck/internal/ports"
)

const (
	headerAppVersion = "X-App-Version"
	maxErrorBody     = 64 << 10
)

type Options struct {
	BaseURL    string
	AppVersion string
	UserAgent  string
	Timeout    time.Duration
	// Transport is the base round tripper under the bearer transport.
	Transport http.RoundTripper
}

type Client struct {
	baseURL    *url.URL
	appVersion string
	userAgent  string
	http       *http.Client
}

var _ ports.RemoteClient = (*Client)(nil)

func NewClient(opts Options, session ports.SessionStore) (*Client, error) {
	if session == nil {
		return nil, errors.New("session store is required")
	}
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("remote base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, errs.Wrapf(err, "parse remote base url %q", raw)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("remote base url %q must be absolute", raw)
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		baseURL:    base,
		appVersion: strings.TrimSpace(opts.AppVersion),
		userAgent:  strings.TrimSpace(opts.UserAgent),
		http: &http.Client{
			Timeout: opts.Timeout,
			Transport: &oauth2.Transport{
				Source: sessionTokenSource{session: session},
				Base:   transport,
			},
		},
	}, nil
}

func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errs.Wrap(err, "encode request body")
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// PostWithFiles sends body as the "data" form field next to one file part
// per attachment.
func (c *Client) PostWithFiles(ctx context.Context, path string, body any, files []ports.FileRef) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errs.Wrap(err, "encode request body")
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("data", string(payload)); err != nil {
		return nil, errs.Wrap(err, "write data field")
	}
	for _, file := range files {
		if err := attachFile(form, file); err != nil {
			return nil, &datasync.TransferError{
				Message: fmt.Sprintf("attachment %s could not be read", file.Field),
				Err:     err,
			}
		}
	}
	if err := form.Close(); err != nil {
		return nil, errs.Wrap(err, "close multipart body")
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	return c.do(req)
}

// Get returns the response body, unwrapping a {"data": ...} envelope.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return unwrapData(body), nil
}

func (c *Client) newRequest(ctx context.Context, method string, path string, query url.Values, body io.Reader) (*http.Request, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	target := c.baseURL.JoinPath(strings.TrimPrefix(path, "/"))
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, errs.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if c.appVersion != "" {
		req.Header.Set(headerAppVersion, c.appVersion)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	ctx := logging.WithAttrs(req.Context(),
		slog.String("component", "remote.client"),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		logging.Warn(ctx, "remote request failed", logging.Err(err))
		return nil, &datasync.TransferError{Message: datasync.GenericTransferMessage, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody(resp.StatusCode)))
	if err != nil {
		return nil, &datasync.TransferError{Status: resp.StatusCode, Message: datasync.GenericTransferMessage, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUpgradeRequired:
		update := decodeUpdateRequired(body)
		logging.Warn(ctx, "server requires a newer client", slog.String("version", update.VersionName))
		return nil, update
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		message := extractMessage(body)
		logging.Warn(ctx, "remote request rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("message", message),
		)
		return nil, &datasync.TransferError{Status: resp.StatusCode, Message: message}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	return json.RawMessage(body), nil
}

func maxResponseBody(status int) int64 {
	if status >= 200 && status <= 299 {
		return 256 << 20
	}
	return maxErrorBody
}

func attachFile(form *multipart.Writer, file ports.FileRef) error {
	path := strings.TrimPrefix(file.Path, ports.FileScheme)
	f, err := os.Open(path)
	if err != nil {
		return errs.Wrapf(err, "open %q", path)
	}
	defer f.Close()

	part, err := form.CreateFormFile(file.Field, filepath.Base(path))
	if err != nil {
		return errs.Wrap(err, "create form file")
	}
	if _, err := io.Copy(part, f); err != nil {
		return errs.Wrapf(err, "copy %q", path)
	}
	return nil
}

// extractMessage prefers "message", then "error"; anything else gets the
// generic message.
func extractMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return datasync.GenericTransferMessage
	}
	for _, key := range []string{"message", "error"} {
		if text, ok := payload[key].(string); ok && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
	}
	return datasync.GenericTransferMessage
}

func decodeUpdateRequired(body []byte) *datasync.UpdateRequiredError {
	var payload struct {
		Description string `json:"description"`
		URL         string `json:"url"`
		VersionName string `json:"version_name"`
	}
	_ = json.Unmarshal(body, &payload)
	return &datasync.UpdateRequiredError{
		Description: payload.Description,
		URL:         payload.URL,
		VersionName: payload.VersionName,
	}
}

func unwrapData(body json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return body
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return body
	}
	if data, ok := envelope["data"]; ok {
		return data
	}
	return body
}
