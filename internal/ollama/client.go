// Package ollama is a thin client for the serving runtime's HTTP API. It
// covers only what tuning needs: (re)create a named model from a Modelfile,
// stop or remove it, and issue a minimal one-token probe.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the runtime's conventional local address.
	DefaultBaseURL = "http://127.0.0.1:11434"
	// DefaultProbeTimeout bounds one probe request.
	DefaultProbeTimeout = 60 * time.Second

	// createTimeout bounds create/delete calls. Reloads are governed by the
	// runtime itself; the deadline only prevents a wedged runtime from
	// hanging a session forever.
	createTimeout = 5 * time.Minute

	// probePrompt is deliberately trivial: the probe is a memory-pressure
	// signal, not an output check.
	probePrompt = "Hi"
)

// Client talks to one serving runtime instance.
type Client struct {
	baseURL      string
	probeTimeout time.Duration
	httpClient   *http.Client
}

// New constructs a Client. Empty baseURL and zero probeTimeout select the
// package defaults. Request deadlines are carried by contexts, so the
// underlying http.Client has no global timeout.
func New(baseURL string, probeTimeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		IdleConnTimeout: 90 * time.Second,
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		probeTimeout: probeTimeout,
		httpClient:   &http.Client{Transport: tr, Timeout: 0},
	}
}

// ProbeTimeout reports the configured probe deadline.
func (c *Client) ProbeTimeout() time.Duration { return c.probeTimeout }

type createRequest struct {
	Name      string `json:"name"`
	Modelfile string `json:"modelfile"`
	Stream    bool   `json:"stream"`
}

type generateRequest struct {
	Model     string         `json:"model"`
	Prompt    string         `json:"prompt,omitempty"`
	Stream    bool           `json:"stream"`
	KeepAlive *int           `json:"keep_alive,omitempty"`
	Options   map[string]any `json:"options,omitempty"`
}

type deleteRequest struct {
	Name string `json:"name"`
}

// Create (re)registers alias from the Modelfile at modelfilePath. The
// runtime replaces an existing alias in place, so Create doubles as reload.
func (c *Client) Create(ctx context.Context, alias, modelfilePath string) error {
	content, err := os.ReadFile(modelfilePath)
	if err != nil {
		return fmt.Errorf("read modelfile: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, createTimeout)
	defer cancel()
	return c.post(ctx, "/api/create", createRequest{Name: alias, Modelfile: string(content), Stream: false})
}

// Unload stops the loaded instance for alias without removing the alias.
// Implemented as an empty generate with keep_alive 0.
func (c *Client) Unload(ctx context.Context, alias string) error {
	zero := 0
	ctx, cancel := context.WithTimeout(ctx, createTimeout)
	defer cancel()
	return c.post(ctx, "/api/generate", generateRequest{Model: alias, Stream: false, KeepAlive: &zero})
}

// Delete removes alias from the runtime. A missing alias is not an error.
func (c *Client) Delete(ctx context.Context, alias string) error {
	ctx, cancel := context.WithTimeout(ctx, createTimeout)
	defer cancel()
	body, _ := json.Marshal(deleteRequest{Name: alias})
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/delete", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return statusError(resp)
}

// Probe issues one bounded inference request: a trivial prompt with a
// one-token output ceiling. A timeout, transport error, or non-2xx status
// are all the same failure; there is no partial success.
func (c *Client) Probe(ctx context.Context, alias string) error {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()
	return c.post(ctx, "/api/generate", generateRequest{
		Model:   alias,
		Prompt:  probePrompt,
		Stream:  false,
		Options: map[string]any{"num_predict": 1},
	})
}

// Ping checks that the runtime answers at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return statusError(resp)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Translate context timeouts/cancels so callers see the deadline.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()
	if err := statusError(resp); err != nil {
		return err
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	return nil
}

func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return errors.New("runtime http error: " + resp.Status + ": " + strings.TrimSpace(string(b)))
}
