// Package tsw6 talks to the Train Sim World 6 external-interface HTTP API on
// TCP port 31270. Every request carries the DTGCommKey shared secret, read
// once from the simulator's configuration directory.
package tsw6

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/giako888/trainbridge/pkgs/fault"
)

const (
	// DefaultBaseURL is where TSW6 listens when started with -HTTPAPI.
	DefaultBaseURL = "http://127.0.0.1:31270"

	requestTimeout = 5 * time.Second
)

// Client is the HTTP key/value client.
type Client struct {
	baseURL string
	commKey string
	http    *http.Client
}

// NewClient reads the DTGCommKey from keyFile and returns a ready client.
func NewClient(baseURL, keyFile string) (*Client, error) {
	raw, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fault.Wrap(fault.AuthFailed, err, "cannot read CommAPIKey file %q", keyFile)
	}
	key := strings.TrimSpace(string(raw))
	if key == "" {
		return nil, fault.New(fault.AuthFailed, "CommAPIKey file %q is empty", keyFile)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		commKey: key,
		http:    &http.Client{Timeout: requestTimeout},
	}, nil
}

// BaseURL returns the configured API base.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Response is the common envelope of /get and /set replies.
type Response struct {
	Result string         `json:"Result"`
	Values map[string]any `json:"Values"`
}

// ListResult is the reply of /list: child nodes and endpoints under a path.
type ListResult struct {
	Result    string     `json:"Result"`
	Nodes     []ListItem `json:"Nodes"`
	Endpoints []ListItem `json:"Endpoints"`
}

// ListItem is one node or endpoint entry. The API returns either a plain
// string or an object with Name/Writable, so it unmarshals both.
type ListItem struct {
	Name     string
	Writable bool
}

func (it *ListItem) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		it.Name = s
		return nil
	}
	var obj struct {
		Name     string `json:"Name"`
		Writable bool   `json:"Writable"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	it.Name = obj.Name
	it.Writable = obj.Writable
	return nil
}

// Get reads a single endpoint. API-level failures (Result != Success, no
// singleton value) are suppressed to nil so that pollers can keep running;
// connection and auth failures are returned.
func (c *Client) Get(path string) (any, error) {
	resp, err := c.GetRaw(path)
	if err != nil {
		if fault.Is(err, fault.APIFailed) {
			return nil, nil
		}
		return nil, err
	}
	if resp.Result != "Success" || len(resp.Values) != 1 {
		return nil, nil
	}
	for _, v := range resp.Values {
		return v, nil
	}
	return nil, nil
}

// GetRaw reads a single endpoint and returns the parsed envelope, surfacing
// api errors instead of suppressing them.
func (c *Client) GetRaw(path string) (*Response, error) {
	body, err := c.do(http.MethodGet, "/get/"+EncodePath(path), nil)
	if err != nil {
		return nil, err
	}
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fault.Wrap(fault.APIFailed, err, "cannot parse /get response for %q", path)
	}
	if resp.Result == "Forbidden" {
		return nil, fault.New(fault.AuthFailed, "API rejected the CommKey for %q", path)
	}
	if resp.Result != "Success" {
		return &resp, fault.New(fault.APIFailed, "get %q: Result=%s", path, resp.Result)
	}
	return &resp, nil
}

// ListNodes lists child nodes and endpoints under path. An empty path lists
// the tree root.
func (c *Client) ListNodes(path string) (*ListResult, error) {
	body, err := c.do(http.MethodGet, "/list/"+EncodePath(path), nil)
	if err != nil {
		return nil, err
	}
	var resp ListResult
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fault.Wrap(fault.APIFailed, err, "cannot parse /list response for %q", path)
	}
	if resp.Result == "Forbidden" {
		return nil, fault.New(fault.AuthFailed, "API rejected the CommKey for %q", path)
	}
	if resp.Result != "" && resp.Result != "Success" {
		return nil, fault.New(fault.APIFailed, "list %q: Result=%s", path, resp.Result)
	}
	return &resp, nil
}

// Set writes a value through a write endpoint with PATCH /set.
func (c *Client) Set(path string, value any) error {
	payload, err := json.Marshal(map[string]any{"Value": value})
	if err != nil {
		return fault.Wrap(fault.APIFailed, err, "cannot encode value for %q", path)
	}
	body, err := c.do(http.MethodPatch, "/set/"+EncodePath(path), payload)
	if err != nil {
		return err
	}
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return fault.Wrap(fault.APIFailed, err, "cannot parse /set response for %q", path)
	}
	if resp.Result != "Success" {
		return fault.New(fault.APIFailed, "set %q: Result=%s", path, resp.Result)
	}
	return nil
}

func (c *Client) do(method, encodedPath string, payload []byte) ([]byte, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, c.baseURL+encodedPath, rd)
	if err != nil {
		return nil, fault.Wrap(fault.APIFailed, err, "cannot build request")
	}
	req.Header.Set("DTGCommKey", c.commKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logrus.Debugf("tsw6 %s %s", method, encodedPath)
	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fault.Wrap(fault.TransportTimeout, err, "request timed out")
		}
		return nil, fault.Wrap(fault.TransportClosed, err, "cannot reach TSW6 at %s", c.baseURL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fault.Wrap(fault.TransportClosed, err, "cannot read response body")
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fault.New(fault.AuthFailed, "HTTP %d from TSW6 (bad DTGCommKey?)", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fault.New(fault.APIFailed, "HTTP %d from TSW6", resp.StatusCode)
	}
	return body, nil
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	for err != nil {
		if t, ok := err.(timeouter); ok && t.Timeout() {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// ToFloat converts the scalar types the API returns (bool, float64, int,
// numeric string) to a float64 for the unified state model.
func ToFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		var f float64
		if _, err := fmt.Sscanf(t, "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}
