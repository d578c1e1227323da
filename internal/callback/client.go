package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Client forwards callback URLs to a running Server.
type Client struct {
	Base string
	HTTP *http.Client
}

// NewClient returns a Client for the listener at addr.
func NewClient(addr string) *Client {
	base := addr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{Base: strings.TrimSuffix(base, "/"), HTTP: http.DefaultClient}
}

// Forward delivers raw to the listener and returns its reply. A reply with
// Error set is still returned without a Go error.
func (c *Client) Forward(ctx context.Context, raw string) (Reply, error) {
	var out Reply
	if err := c.post(ctx, "/forward", forwardRequest{URL: raw}, &out); err != nil {
		return Reply{}, err
	}
	return out, nil
}

// Healthy reports whether a listener answers at Base.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (c *Client) post(ctx context.Context, path string, in any, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("callback post %s: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
