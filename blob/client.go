package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://blob.vercel-storage.com"
	apiVersion     = "7"
)

// Client uploads files to the blob store. BaseURL is overridable for tests.
type Client struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
}

// PutResult is the upstream response for a stored blob.
type PutResult struct {
	URL         string `json:"url"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	Pathname    string `json:"pathname,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// NewClient builds a blob client with the given read-write token.
func NewClient(token string) *Client {
	return &Client{
		Token:   token,
		BaseURL: defaultBaseURL,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Put stores the bytes under pathname and returns the public URL. A non-2xx
// response surfaces the upstream status and body verbatim.
func (c *Client) Put(ctx context.Context, pathname, contentType string, data []byte) (*PutResult, error) {
	// Pathnames may contain directory separators; escape each segment so the
	// hierarchy survives in the request URL.
	segments := strings.Split(pathname, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	endpoint := c.BaseURL + "/" + strings.Join(segments, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("X-Api-Version", apiVersion)
	if contentType != "" {
		req.Header.Set("X-Content-Type", contentType)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blob: upload failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("blob: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("blob: upstream %d: %s", resp.StatusCode, string(body))
	}

	var result PutResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("blob: decode response: %w", err)
	}
	return &result, nil
}
