package ghpr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.github.com"

// Uploader lands files on a fresh branch and opens a pull request. The
// branch/commit/PR sequence is compensated: any failure after the branch is
// created deletes the branch before the error is returned, so no partial
// state is left behind.
type Uploader struct {
	Token      string
	Repo       string // "owner/name"
	BaseBranch string
	BaseURL    string
	HTTPClient *http.Client
}

// UploadFile is one file to commit.
type UploadFile struct {
	Path    string
	Content []byte
}

// Result describes the opened pull request.
type Result struct {
	Branch         string `json:"branch"`
	PullRequestURL string `json:"pullRequestUrl"`
}

// NewUploader builds an uploader for the given repository.
func NewUploader(token, repo, baseBranch string) *Uploader {
	return &Uploader{
		Token:      token,
		Repo:       repo,
		BaseBranch: baseBranch,
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// CreatePR creates branch from the base HEAD, commits each file, and opens a
// pull request back to the base branch.
func (u *Uploader) CreatePR(ctx context.Context, branch, title, body string, files []UploadFile) (*Result, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("ghpr: no files to commit")
	}

	var baseRef struct {
		Object struct {
			SHA string `json:"sha"`
		} `json:"object"`
	}
	refPath := fmt.Sprintf("/repos/%s/git/ref/heads/%s", u.Repo, u.BaseBranch)
	if err := u.doJSON(ctx, http.MethodGet, refPath, nil, &baseRef); err != nil {
		return nil, fmt.Errorf("ghpr: resolve base branch: %w", err)
	}

	createRef := map[string]string{
		"ref": "refs/heads/" + branch,
		"sha": baseRef.Object.SHA,
	}
	refsPath := fmt.Sprintf("/repos/%s/git/refs", u.Repo)
	if err := u.doJSON(ctx, http.MethodPost, refsPath, createRef, nil); err != nil {
		return nil, fmt.Errorf("ghpr: create branch: %w", err)
	}

	for _, f := range files {
		payload := map[string]string{
			"message": fmt.Sprintf("Add %s", f.Path),
			"content": base64.StdEncoding.EncodeToString(f.Content),
			"branch":  branch,
		}
		contentsPath := fmt.Sprintf("/repos/%s/contents/%s", u.Repo, f.Path)
		if err := u.doJSON(ctx, http.MethodPut, contentsPath, payload, nil); err != nil {
			u.deleteBranch(ctx, branch)
			return nil, fmt.Errorf("ghpr: commit %s: %w", f.Path, err)
		}
	}

	prPayload := map[string]string{
		"title": title,
		"head":  branch,
		"base":  u.BaseBranch,
		"body":  body,
	}
	var pr struct {
		HTMLURL string `json:"html_url"`
	}
	pullsPath := fmt.Sprintf("/repos/%s/pulls", u.Repo)
	if err := u.doJSON(ctx, http.MethodPost, pullsPath, prPayload, &pr); err != nil {
		u.deleteBranch(ctx, branch)
		return nil, fmt.Errorf("ghpr: open pull request: %w", err)
	}

	return &Result{Branch: branch, PullRequestURL: pr.HTMLURL}, nil
}

// deleteBranch is the compensation step; best-effort, failures are logged.
func (u *Uploader) deleteBranch(ctx context.Context, branch string) {
	path := fmt.Sprintf("/repos/%s/git/refs/heads/%s", u.Repo, branch)
	if err := u.doJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		log.Printf("ghpr: failed to clean up branch %s: %v", branch, err)
	}
}

func (u *Uploader) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+u.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := u.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upstream %d: %s", resp.StatusCode, string(body))
	}
	if out != nil {
		return json.Unmarshal(body, out)
	}
	return nil
}
