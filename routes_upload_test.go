package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"embedded-api/blob"
	"embedded-api/ghpr"
	"embedded-api/media"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

type stubBlobStore struct {
	calls int
	err   error
}

func (s *stubBlobStore) Put(ctx context.Context, pathname, contentType string, data []byte) (*blob.PutResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &blob.PutResult{URL: "https://blob.example.com/" + pathname}, nil
}

type stubPRUploader struct {
	calls  int
	branch string
	files  []ghpr.UploadFile
	err    error
}

func (s *stubPRUploader) CreatePR(ctx context.Context, branch, title, body string, files []ghpr.UploadFile) (*ghpr.Result, error) {
	s.calls++
	s.branch = branch
	s.files = files
	if s.err != nil {
		return nil, s.err
	}
	return &ghpr.Result{Branch: branch, PullRequestURL: "https://github.com/club/site/pull/7"}, nil
}

func newUploadRouter(blobs blobStore, pr prUploader) *mux.Router {
	r := mux.NewRouter()
	registerUploadRoutes(r, blobs, pr, media.DefaultLimits(), "secret-token")
	return r
}

func multipartBody(t *testing.T, files map[string]struct {
	contentType string
	data        []byte
}) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, name))
		h.Set("Content-Type", f.contentType)
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func uploadRequest(t *testing.T, target string, files map[string]struct {
	contentType string
	data        []byte
}) *http.Request {
	body, contentType := multipartBody(t, files)
	req := httptest.NewRequest("POST", target, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer secret-token")
	return req
}

func pngUpload() map[string]struct {
	contentType string
	data        []byte
} {
	return map[string]struct {
		contentType string
		data        []byte
	}{
		"cover.png": {contentType: "image/png", data: []byte("png-bytes")},
	}
}

func TestBlobUploadRequiresAdmin(t *testing.T) {
	blobs := &stubBlobStore{}
	router := newUploadRouter(blobs, &stubPRUploader{})

	body, contentType := multipartBody(t, pngUpload())
	req := httptest.NewRequest("POST", "/api/media/upload", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Zero(t, blobs.calls)
}

func TestBlobUploadReturnsFileDescriptors(t *testing.T) {
	blobs := &stubBlobStore{}
	router := newUploadRouter(blobs, &stubPRUploader{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/media/upload", pngUpload()))

	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Files []media.File `json:"files"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Files, 1)
	require.Equal(t, "cover.png", resp.Files[0].Name)
	require.Equal(t, "image/png", resp.Files[0].Type)
	require.Equal(t, int64(len("png-bytes")), resp.Files[0].Size)
	require.Contains(t, resp.Files[0].URL, "cover.png")
	require.Equal(t, 1, blobs.calls)
}

func TestBlobUploadRejectsDisallowedExtension(t *testing.T) {
	blobs := &stubBlobStore{}
	router := newUploadRouter(blobs, &stubPRUploader{})

	files := map[string]struct {
		contentType string
		data        []byte
	}{
		"tool.exe": {contentType: "application/octet-stream", data: []byte("bin")},
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/media/upload", files))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "unsupported extension")
	require.Zero(t, blobs.calls)
}

func TestBlobUploadSurfacesUpstreamFailure(t *testing.T) {
	blobs := &stubBlobStore{err: fmt.Errorf("blob: upstream 403: quota exceeded")}
	router := newUploadRouter(blobs, &stubPRUploader{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/media/upload", pngUpload()))

	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Contains(t, w.Body.String(), "quota exceeded")
}

func TestBlobUploadUnconfigured(t *testing.T) {
	router := newUploadRouter(nil, &stubPRUploader{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/media/upload", pngUpload()))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "not configured")
}

func TestGitHubUploadOpensPR(t *testing.T) {
	pr := &stubPRUploader{}
	router := newUploadRouter(&stubBlobStore{}, pr)

	files := map[string]struct {
		contentType string
		data        []byte
	}{
		"post.md": {contentType: "text/markdown", data: []byte("# Post")},
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/media/upload-gh", files))

	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		PullRequestURL string   `json:"pullRequestUrl"`
		Branch         string   `json:"branch"`
		Files          []string `json:"files"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, "https://github.com/club/site/pull/7", resp.PullRequestURL)
	require.NotEmpty(t, resp.Branch)
	require.Equal(t, []string{"post.md"}, resp.Files)

	require.Equal(t, 1, pr.calls)
	require.Len(t, pr.files, 1)
	require.Contains(t, pr.files[0].Path, "post.md")
	require.Equal(t, []byte("# Post"), pr.files[0].Content)
}

func TestGitHubUploadSurfacesUpstreamFailure(t *testing.T) {
	pr := &stubPRUploader{err: fmt.Errorf("ghpr: open pull request: upstream 403: blocked")}
	router := newUploadRouter(&stubBlobStore{}, pr)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/media/upload-gh", pngUpload()))
	require.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGitHubUploadUnconfigured(t *testing.T) {
	router := newUploadRouter(&stubBlobStore{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/media/upload-gh", pngUpload()))
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
