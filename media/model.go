package media

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kinds a media item may have. Markdown write-ups are only allowed on the
// first two.
const (
	KindProject  = "project"
	KindWorkshop = "workshop"
	KindOther    = "other"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 10_000
	maxNameLen        = 512
	maxTypeLen        = 128
	maxDeclaredSize   = 1_000_000_000
)

var allowedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".webp": true,
	".gif": true, ".svg": true, ".md": true, ".markdown": true,
}

var allowedImageTypes = map[string]bool{
	"image/png": true, "image/jpeg": true, "image/webp": true,
	"image/gif": true, "image/svg+xml": true,
	// browsers sometimes send image/jpg
	"image/jpg": true,
}

var allowedOtherTypes = map[string]bool{
	"text/markdown": true, "text/plain": true, "application/octet-stream": true,
}

// File is a single pre-uploaded file referenced by a media item.
type File struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// Item is a catalog entry. MarkdownFiles is the subset of Files that are
// markdown, computed once at creation and never recomputed.
type Item struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Files         []File `json:"files"`
	MarkdownFiles []File `json:"markdownFiles"`
	CreatedAt     string `json:"createdAt"`
}

// Limits bounds what a single create may carry.
type Limits struct {
	MaxFiles     int
	MaxFileSize  int64
	MaxTotalSize int64
}

// DefaultLimits mirrors the deployed defaults: 10 files, 25MB each, 100MB total.
func DefaultLimits() Limits {
	return Limits{MaxFiles: 10, MaxFileSize: 25 * 1024 * 1024, MaxTotalSize: 100 * 1024 * 1024}
}

// CreateRequest is the POST /api/media payload.
type CreateRequest struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Files       []File `json:"files"`
}

// Ext returns the lowercase dotted extension of name, or "" if none.
func Ext(name string) string {
	lower := strings.ToLower(name)
	if i := strings.LastIndex(lower, "."); i >= 0 && i < len(lower)-1 {
		return lower[i:]
	}
	return ""
}

// IsMarkdown reports whether a file's name or MIME type marks it markdown.
func IsMarkdown(name, mime string) bool {
	ext := Ext(name)
	return ext == ".md" || ext == ".markdown" || mime == "text/markdown"
}

// ValidateUpload checks a file's name, MIME type and size against the
// allowlists and per-file limit. Used both for pre-uploaded references and
// for incoming multipart uploads (which have no URL yet).
func ValidateUpload(name, mime string, size int64, limits Limits) error {
	if name == "" || len(name) > maxNameLen {
		return fmt.Errorf("file name must be 1-%d characters", maxNameLen)
	}
	ext := Ext(name)
	if !allowedExtensions[ext] {
		if ext == "" {
			ext = "(none)"
		}
		return fmt.Errorf("unsupported extension: %s", ext)
	}
	if mime == "" || len(mime) > maxTypeLen {
		return fmt.Errorf("%s: file type must be 1-%d characters", name, maxTypeLen)
	}
	if strings.HasPrefix(mime, "image/") {
		if !allowedImageTypes[mime] {
			return fmt.Errorf("unsupported image type: %s", mime)
		}
	} else if !allowedOtherTypes[mime] {
		return fmt.Errorf("unsupported file type: %s", mime)
	}
	if size < 0 || size > maxDeclaredSize {
		return fmt.Errorf("%s: size out of range", name)
	}
	if size > limits.MaxFileSize {
		return fmt.Errorf("%s exceeds per-file limit (%d bytes)", name, limits.MaxFileSize)
	}
	return nil
}

// ValidateFile checks one pre-uploaded file reference.
func ValidateFile(f File, limits Limits) error {
	u, err := url.Parse(f.URL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%s: url must be absolute", f.Name)
	}
	return ValidateUpload(f.Name, f.Type, f.Size, limits)
}

// Validate checks the whole request, including the markdown policy.
func (r *CreateRequest) Validate(limits Limits) error {
	switch r.Kind {
	case KindProject, KindWorkshop, KindOther:
	default:
		return fmt.Errorf("kind must be project, workshop or other")
	}
	if r.Title == "" || len(r.Title) > maxTitleLen {
		return fmt.Errorf("title must be 1-%d characters", maxTitleLen)
	}
	if len(r.Description) > maxDescriptionLen {
		return fmt.Errorf("description exceeds %d characters", maxDescriptionLen)
	}
	if len(r.Files) == 0 || len(r.Files) > limits.MaxFiles {
		return fmt.Errorf("files must contain 1-%d entries", limits.MaxFiles)
	}

	var total int64
	hasMarkdown := false
	for _, f := range r.Files {
		if err := ValidateFile(f, limits); err != nil {
			return err
		}
		total += f.Size
		if IsMarkdown(f.Name, f.Type) {
			hasMarkdown = true
		}
	}
	if total > limits.MaxTotalSize {
		return fmt.Errorf("total upload size exceeds %d bytes", limits.MaxTotalSize)
	}
	if hasMarkdown && r.Kind == KindOther {
		return fmt.Errorf("markdown allowed only for 'project' or 'workshop' kinds")
	}
	return nil
}

// NewItem validates the request and materializes a catalog entry.
func NewItem(r *CreateRequest, limits Limits) (*Item, error) {
	if err := r.Validate(limits); err != nil {
		return nil, err
	}
	markdown := make([]File, 0)
	for _, f := range r.Files {
		if IsMarkdown(f.Name, f.Type) {
			markdown = append(markdown, f)
		}
	}
	return &Item{
		ID:            uuid.New().String(),
		Kind:          r.Kind,
		Title:         r.Title,
		Description:   r.Description,
		Files:         r.Files,
		MarkdownFiles: markdown,
		CreatedAt:     time.Now().UTC().Format("2006-01-02T15:04:05Z"),
	}, nil
}
