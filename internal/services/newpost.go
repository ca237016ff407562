package services

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/goliatone/go-slug"

	siteerrors "github.com/conneroisu/quire/internal/errors"
	"github.com/conneroisu/quire/internal/post"
)

// NewPostOptions describes a post to create.
type NewPostOptions struct {
	PostsDir    string
	Title       string
	Description string
	// Slug defaults to the normalized title.
	Slug  string
	Date  time.Time
	Force bool
}

type newPostMetadata struct {
	Title           string `toml:"title"`
	Descr           string `toml:"descr"`
	URLFriendlyName string `toml:"url_friendly_name"`
	Date            string `toml:"date"`
}

// NewPost writes "{slug}.md" with front matter under opts.PostsDir and
// returns its path. An existing file is kept unless Force is set.
func (s *InitService) NewPost(opts NewPostOptions) (string, error) {
	name := opts.Slug
	if name == "" {
		normalized, err := slug.Normalize(opts.Title)
		if err != nil {
			return "", siteerrors.NewMetadataParse(siteerrors.CodeInvalidMetadata, err).
				WithContext("title", opts.Title)
		}
		name = normalized
	}

	date := opts.Date
	if date.IsZero() {
		date = time.Now()
	}

	meta := newPostMetadata{
		Title:           opts.Title,
		Descr:           opts.Description,
		URLFriendlyName: name,
		Date:            date.Format(post.DateLayout),
	}

	var buf bytes.Buffer
	buf.WriteString(post.Delimiter + "\n")
	if err := toml.NewEncoder(&buf).Encode(meta); err != nil {
		return "", siteerrors.NewMetadataParse(siteerrors.CodeInvalidMetadata, err)
	}
	buf.WriteString(post.Delimiter + "\n\n")
	buf.WriteString("Write something.\n")

	// The document must parse under the same rules a build applies.
	if _, err := post.NewParser(nopRenderer{}).Parse(buf.String()); err != nil {
		return "", err
	}

	if err := os.MkdirAll(opts.PostsDir, 0o755); err != nil {
		return "", siteerrors.WrapIO(err, siteerrors.CodeWriteFailed, opts.PostsDir)
	}

	path := filepath.Join(opts.PostsDir, name+".md")
	if _, err := os.Stat(path); err == nil && !opts.Force {
		return "", siteerrors.WrapIO(os.ErrExist, siteerrors.CodeWriteFailed, path)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", siteerrors.WrapIO(err, siteerrors.CodeWriteFailed, path)
	}
	return path, nil
}

type nopRenderer struct{}

func (nopRenderer) Render(string) (string, error) { return "", nil }
