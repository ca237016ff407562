package post

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DateLayout is the calendar date format accepted in metadata strings and
// used when rendering dates.
const DateLayout = "2006-01-02"

// Metadata is the TOML record between the two delimiters of a post.
//
//	title = "Hello"
//	descr = "First post"
//	url_friendly_name = "hello"
//	date = 2020-01-02
//
// "description" and "slug" are accepted as aliases for "descr" and
// "url_friendly_name".
type Metadata struct {
	Title           string `toml:"title"`
	Descr           string `toml:"descr"`
	Description     string `toml:"description"`
	URLFriendlyName string `toml:"url_friendly_name"`
	Slug            string `toml:"slug"`
	Date            any    `toml:"date"`

	hasTitle bool
}

// ResolvedDescription returns the description, preferring "descr".
func (m Metadata) ResolvedDescription() string {
	if m.Descr != "" {
		return m.Descr
	}
	return m.Description
}

// ResolvedSlug returns the slug, preferring "url_friendly_name".
func (m Metadata) ResolvedSlug() string {
	if m.URLFriendlyName != "" {
		return m.URLFriendlyName
	}
	return m.Slug
}

// Validate checks required keys and that the slug is safe to use as an
// output filename. The title key must be present but may be empty. Date
// validity is checked by PublishDate.
func (m Metadata) Validate() error {
	errs := validation.Errors{}

	if !m.hasTitle {
		errs["title"] = validation.NewError("post.metadata.title_required", "title is required")
	}

	if err := validation.Validate(m.ResolvedSlug(),
		validation.Required.Error("url_friendly_name is required"),
		validation.By(filenameSafe),
	); err != nil {
		errs["url_friendly_name"] = err
	}

	if m.Date == nil {
		errs["date"] = validation.NewError("post.metadata.date_required", "date is required")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func filenameSafe(value any) error {
	s, _ := value.(string)
	switch {
	case strings.ContainsAny(s, `/\`):
		return validation.NewError("post.metadata.slug_separator", fmt.Sprintf("%q must not contain a path separator", s))
	case strings.Contains(s, ".."):
		return validation.NewError("post.metadata.slug_parent", fmt.Sprintf("%q must not contain \"..\"", s))
	}
	return nil
}

// BurntSushi/toml decodes a bare local time such as 07:32:00 onto
// 0000-01-01 in a zone with this name.
const tomlLocalTimeZone = "time-local"

// PublishDate normalises the decoded date to midnight UTC. TOML dates and
// datetimes decode to time.Time; strings must use DateLayout.
func (m Metadata) PublishDate() (time.Time, error) {
	switch v := m.Date.(type) {
	case time.Time:
		if v.Location().String() == tomlLocalTimeZone {
			return time.Time{}, fmt.Errorf("date %s has no calendar date", v.Format("15:04:05"))
		}
		return time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC), nil
	case string:
		t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(v), time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("date %q: %w", v, err)
		}
		return t, nil
	case nil:
		return time.Time{}, fmt.Errorf("date is missing")
	default:
		return time.Time{}, fmt.Errorf("date has unsupported type %T", v)
	}
}
