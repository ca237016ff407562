package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	checks "github.com/conneroisu/quire/internal/validation"
)

var relPath = validation.By(func(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	return checks.ValidateRelPath(s)
})

var noDangerousPath = validation.By(func(value any) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, "\x00\n\r") {
		return errors.New("contains control characters")
	}
	return nil
})

// Validate checks every section.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Input),
		validation.Field(&c.Output),
		validation.Field(&c.Build),
		validation.Field(&c.Stylesheet),
		validation.Field(&c.Links, validation.By(validateLinks)),
		validation.Field(&c.Watch),
		validation.Field(&c.Log),
	)
}

func (c InputConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Root, validation.Required, noDangerousPath),
		validation.Field(&c.Templates, validation.Required, relPath),
		validation.Field(&c.Posts, validation.Required, relPath),
		validation.Field(&c.Styles, validation.Required, relPath),
		validation.Field(&c.Static, relPath),
	)
}

func (c OutputConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Root, validation.Required, noDangerousPath),
	)
}

func (c BuildConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Duplicates, validation.In("error", "last-wins").Error("must be \"error\" or \"last-wins\"")),
	)
}

func (c StylesheetConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Compiler, validation.In("minify", "command").Error("must be \"minify\" or \"command\"")),
		validation.Field(&c.Command, validation.When(c.Compiler == "command", validation.Required)),
	)
}

func (c WatchConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0)).Error("must not be negative")),
	)
}

func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&c.Format, validation.In("text", "json")),
	)
}

func validateLinks(value any) error {
	links, _ := value.(map[string]string)
	names := make([]string, 0, len(links))
	for name := range links {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return errors.New("link name cannot be empty")
		}
		if err := checks.ValidateLink(links[name]); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
