package validation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

var ErrInvalidResource = errors.New("invalid resource")

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 10000
	MaxTags              = 20
	MaxTagLength         = 50
)

// ResourceFields is the admin-editable metadata of a resource.
type ResourceFields struct {
	Title        string
	Description  string
	Type         string
	Categories   []string
	Tags         []string
	ThumbnailURL string
	FileURL      string
}

// ValidateResource reports the first problem found in f. Values are
// expected to be trimmed already.
func ValidateResource(f ResourceFields) error {
	if f.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidResource)
	}
	if utf8.RuneCountInString(f.Title) > MaxTitleLength {
		return fmt.Errorf("%w: title must be at most %d characters", ErrInvalidResource, MaxTitleLength)
	}
	if utf8.RuneCountInString(f.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description must be at most %d characters", ErrInvalidResource, MaxDescriptionLength)
	}
	if f.Type == "" {
		return fmt.Errorf("%w: type is required", ErrInvalidResource)
	}
	if len(f.Categories) == 0 {
		return fmt.Errorf("%w: at least one category is required", ErrInvalidResource)
	}
	if len(f.Tags) > MaxTags {
		return fmt.Errorf("%w: at most %d tags allowed", ErrInvalidResource, MaxTags)
	}
	for _, tag := range f.Tags {
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return fmt.Errorf("%w: tag %q is longer than %d characters", ErrInvalidResource, tag, MaxTagLength)
		}
	}

	err := ValidateURL(f.ThumbnailURL)
	if err != nil {
		return fmt.Errorf("%w: thumbnail url: %v", ErrInvalidResource, err)
	}
	err = ValidateURL(f.FileURL)
	if err != nil {
		return fmt.Errorf("%w: file url: %v", ErrInvalidResource, err)
	}
	return nil
}

// ValidateURL accepts empty values, site-relative paths and absolute
// http(s) URLs.
func ValidateURL(raw string) error {
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return errors.New("malformed")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must be http or https")
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
