package content

import (
	"bytes"
	"errors"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates front matter that opens with --- but
// never closes.
var ErrMissingClosingDelimiter = errors.New("front matter missing closing delimiter")

// PostMeta is the subset of front matter fields the audit inspects. Date is
// kept as the raw scalar because authors write several layouts; ParsedDate
// normalizes it.
type PostMeta struct {
	Title string   `yaml:"title"`
	Date  string   `yaml:"date"`
	Slug  string   `yaml:"slug"`
	Draft bool     `yaml:"draft"`
	Tags  []string `yaml:"tags"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsedDate parses the date field against the accepted layouts.
func (m PostMeta) ParsedDate() (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, m.Date)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// SplitFrontMatter separates YAML front matter (--- delimited) from the
// Markdown body. If the document does not start with a front matter
// delimiter, had is false and body is the full input.
func SplitFrontMatter(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	open := []byte("---\n")
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte("\n---\n")
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A document ending exactly at the closing delimiter has no trailing
		// newline after it.
		if bytes.HasSuffix(content[start:], []byte("\n---")) {
			return content[start : len(content)-len("\n---")+1], nil, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	end := start + idx + 1
	bodyStart := start + idx + len(closeSeq)
	return content[start:end], content[bodyStart:], true, nil
}

// ParseMeta parses raw YAML front matter (without --- delimiters).
func ParseMeta(frontmatter []byte) (PostMeta, error) {
	var meta PostMeta
	if len(frontmatter) == 0 {
		return meta, nil
	}
	if err := yaml.Unmarshal(frontmatter, &meta); err != nil {
		return meta, err
	}
	return meta, nil
}
