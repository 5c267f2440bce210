// Package content reads blog posts and audits them for the problems that
// surface after publishing: missing titles or dates, colliding slugs and
// broken links. It inspects both the authoring tree (Markdown) and the
// generated output (HTML). Auditing never modifies anything.
package content

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Post is one Markdown document from the content directory.
type Post struct {
	// Path is repository-relative, slash-separated.
	Path           string
	Meta           PostMeta
	Body           []byte
	HasFrontMatter bool
}

// LoadPost reads and splits a single Markdown file.
func LoadPost(root, rel string) (*Post, error) {
	raw, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("read post: %w", err)
	}
	fm, body, had, err := SplitFrontMatter(raw)
	if err != nil {
		return nil, fmt.Errorf("split front matter of %s: %w", rel, err)
	}
	meta := PostMeta{}
	if had {
		meta, err = ParseMeta(fm)
		if err != nil {
			return nil, fmt.Errorf("parse front matter of %s: %w", rel, err)
		}
	}
	return &Post{Path: rel, Meta: meta, Body: body, HasFrontMatter: had}, nil
}

// ScanPosts walks the content directory and loads every Markdown file.
// Hidden and underscore-prefixed directories are skipped; a missing content
// directory yields an empty slice.
func ScanPosts(root, contentDir string) ([]*Post, error) {
	base := filepath.Join(root, filepath.FromSlash(contentDir))
	if _, err := os.Stat(base); os.IsNotExist(err) {
		return nil, nil
	}

	var posts []*Post
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != base && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(name), ".md") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		post, err := LoadPost(root, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		posts = append(posts, post)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan posts: %w", err)
	}
	return posts, nil
}
