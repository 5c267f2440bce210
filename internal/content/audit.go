package content

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Severity grades an audit finding. Errors indicate content that will publish
// wrong; warnings indicate content that deserves a look.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Finding is one audit result.
type Finding struct {
	File     string
	Rule     string
	Severity Severity
	Message  string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s: %s", f.Severity, f.File, f.Rule, f.Message)
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// EffectiveSlug returns the slug a post will publish under: an explicit slug
// wins, then the title, then the file name.
func EffectiveSlug(p *Post) string {
	if p.Meta.Slug != "" {
		return Slugify(p.Meta.Slug)
	}
	if p.Meta.Title != "" {
		return Slugify(p.Meta.Title)
	}
	base := path.Base(p.Path)
	return Slugify(strings.TrimSuffix(base, path.Ext(base)))
}

// AuditContent checks every post in the content directory for missing
// metadata, slug collisions and broken relative links.
func AuditContent(root, contentDir string) ([]Finding, error) {
	posts, err := ScanPosts(root, contentDir)
	if err != nil {
		return nil, err
	}

	var findings []Finding
	slugOwners := make(map[string][]string)
	now := time.Now()

	for _, post := range posts {
		if post.Meta.Title == "" {
			findings = append(findings, Finding{
				File:     post.Path,
				Rule:     "missing_title",
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("no title in front matter; suggestion: %q", TitleFromFilename(post.Path)),
			})
		}

		if post.Meta.Draft {
			findings = append(findings, Finding{
				File:     post.Path,
				Rule:     "draft",
				Severity: SeverityWarning,
				Message:  "marked draft; will not publish",
			})
		} else {
			switch {
			case post.Meta.Date == "":
				findings = append(findings, Finding{
					File:     post.Path,
					Rule:     "missing_date",
					Severity: SeverityWarning,
					Message:  "no date in front matter",
				})
			default:
				when, err := post.Meta.ParsedDate()
				if err != nil {
					findings = append(findings, Finding{
						File:     post.Path,
						Rule:     "invalid_date",
						Severity: SeverityError,
						Message:  fmt.Sprintf("unparseable date %q", post.Meta.Date),
					})
				} else if when.After(now) {
					findings = append(findings, Finding{
						File:     post.Path,
						Rule:     "future_dated",
						Severity: SeverityWarning,
						Message:  fmt.Sprintf("dated %s; will not render until then", when.Format("2006-01-02")),
					})
				}
			}
			slug := EffectiveSlug(post)
			slugOwners[slug] = append(slugOwners[slug], post.Path)
			findings = append(findings, auditSlugDrift(post, slug)...)
		}

		findings = append(findings, auditPostLinks(root, post)...)
	}

	for slug, owners := range slugOwners {
		if len(owners) < 2 {
			continue
		}
		sort.Strings(owners)
		for _, owner := range owners {
			findings = append(findings, Finding{
				File:     owner,
				Rule:     "duplicate_slug",
				Severity: SeverityError,
				Message:  fmt.Sprintf("slug %q collides with %s", slug, strings.Join(otherOwners(owners, owner), ", ")),
			})
		}
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		return findings[i].Rule < findings[j].Rule
	})
	return findings, nil
}

func otherOwners(owners []string, self string) []string {
	out := make([]string, 0, len(owners)-1)
	for _, o := range owners {
		if o != self {
			out = append(out, o)
		}
	}
	return out
}

// auditSlugDrift warns when a post's filename no longer matches the slug its
// title produces, which usually means the title was edited after the file was
// created. An explicit slug decouples filename from title, and bundle index
// files take their slug from the directory.
func auditSlugDrift(post *Post, slug string) []Finding {
	if post.Meta.Slug != "" || post.Meta.Title == "" {
		return nil
	}
	base := path.Base(post.Path)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "index" || stem == "_index" {
		return nil
	}
	if Slugify(stem) == slug {
		return nil
	}
	return []Finding{{
		File:     post.Path,
		Rule:     "slug_mismatch",
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("filename yields slug %q but the title yields %q", Slugify(stem), slug),
	}}
}

// auditPostLinks flags relative link destinations that do not exist in the
// repository. Absolute paths and external URLs are left to the output audit.
func auditPostLinks(root string, post *Post) []Finding {
	var findings []Finding
	for _, link := range ExtractLinks(post.Body) {
		dest := link.Destination
		if dest == "" || link.Kind == LinkKindAuto {
			continue
		}
		if strings.Contains(dest, "://") || strings.HasPrefix(dest, "mailto:") ||
			strings.HasPrefix(dest, "tel:") || strings.HasPrefix(dest, "#") ||
			strings.HasPrefix(dest, "/") {
			continue
		}
		u, err := url.Parse(dest)
		if err != nil || u.Path == "" {
			continue
		}
		target := path.Join(path.Dir(post.Path), u.Path)
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(target))); err != nil {
			findings = append(findings, Finding{
				File:     post.Path,
				Rule:     "broken_link",
				Severity: SeverityError,
				Message:  fmt.Sprintf("links to %s which does not exist", u.Path),
			})
		}
	}
	return findings
}
