package content

import (
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// HTMLLink is a link extracted from generated output.
type HTMLLink struct {
	URL       string
	Tag       string
	Attribute string
}

// linkAttrs maps the tags whose URLs the output audit follows to the
// attribute carrying the URL.
var linkAttrs = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
	"video":  "src",
	"audio":  "src",
	"source": "src",
}

// ExtractHTMLLinks extracts link-carrying attributes from an HTML document.
func ExtractHTMLLinks(r io.Reader) ([]HTMLLink, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var links []HTMLLink
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := linkAttrs[n.Data]; ok {
				if v := getAttr(n, attr); v != "" {
					links = append(links, HTMLLink{URL: v, Tag: n.Data, Attribute: attr})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// AuditOutput walks the generated site and verifies that every internal link
// resolves to a file in the output tree. External hosts are not contacted. A
// missing output directory yields no findings, matching a repository that has
// never published.
func AuditOutput(root, outputDir, baseURL string) ([]Finding, error) {
	base := filepath.Join(root, filepath.FromSlash(outputDir))
	if _, err := os.Stat(base); os.IsNotExist(err) {
		return nil, nil
	}

	var siteHost string
	if baseURL != "" {
		if u, err := url.Parse(baseURL); err == nil {
			siteHost = u.Host
		}
	}

	var findings []Finding
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".html") {
			return nil
		}

		f, err := os.Open(p)
		if err != nil {
			return err
		}
		links, err := ExtractHTMLLinks(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}

		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		for _, link := range links {
			target, internal := resolveInternal(link.URL, rel, siteHost)
			if !internal {
				continue
			}
			if !outputFileExists(base, target) {
				findings = append(findings, Finding{
					File:     path.Join(outputDir, rel),
					Rule:     "broken_internal_link",
					Severity: SeverityError,
					Message:  fmt.Sprintf("<%s %s=%q> does not resolve in the output", link.Tag, link.Attribute, link.URL),
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("audit output: %w", err)
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		return findings[i].Message < findings[j].Message
	})
	return findings, nil
}

// resolveInternal maps a link URL to an output-relative path. The second
// return is false for external links and non-HTTP schemes.
func resolveInternal(raw, fromRel, siteHost string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch u.Scheme {
	case "":
		// relative or site-rooted
	case "http", "https":
		if u.Host != siteHost || siteHost == "" {
			return "", false
		}
	default:
		return "", false
	}
	if u.Scheme == "" && u.Host != "" {
		// protocol-relative URL (//cdn.example.com/...)
		return "", false
	}
	p := u.Path
	if p == "" {
		// pure fragment or query
		return "", false
	}
	if strings.HasPrefix(p, "/") {
		return strings.TrimPrefix(p, "/"), true
	}
	return path.Join(path.Dir(fromRel), p), true
}

// outputFileExists checks the candidate forms a static server would resolve:
// the exact file, or the directory's index.html.
func outputFileExists(base, target string) bool {
	if target == "" || target == "." {
		target = "index.html"
	}
	candidates := []string{target}
	if strings.HasSuffix(target, "/") {
		candidates = []string{path.Join(target, "index.html")}
	} else {
		candidates = append(candidates, path.Join(target, "index.html"))
	}
	for _, c := range candidates {
		info, err := os.Stat(filepath.Join(base, filepath.FromSlash(c)))
		if err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}
