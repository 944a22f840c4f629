// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package content

import (
	"bytes"
	"embed"
	"encoding/xml"
	"fmt"
	"html"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

//go:embed pages/*.md
var pagesFS embed.FS

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	pagePolicy = bluemonday.UGCPolicy()
	textPolicy = bluemonday.StrictPolicy()
)

type Page struct {
	Slug  string
	Title string
	HTML  string
}

// Library holds the rendered content pages, keyed by slug.
type Library struct {
	pages map[string]Page
}

func Load() (*Library, error) {
	return LoadFS(pagesFS, "pages")
}

func LoadFS(fsys fs.FS, dir string) (*Library, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read pages: %w", err)
	}

	lib := &Library{pages: make(map[string]Page)}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".md" {
			continue
		}
		src, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		rendered, err := RenderMarkdown(src)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", e.Name(), err)
		}
		slug := strings.TrimSuffix(e.Name(), ".md")
		lib.pages[slug] = Page{Slug: slug, Title: titleOf(src, slug), HTML: rendered}
	}
	return lib, nil
}

func (l *Library) Page(slug string) (Page, bool) {
	p, ok := l.pages[slug]
	return p, ok
}

func (l *Library) Slugs() []string {
	slugs := make([]string, 0, len(l.pages))
	for s := range l.pages {
		slugs = append(slugs, s)
	}
	sort.Strings(slugs)
	return slugs
}

// RenderMarkdown converts Markdown to sanitized HTML.
func RenderMarkdown(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", err
	}
	return pagePolicy.Sanitize(buf.String()), nil
}

func titleOf(src []byte, fallback string) string {
	for _, line := range strings.Split(string(src), "\n") {
		if t, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return strings.TrimSpace(t)
		}
	}
	return fallback
}

// sanitize passes before SanitizeText gives up on decoding entities
const maxSanitizePasses = 5

// SanitizeText strips markup from user-supplied text. Entities are decoded
// and the result sanitized again until nothing changes, so encoded markup
// such as &lt;script&gt; cannot come out as a live tag.
func SanitizeText(s string) string {
	for range maxSanitizePasses {
		next := strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
		if next == s {
			return next
		}
		s = next
	}
	// still decoding; keep the escaped form
	return strings.TrimSpace(textPolicy.Sanitize(s))
}

type urlEntry struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

var sitemapPaths = []struct {
	path     string
	priority float64
}{
	{"", 1.0},
	{"/about", 0.8},
	{"/gallery", 0.8},
	{"/register", 0.8},
}

func Sitemap(baseURL string, now time.Time) ([]byte, error) {
	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range sitemapPaths {
		set.URLs = append(set.URLs, urlEntry{
			Loc:        baseURL + p.path,
			LastMod:    now.UTC().Format("2006-01-02"),
			ChangeFreq: "monthly",
			Priority:   p.priority,
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func Robots(baseURL string) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	for _, p := range []string{"/admin", "/admin/gupload", "/admin/login"} {
		b.WriteString("Disallow: " + p + "\n")
	}
	b.WriteString("\nSitemap: " + baseURL + "/sitemap.xml\n")
	return b.String()
}
