// Package docstree indexes the documentation pages of a site by doc id.
package docstree

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	derrors "github.com/ertis-research/opentwins-docsite/internal/foundation/errors"
	"github.com/ertis-research/opentwins-docsite/internal/frontmatter"
	"github.com/ertis-research/opentwins-docsite/internal/logfields"
	"github.com/ertis-research/opentwins-docsite/internal/markdown"
)

// numberPrefix matches ordering prefixes such as "01-", "2_" or "3. ".
var numberPrefix = regexp.MustCompile(`^\d+\s*[-_.]+\s*`)

// Doc is one page of the tree.
type Doc struct {
	ID      string // e.g. "installation/using-helm"
	RelPath string // slash separated, relative to the docs root
	Route   string // served path below the docs route base, e.g. "installation"
	Slug    string
	Title   string
	Draft   bool
	Links   []markdown.Link
}

// Tree is an index of a docs directory.
type Tree struct {
	root   string
	docs   []*Doc
	byID    map[string]*Doc
	byPath  map[string]*Doc
	byRoute map[string]*Doc
}

// Scan walks root and indexes every .md and .mdx page. Files and directories
// starting with "_" and *.test.md(x) files are skipped. Two pages resolving to
// the same id are an error.
func Scan(root string) (*Tree, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, derrors.NotFoundError("docs directory not found").WithContext("path", root).Build()
		}
		return nil, derrors.FileSystemError("failed to stat docs directory").WithCause(err).
			WithContext("path", root).
			Build()
	}
	if !info.IsDir() {
		return nil, derrors.DocsError("docs path is not a directory").WithContext("path", root).Build()
	}

	t := &Tree{root: root, byID: map[string]*Doc{}, byPath: map[string]*Doc{}, byRoute: map[string]*Doc{}}
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == root {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isPage(name) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		doc, err := readDoc(p, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if prev, dup := t.byID[doc.ID]; dup {
			return derrors.DocsError("duplicate doc id").
				WithContext("doc_id", doc.ID).
				WithContext("files", prev.RelPath+", "+doc.RelPath).
				Build()
		}
		t.add(doc)
		return nil
	})
	if err != nil {
		if derrors.IsClassified(err) {
			return nil, err
		}
		return nil, derrors.FileSystemError("failed to scan docs directory").WithCause(err).
			WithContext("path", root).
			Build()
	}

	sort.Slice(t.docs, func(i, j int) bool { return t.docs[i].ID < t.docs[j].ID })
	slog.Debug("Indexed docs", logfields.Path(root), logfields.Count(len(t.docs)))
	return t, nil
}

func isPage(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	if ext != ".md" && ext != ".mdx" {
		return false
	}
	return !strings.HasSuffix(strings.TrimSuffix(strings.ToLower(name), ext), ".test")
}

func readDoc(absPath, rel string) (*Doc, error) {
	// #nosec G304 -- walking the configured docs directory.
	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}
	meta, body, err := frontmatter.Parse(content)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryDocs, "invalid front matter").
			UserAction().
			WithContext("path", rel).
			Build()
	}

	offset := len(content) - len(body)
	headerLines := strings.Count(string(content[:offset]), "\n")
	links := markdown.ExtractLinks(body)
	for i := range links {
		if links[i].Line > 0 {
			links[i].Line += headerLines
		}
	}

	return &Doc{
		ID:      DocID(rel, meta.ID),
		RelPath: rel,
		Route:   DocRoute(rel, meta.ID, meta.Slug),
		Slug:    meta.Slug,
		Title:   meta.Title,
		Draft:   meta.Draft,
		Links:   links,
	}, nil
}

// DocID computes the id of a page from its slash separated path relative to
// the docs root and its front matter id. Number prefixes are stripped from
// directory and file names.
func DocID(rel, frontMatterID string) string {
	dir, file := path.Split(rel)
	if frontMatterID == "" {
		file = strings.TrimSuffix(file, path.Ext(file))
		file = stripNumberPrefix(file)
	} else {
		file = frontMatterID
	}

	var parts []string
	for _, seg := range strings.Split(strings.Trim(dir, "/"), "/") {
		if seg != "" {
			parts = append(parts, stripNumberPrefix(seg))
		}
	}
	parts = append(parts, file)
	return strings.Join(parts, "/")
}

// DocRoute computes the path a page is served at, relative to the docs route
// base and without leading or trailing slashes. An absolute slug replaces the
// whole path and a relative slug replaces the file part. Without a slug,
// index, README and pages named after their folder are served at the folder.
func DocRoute(rel, frontMatterID, slug string) string {
	id := DocID(rel, frontMatterID)
	dir := path.Dir(id)
	if dir == "." {
		dir = ""
	}
	switch {
	case strings.HasPrefix(slug, "/"):
		return strings.Trim(path.Clean(slug), "/")
	case slug != "":
		return strings.Trim(path.Join(dir, slug), "/")
	case isCategoryIndex(rel):
		return dir
	}
	return id
}

func isCategoryIndex(rel string) bool {
	dir, file := path.Split(rel)
	name := strings.ToLower(stripNumberPrefix(strings.TrimSuffix(file, path.Ext(file))))
	if name == "index" || name == "readme" {
		return true
	}
	parent := path.Base(strings.TrimSuffix(dir, "/"))
	return dir != "" && name == strings.ToLower(stripNumberPrefix(parent))
}

func stripNumberPrefix(name string) string {
	stripped := numberPrefix.ReplaceAllString(name, "")
	if stripped == "" {
		return name
	}
	return stripped
}

func (t *Tree) add(d *Doc) {
	t.docs = append(t.docs, d)
	t.byID[d.ID] = d
	t.byPath[d.RelPath] = d
	if prev, dup := t.byRoute[d.Route]; dup {
		slog.Warn("Two docs share a route", logfields.Target(d.Route), logfields.Path(prev.RelPath+", "+d.RelPath))
		return
	}
	t.byRoute[d.Route] = d
}

// Root returns the scanned directory.
func (t *Tree) Root() string { return t.root }

// Has reports whether a doc with the id exists.
func (t *Tree) Has(id string) bool {
	_, ok := t.byID[id]
	return ok
}

// HasRoute reports whether a doc is served at the route. The route is relative
// to the docs route base, "" being the base itself.
func (t *Tree) HasRoute(route string) bool {
	_, ok := t.byRoute[strings.Trim(route, "/")]
	return ok
}

// Get returns the doc with the id.
func (t *Tree) Get(id string) (*Doc, bool) {
	d, ok := t.byID[id]
	return d, ok
}

// ByPath returns the doc at a slash separated path relative to the root.
func (t *Tree) ByPath(rel string) (*Doc, bool) {
	d, ok := t.byPath[path.Clean(rel)]
	return d, ok
}

// Docs returns all docs ordered by id.
func (t *Tree) Docs() []*Doc { return t.docs }

// IDs returns all doc ids in order.
func (t *Tree) IDs() []string {
	ids := make([]string, len(t.docs))
	for i, d := range t.docs {
		ids[i] = d.ID
	}
	return ids
}

// InDir reports whether any doc lives under the slash separated directory.
func (t *Tree) InDir(dir string) bool {
	clean := strings.Trim(path.Clean(dir), "/")
	if clean == "." || clean == "" {
		return len(t.docs) > 0
	}
	prefix := clean + "/"
	for _, d := range t.docs {
		if strings.HasPrefix(d.RelPath, prefix) {
			return true
		}
	}
	return false
}

func (d *Doc) String() string { return fmt.Sprintf("%s (%s)", d.ID, d.RelPath) }
