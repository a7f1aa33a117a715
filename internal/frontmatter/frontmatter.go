// Package frontmatter reads the YAML header of a documentation page.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// front matter delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// Meta holds the front matter keys that affect how a page is addressed.
// Unknown keys are kept in Extra.
type Meta struct {
	ID           string         `yaml:"id,omitempty"`
	Title        string         `yaml:"title,omitempty"`
	SidebarLabel string         `yaml:"sidebar_label,omitempty"`
	Slug         string         `yaml:"slug,omitempty"`
	Draft        bool           `yaml:"draft,omitempty"`
	Extra        map[string]any `yaml:",inline"`
}

// Split separates `---` delimited YAML front matter from the Markdown body.
//
// When the content does not open with a delimiter, had is false and body is
// the full input.
func Split(content []byte) (header []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		// A closing delimiter on the last line without a trailing newline.
		if bytes.HasSuffix(rest, []byte(nl+"---")) {
			return rest[:len(rest)-len("---")], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, nil
}

// Parse splits content and decodes its header into Meta.
// A page without front matter yields a zero Meta.
func Parse(content []byte) (Meta, []byte, error) {
	header, body, had, err := Split(content)
	if err != nil {
		return Meta{}, nil, err
	}
	var meta Meta
	if !had || len(bytes.TrimSpace(header)) == 0 {
		return meta, body, nil
	}
	if err := yaml.Unmarshal(header, &meta); err != nil {
		return Meta{}, nil, fmt.Errorf("decode front matter: %w", err)
	}
	return meta, body, nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
