// Package render writes the site configuration in the forms the external
// static-site generator reads: JSON, YAML, or a CommonJS config module.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"

	derrors "github.com/ertis-research/opentwins-docsite/internal/foundation/errors"
	"github.com/ertis-research/opentwins-docsite/internal/siteconfig"
)

// Format is an output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatJS   Format = "js"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatJS}

func (f Format) Valid() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatJS:
		return true
	}
	return false
}

// DefaultFileName is the file name the external tool looks for.
func DefaultFileName(f Format) string {
	return "docusaurus.config." + string(f)
}

// Renderer encodes configurations. The zero value uses the wall clock.
type Renderer struct {
	// Now supplies the year for the copyright placeholder in JSON and YAML.
	Now func() time.Time
}

func (r *Renderer) year() int {
	if r.Now == nil {
		return time.Now().Year()
	}
	return r.Now().Year()
}

// Render encodes cfg in the requested format.
func (r *Renderer) Render(cfg *siteconfig.SiteConfig, format Format) ([]byte, error) {
	out, err := clone(cfg)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryRender, "failed to copy configuration").Build()
	}

	var data []byte
	switch format {
	case FormatJSON, FormatYAML:
		if out.ThemeConfig != nil && out.ThemeConfig.Footer != nil {
			out.ThemeConfig.Footer.Copyright = out.Copyright(r.year())
		}
		data, err = siteconfig.Marshal(out, siteconfig.Format(format))
	case FormatJS:
		data, err = renderJS(out)
	default:
		return nil, derrors.RenderError("unsupported output format").
			WithContext("format", string(format)).
			Build()
	}
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryRender, "failed to encode configuration").
			WithContext("format", string(format)).
			Build()
	}
	return data, nil
}

// WriteFile renders cfg and replaces path atomically.
func (r *Renderer) WriteFile(path string, cfg *siteconfig.SiteConfig, format Format) error {
	data, err := r.Render(cfg, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return derrors.FileSystemError("failed to create output directory").WithCause(err).
			WithContext("path", filepath.Dir(path)).
			Build()
	}
	if err := writeAtomic(path, data); err != nil {
		return derrors.FileSystemError("failed to write rendered configuration").WithCause(err).
			WithContext("path", path).
			Build()
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write pending file: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace file: %w", err)
	}
	return nil
}

// clone deep-copies cfg so rendering never touches the caller's record.
func clone(cfg *siteconfig.SiteConfig) (*siteconfig.SiteConfig, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var out siteconfig.SiteConfig
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

const (
	lightThemeVar = "lightCodeTheme"
	darkThemeVar  = "darkCodeTheme"
)

var quotedKey = regexp.MustCompile(`(?m)^([ \t]*)"([A-Za-z_$][A-Za-z0-9_$]*)": `)

// exprTable holds the raw JavaScript expressions of one render. Each one is
// encoded as a placeholder string carrying a random token, so no config value
// can produce a placeholder.
type exprTable struct {
	token string
	exprs []string
}

func newExprTable() *exprTable {
	return &exprTable{token: "docsite_expr_" + strings.ReplaceAll(uuid.NewString(), "-", "")}
}

func (t *exprTable) placeholder(i int) string { return t.token + "_" + strconv.Itoa(i) }

// add registers js and returns the placeholder to store in its place.
func (t *exprTable) add(js string) string {
	t.exprs = append(t.exprs, js)
	return t.placeholder(len(t.exprs) - 1)
}

// substitute swaps every quoted placeholder in the encoded object for its
// expression.
func (t *exprTable) substitute(object []byte) []byte {
	for i, js := range t.exprs {
		object = bytes.Replace(object, []byte(strconv.Quote(t.placeholder(i))), []byte(js), 1)
	}
	return object
}

func renderJS(cfg *siteconfig.SiteConfig) ([]byte, error) {
	exprs := newExprTable()
	tc := cfg.ThemeConfig
	if tc == nil {
		tc = &siteconfig.ThemeConfig{}
	}
	var requires []string
	if p := tc.Prism; p != nil {
		if p.Theme != "" {
			requires = append(requires, requireLine(lightThemeVar, p.Theme))
			p.Theme = siteconfig.PrismTheme(exprs.add(lightThemeVar))
		}
		if p.DarkTheme != "" {
			requires = append(requires, requireLine(darkThemeVar, p.DarkTheme))
			p.DarkTheme = siteconfig.PrismTheme(exprs.add(darkThemeVar))
		}
	}
	if o := cfg.Classic(); o != nil {
		if o.Docs != nil {
			o.Docs.SidebarPath = resolveExpr(exprs, o.Docs.SidebarPath)
		}
		if o.Theme != nil {
			o.Theme.CustomCSS = resolveExpr(exprs, o.Theme.CustomCSS)
		}
	}
	if f := tc.Footer; f != nil && strings.Contains(f.Copyright, siteconfig.YearPlaceholder) {
		f.Copyright = exprs.add(yearTemplate(f.Copyright))
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}

	object := quotedKey.ReplaceAll(bytes.TrimSpace(body.Bytes()), []byte("$1$2: "))
	object = exprs.substitute(object)

	var out bytes.Buffer
	out.WriteString("// @ts-check\n")
	out.WriteString("// Code generated by docsite. DO NOT EDIT.\n\n")
	for _, line := range requires {
		out.WriteString(line)
	}
	if len(requires) > 0 {
		out.WriteString("\n")
	}
	out.WriteString("/** @type {import('@docusaurus/types').Config} */\n")
	out.WriteString("const config = ")
	out.Write(object)
	out.WriteString(";\n\nmodule.exports = config;\n")
	return out.Bytes(), nil
}

func requireLine(name string, theme siteconfig.PrismTheme) string {
	return fmt.Sprintf("const %s = require(%s);\n", name, singleQuote(theme.Module()))
}

// resolveExpr turns a site-relative path into require.resolve('./…').
func resolveExpr(exprs *exprTable, p string) string {
	if !strings.HasPrefix(p, "./") && !strings.HasPrefix(p, "../") {
		return p
	}
	return exprs.add("require.resolve(" + singleQuote(p) + ")")
}

var templateEscaper = strings.NewReplacer("\\", "\\\\", "`", "\\`", "${", "\\${")

// yearTemplate builds a template literal that fills the year at build time.
func yearTemplate(s string) string {
	escaped := templateEscaper.Replace(s)
	return "`" + strings.ReplaceAll(escaped, siteconfig.YearPlaceholder, "${new Date().getFullYear()}") + "`"
}

func singleQuote(s string) string {
	q := strconv.Quote(s)
	q = strings.ReplaceAll(q[1:len(q)-1], `\"`, `"`)
	return "'" + strings.ReplaceAll(q, "'", `\'`) + "'"
}
