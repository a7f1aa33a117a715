// Package gitremote derives hosting identifiers (organization, project, edit
// links) from the git repository that contains the site.
package gitremote

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	derrors "github.com/ertis-research/opentwins-docsite/internal/foundation/errors"
	"github.com/ertis-research/opentwins-docsite/internal/siteconfig"
)

const (
	// DefaultBranch is used when HEAD does not name a branch.
	DefaultBranch = "main"

	remoteName = "origin"
	githubHost = "github.com"
)

// Remote identifies the hosted repository behind the origin remote.
type Remote struct {
	Host   string
	Owner  string
	Name   string
	Branch string
	// Root is the worktree root on disk.
	Root string
}

// WebURL is the browsable repository URL.
func (r *Remote) WebURL() string {
	return "https://" + r.Host + "/" + r.Owner + "/" + r.Name
}

// EditURL is the base edit link for files under siteSubdir.
func (r *Remote) EditURL(siteSubdir string) string {
	u := r.WebURL() + "/tree/" + r.Branch + "/"
	if sub := strings.Trim(path.Clean("/"+siteSubdir), "/"); sub != "" {
		u += sub + "/"
	}
	return u
}

// Detect opens the repository enclosing dir and reads its origin remote.
func Detect(dir string) (*Remote, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, derrors.GitError("not inside a git repository").
				WithContext("path", dir).
				UserAction().
				Build()
		}
		return nil, derrors.WrapError(err, derrors.CategoryGit, "failed to open git repository").
			WithContext("path", dir).
			Build()
	}

	origin, err := repo.Remote(remoteName)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryGit, "repository has no origin remote").
			WithContext("path", dir).
			UserAction().
			Build()
	}
	urls := origin.Config().URLs
	if len(urls) == 0 {
		return nil, derrors.GitError("origin remote has no URL").WithContext("path", dir).Build()
	}

	host, owner, name, err := ParseURL(urls[0])
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryGit, "unsupported origin URL").
			WithContext("url", urls[0]).
			UserAction().
			Build()
	}

	r := &Remote{Host: host, Owner: owner, Name: name, Branch: currentBranch(repo)}
	if wt, err := repo.Worktree(); err == nil {
		r.Root = wt.Filesystem.Root()
	}
	return r, nil
}

// currentBranch reads the branch HEAD points at. It works before the first
// commit, when HEAD is a dangling symbolic reference.
func currentBranch(repo *git.Repository) string {
	ref, err := repo.Reference(plumbing.HEAD, false)
	if err != nil || ref.Type() != plumbing.SymbolicReference || !ref.Target().IsBranch() {
		return DefaultBranch
	}
	return ref.Target().Short()
}

var scpLike = regexp.MustCompile(`^(?:[\w.-]+@)?([\w.-]+):([^/].*)$`)

// ParseURL splits a remote URL into host, owner and repository name. Owner
// keeps nested groups ("group/sub") for hosts that have them.
func ParseURL(raw string) (host, owner, name string, err error) {
	var p string
	if strings.Contains(raw, "://") {
		u, perr := url.Parse(raw)
		if perr != nil {
			return "", "", "", fmt.Errorf("parse remote URL: %w", perr)
		}
		host, p = u.Hostname(), u.Path
	} else if m := scpLike.FindStringSubmatch(raw); m != nil {
		host, p = m[1], m[2]
	} else {
		return "", "", "", fmt.Errorf("remote URL %q is not a hosted repository", raw)
	}

	p = strings.TrimSuffix(strings.Trim(p, "/"), ".git")
	i := strings.LastIndex(p, "/")
	if host == "" || i <= 0 || i == len(p)-1 {
		return "", "", "", fmt.Errorf("remote URL %q does not name owner/repository", raw)
	}
	return strings.ToLower(host), p[:i], p[i+1:], nil
}

// Apply fills the hosting fields of cfg from r. URL and baseUrl follow GitHub
// Pages conventions and are only set for GitHub remotes.
func Apply(cfg *siteconfig.SiteConfig, r *Remote, siteSubdir string) {
	cfg.OrganizationName = r.Owner
	cfg.ProjectName = r.Name

	if r.Host == githubHost {
		pagesHost := strings.ToLower(r.Owner) + ".github.io"
		cfg.URL = "https://" + pagesHost
		if strings.EqualFold(r.Name, pagesHost) {
			cfg.BaseURL = "/"
		} else {
			cfg.BaseURL = "/" + r.Name
		}
	}

	editURL := r.EditURL(siteSubdir)
	if o := cfg.Classic(); o != nil {
		if o.Docs != nil {
			o.Docs.EditURL = editURL
		}
		if o.Blog != nil {
			o.Blog.EditURL = editURL
		}
	}

	if cfg.ThemeConfig == nil || cfg.ThemeConfig.Navbar == nil {
		return
	}
	for i := range cfg.ThemeConfig.Navbar.Items {
		item := &cfg.ThemeConfig.Navbar.Items[i]
		if isRepoLink(item, r) {
			item.Href = r.WebURL()
		}
	}
}

// isRepoLink reports whether a navbar item points at the site's repository:
// either it is the item labelled GitHub, or its href already names r.
// Links to other repositories on the same host are left alone.
func isRepoLink(item *siteconfig.NavbarItem, r *Remote) bool {
	if item.Href == "" {
		return false
	}
	if strings.EqualFold(item.Label, "github") {
		return true
	}
	u, err := url.Parse(item.Href)
	if err != nil || !strings.EqualFold(u.Hostname(), r.Host) {
		return false
	}
	p := strings.TrimSuffix(strings.Trim(u.Path, "/"), ".git")
	return strings.EqualFold(p, r.Owner+"/"+r.Name)
}
