package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/fwojciec/docscout"
	"github.com/fwojciec/docscout/crawl"
)

// GitHub endpoints.
const (
	DefaultAPIURL = "https://api.github.com"
	DefaultRawURL = "https://raw.githubusercontent.com"
)

// DocDirs are the top-level directories searched for documentation, in
// order. Matching is case-insensitive.
var DocDirs = []string{"docs", "doc", "documentation", "wiki", "guide", "guides", "tutorial", "tutorials"}

// skippedDirs are never descended into. Hidden directories are skipped too.
var skippedDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"test":         true,
	"tests":        true,
	"example":      true,
	"examples":     true,
	"build":        true,
	"dist":         true,
}

// entry is one item of a contents API listing.
type entry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"`
	HTMLURL     string `json:"html_url"`
	DownloadURL string `json:"download_url"`
}

var _ docscout.Engine = (*Engine)(nil)

// Engine walks a repository's documentation directories and yields its
// Markdown files.
type Engine struct {
	Client *http.Client
	APIURL string
	RawURL string

	// Token, when set, is sent as a bearer token.
	Token string

	Policy crawl.Policy
}

// NewEngine returns an Engine against the public GitHub endpoints.
func NewEngine(token string, policy crawl.Policy) *Engine {
	return &Engine{Token: token, Policy: policy}
}

// Name returns docscout.EngineGitHub.
func (e *Engine) Name() docscout.EngineID { return docscout.EngineGitHub }

func (e *Engine) client() *http.Client {
	if e.Client == nil {
		return http.DefaultClient
	}
	return e.Client
}

func (e *Engine) apiURL() string {
	if e.APIURL == "" {
		return DefaultAPIURL
	}
	return strings.TrimRight(e.APIURL, "/")
}

func (e *Engine) rawURL() string {
	if e.RawURL == "" {
		return DefaultRawURL
	}
	return strings.TrimRight(e.RawURL, "/")
}

// walk carries the state of one Crawl call.
type walk struct {
	engine  *Engine
	repo    Repo
	yield   func(*docscout.CrawledPage) bool
	seen    map[string]bool
	yielded int
	stopped bool
}

// Crawl yields the repository's Markdown documentation. Listing errors other
// than rate limiting are returned; file fetch errors skip the file.
func (e *Engine) Crawl(ctx context.Context, startURL string, yield func(*docscout.CrawledPage) bool) error {
	repo, err := ParseRepoURL(startURL)
	if err != nil {
		return err
	}
	w := &walk{engine: e, repo: repo, yield: yield, seen: make(map[string]bool)}

	if repo.Path != "" {
		return w.dir(ctx, repo.Path, 1)
	}

	root, err := w.list(ctx, "")
	if err != nil || root == nil {
		return err
	}
	roots := docRoots(root)
	if len(roots) == 0 {
		e.Policy.Report(0, "No documentation directory, walking repository root")
		return w.entries(ctx, root, 1)
	}
	for _, dir := range roots {
		e.Policy.Report(0, "Walking "+dir)
		if err := w.dir(ctx, dir, 1); err != nil || w.done(ctx) {
			return err
		}
	}
	return nil
}

// docRoots returns the documentation directories present in a root
// listing, in DocDirs order.
func docRoots(root []entry) []string {
	var roots []string
	for _, name := range DocDirs {
		for _, en := range root {
			if en.Type == "dir" && strings.EqualFold(en.Name, name) && !slices.Contains(roots, en.Path) {
				roots = append(roots, en.Path)
			}
		}
	}
	return roots
}

func (w *walk) done(ctx context.Context) bool {
	return w.stopped || ctx.Err() != nil || w.yielded >= w.engine.Policy.Pages()
}

// dir lists and walks one directory. A rate-limited listing ends the branch.
func (w *walk) dir(ctx context.Context, dirPath string, depth int) error {
	if w.done(ctx) {
		return nil
	}
	entries, err := w.list(ctx, dirPath)
	if err != nil {
		return err
	}
	return w.entries(ctx, entries, depth)
}

func (w *walk) entries(ctx context.Context, entries []entry, depth int) error {
	logger := w.engine.Policy.Log()
	for _, en := range entries {
		if w.done(ctx) {
			return nil
		}
		switch en.Type {
		case "file":
			if !IsMarkdownFile(en.Name) || w.seen[en.Path] {
				continue
			}
			w.seen[en.Path] = true
			content, err := w.engine.Policy.Fetch(ctx, w.downloadURL(en), w.engine.fetchRaw)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn("skip file", "path", en.Path, "err", err)
				continue
			}
			w.yielded++
			w.engine.Policy.ReportPage(w.yielded, "Fetched", en.Path)
			if !w.yield(w.page(en, content)) {
				w.stopped = true
				return nil
			}
		case "dir":
			if skippedDirs[strings.ToLower(en.Name)] || strings.HasPrefix(en.Name, ".") {
				continue
			}
			if depth >= w.engine.Policy.Depth() {
				continue
			}
			if err := w.dir(ctx, en.Path, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walk) page(en entry, content string) *docscout.CrawledPage {
	pageURL := en.HTMLURL
	if pageURL == "" {
		ref := w.repo.Ref
		if ref == "" {
			ref = "HEAD"
		}
		pageURL = fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s", w.repo.Owner, w.repo.Name, ref, en.Path)
	}
	return &docscout.CrawledPage{
		URL:        pageURL,
		Path:       "/" + en.Path,
		RawContent: content,
		Title:      TitleFromFilename(en.Name),
	}
}

func (w *walk) downloadURL(en entry) string {
	if en.DownloadURL != "" {
		return en.DownloadURL
	}
	ref := w.repo.Ref
	if ref == "" {
		ref = "HEAD"
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s", w.engine.rawURL(), w.repo.Owner, w.repo.Name, ref, en.Path)
}

// list returns a directory listing. Rate limiting logs and returns nil
// entries without an error.
func (w *walk) list(ctx context.Context, dirPath string) ([]entry, error) {
	e := w.engine
	target := fmt.Sprintf("%s/repos/%s/%s/contents/%s", e.apiURL(), url.PathEscape(w.repo.Owner), url.PathEscape(w.repo.Name), dirPath)
	if w.repo.Ref != "" {
		target += "?ref=" + url.QueryEscape(w.repo.Ref)
	}

	entries, err := crawl.Retry(ctx, target, func(ctx context.Context) ([]entry, error) {
		if err := e.Policy.Wait(ctx, target); err != nil {
			return nil, crawl.Permanent(err)
		}
		ctx, cancel := context.WithTimeout(ctx, e.Policy.Timeout())
		defer cancel()
		return e.listOnce(ctx, target)
	}, e.Policy.Log(), e.Policy.Delays())

	switch {
	case err == nil:
		return entries, nil
	case ctx.Err() != nil:
		return nil, nil
	case docscout.ErrorCode(err) == docscout.ERATELIMIT:
		e.Policy.Log().Warn("GitHub API rate limited, skipping directory", "path", dirPath, "err", err)
		return nil, nil
	default:
		return nil, err
	}
}

func (e *Engine) listOnce(ctx context.Context, target string) ([]entry, error) {
	body, err := e.get(ctx, target, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}

	var entries []entry
	if err := json.Unmarshal([]byte(body), &entries); err != nil {
		// A path that names a single file returns an object.
		var single entry
		if err2 := json.Unmarshal([]byte(body), &single); err2 != nil || single.Type == "" {
			return nil, crawl.Permanent(docscout.Errorf(docscout.EINTERNAL, "decoding listing %s: %v", target, err))
		}
		entries = []entry{single}
	}
	return entries, nil
}

func (e *Engine) fetchRaw(ctx context.Context, target string) (string, error) {
	return e.get(ctx, target, "")
}

// get performs an authenticated GET. 403 is ERATELIMIT and 404 is
// ENOTFOUND, neither retried.
func (e *Engine) get(ctx context.Context, target, accept string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", crawl.Permanent(docscout.Errorf(docscout.EINVALID, "invalid URL %q: %v", target, err))
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	}
	if e.Token != "" {
		req.Header.Set("Authorization", "Bearer "+e.Token)
	}

	resp, err := e.client().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden, http.StatusTooManyRequests:
		return "", crawl.Permanent(docscout.Errorf(docscout.ERATELIMIT, "HTTP %d for %s", resp.StatusCode, target))
	case http.StatusNotFound:
		return "", crawl.Permanent(docscout.Errorf(docscout.ENOTFOUND, "HTTP %d for %s", resp.StatusCode, target))
	default:
		return "", docscout.Errorf(docscout.EINTERNAL, "HTTP %d for %s", resp.StatusCode, target)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
