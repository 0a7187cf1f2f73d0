// Package github crawls Markdown documentation straight from GitHub
// repositories through the contents API and the raw-content mirror.
package github

import (
	"net/url"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fwojciec/docscout"
)

// Repo addresses a repository, optionally narrowed to a ref and a path.
type Repo struct {
	Owner string
	Name  string
	Ref   string
	Path  string
}

// ParseRepoURL parses github.com/{owner}/{repo}[/tree/{ref}/{path}].
// Anything else is EFATAL: no other engine can serve a GitHub URL.
func ParseRepoURL(rawURL string) (Repo, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Repo{}, docscout.Errorf(docscout.EFATAL, "invalid GitHub URL %q: %v", rawURL, err)
	}
	host := strings.ToLower(u.Hostname())
	if host != "github.com" && host != "www.github.com" {
		return Repo{}, docscout.Errorf(docscout.EFATAL, "not a GitHub URL: %s", rawURL)
	}

	parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(parts) < 2 {
		return Repo{}, docscout.Errorf(docscout.EFATAL, "GitHub URL has no repository: %s", rawURL)
	}
	repo := Repo{Owner: parts[0], Name: strings.TrimSuffix(parts[1], ".git")}
	if len(parts) >= 4 && (parts[2] == "tree" || parts[2] == "blob") {
		repo.Ref = parts[3]
		repo.Path = strings.Join(parts[4:], "/")
	}
	return repo, nil
}

// TitleFromFilename derives a title from a file name: the extension is
// dropped, words split on '-' and '_', each word capitalised.
func TitleFromFilename(name string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	words := strings.FieldsFunc(base, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// IsMarkdownFile reports whether name has a Markdown extension.
func IsMarkdownFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".md", ".mdx", ".markdown":
		return true
	}
	return false
}
