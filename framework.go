package docscout

// Framework names the static site generator a documentation site was built
// with. Framework site rules use it as their rule type.
type Framework string

const (
	FrameworkUnknown    Framework = ""
	FrameworkDocusaurus Framework = "docusaurus"
	FrameworkMkDocs     Framework = "mkdocs"
	FrameworkSphinx     Framework = "sphinx"
	FrameworkVitePress  Framework = "vitepress"
	FrameworkVuePress   Framework = "vuepress"
	FrameworkGitBook    Framework = "gitbook"
	FrameworkNextra     Framework = "nextra"
)

// FrameworkDetector tells which framework produced a page.
type FrameworkDetector interface {
	// Detect returns FrameworkUnknown when no framework marker is present.
	Detect(html string) Framework
}
