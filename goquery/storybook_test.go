package goquery_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/docscout/goquery"
	"github.com/fwojciec/docscout/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPage returns a page that records every interaction.
func recordingPage(url string, calls *[]string) *mock.Page {
	return &mock.Page{
		URLFn: func() string { return url },
		WaitNetworkIdleFn: func(_ context.Context) error {
			*calls = append(*calls, "idle")
			return nil
		},
		WaitVisibleFn: func(_ context.Context, selector string) error {
			*calls = append(*calls, "visible "+selector)
			return nil
		},
		ClickFn: func(_ context.Context, selector string, _ *regexp.Regexp, limit int) (int, error) {
			*calls = append(*calls, fmt.Sprintf("click %s (%d)", selector, limit))
			return 0, nil
		},
		ScrollFn: func(_ context.Context, selector string, bottom bool) error {
			*calls = append(*calls, fmt.Sprintf("scroll %s %t", selector, bottom))
			return nil
		},
	}
}

func quickStorybook() *goquery.StorybookRule {
	return &goquery.StorybookRule{
		Converter:   &mock.Converter{ConvertFn: func(html string) (string, error) { return html, nil }},
		SettleDelay: time.Millisecond,
		ClickDelay:  time.Millisecond,
	}
}

func TestStorybookRule_Detect(t *testing.T) {
	t.Parallel()

	t.Run("matches a docs URL", func(t *testing.T) {
		t.Parallel()

		page := &mock.Page{URLFn: func() string { return "https://design.example.com/?path=/docs/button--docs" }}

		assert.True(t, quickStorybook().Detect(context.Background(), page, ""))
	})

	t.Run("matches a storybook root element", func(t *testing.T) {
		t.Parallel()

		page := &mock.Page{URLFn: func() string { return "https://design.example.com/" }}

		assert.True(t, quickStorybook().Detect(context.Background(), page, `<div id="storybook-root"></div>`))
	})

	t.Run("matches storybook globals", func(t *testing.T) {
		t.Parallel()

		var expr string
		page := &mock.Page{
			URLFn: func() string { return "https://design.example.com/" },
			EvalBoolFn: func(_ context.Context, e string) (bool, error) {
				expr = e
				return true, nil
			},
		}

		assert.True(t, quickStorybook().Detect(context.Background(), page, `<div id="app"></div>`))
		assert.Contains(t, expr, "__STORYBOOK_PREVIEW__")
	})

	t.Run("rejects a page when globals cannot be evaluated", func(t *testing.T) {
		t.Parallel()

		page := &mock.Page{
			URLFn: func() string { return "https://example.com/" },
			EvalBoolFn: func(_ context.Context, _ string) (bool, error) {
				return false, errors.New("detached")
			},
		}

		assert.False(t, quickStorybook().Detect(context.Background(), page, `<main>docs</main>`))
	})

	t.Run("uses only the HTML without a page", func(t *testing.T) {
		t.Parallel()

		assert.True(t, quickStorybook().Detect(context.Background(), nil, `<div class="sbdocs"></div>`))
		assert.False(t, quickStorybook().Detect(context.Background(), nil, `<main></main>`))
	})
}

func TestIsStorybookURL(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		url  string
		want bool
	}{
		{"https://sb.example.com/?path=/docs/button--docs", true},
		{"https://sb.example.com/?path=/story/button--primary", true},
		{"https://sb.example.com/iframe.html?id=button--primary", true},
		{"https://sb.example.com/iframe.html", false},
		{"https://sb.example.com/?path=/settings/about", false},
		{"https://example.com/docs/", false},
	} {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, goquery.IsStorybookURL(tt.url))
		})
	}
}

func TestStorybookRule_Prepare(t *testing.T) {
	t.Parallel()

	t.Run("runs every step in order", func(t *testing.T) {
		t.Parallel()

		var calls []string
		page := recordingPage("https://sb.example.com/?path=/docs/button--docs", &calls)

		quickStorybook().Prepare(context.Background(), page)

		require.GreaterOrEqual(t, len(calls), 9)
		assert.Equal(t, "idle", calls[0])
		assert.True(t, strings.HasPrefix(calls[1], "visible "))
		assert.Equal(t, "scroll #storybook-docs true", calls[6])
		assert.Equal(t, "scroll #storybook-docs false", calls[7])
		assert.Equal(t, "click button, .docblock-code-toggle (3)", calls[8])

		var aria int
		for _, c := range calls {
			if c == "click [aria-expanded='false'] (0)" {
				aria++
			}
		}
		assert.Equal(t, 2, aria, "collapsed nodes are expanded in two passes")
	})

	t.Run("continues after a failing step", func(t *testing.T) {
		t.Parallel()

		var calls []string
		page := recordingPage("https://sb.example.com/", &calls)
		page.WaitNetworkIdleFn = func(_ context.Context) error { return errors.New("timeout") }

		results := goquery.RunSteps(context.Background(), page, quickStorybook().Steps(), nil)

		require.Len(t, results, 5)
		assert.Equal(t, "wait-ready", results[0].Name)
		assert.Error(t, results[0].Err)
		for _, r := range results[1:] {
			assert.NoError(t, r.Err, r.Name)
		}
	})

	t.Run("falls through scroll containers", func(t *testing.T) {
		t.Parallel()

		var scrolled []string
		var calls []string
		page := recordingPage("https://sb.example.com/", &calls)
		page.ScrollFn = func(_ context.Context, selector string, _ bool) error {
			if selector == "#storybook-docs" {
				return errors.New("not found")
			}
			scrolled = append(scrolled, selector)
			return nil
		}

		quickStorybook().Prepare(context.Background(), page)

		assert.Equal(t, []string{".sbdocs-wrapper", ".sbdocs-wrapper"}, scrolled)
	})

	t.Run("expands argument tables one click at a time", func(t *testing.T) {
		t.Parallel()

		remaining := 2
		var limits []int
		var calls []string
		page := recordingPage("https://sb.example.com/", &calls)
		page.ClickFn = func(_ context.Context, selector string, _ *regexp.Regexp, limit int) (int, error) {
			if selector != ".docblock-argstable [aria-expanded='false']" {
				return 0, nil
			}
			limits = append(limits, limit)
			if remaining == 0 {
				return 0, nil
			}
			remaining--
			return 1, nil
		}

		quickStorybook().Prepare(context.Background(), page)

		assert.Equal(t, []int{1, 1, 1}, limits)
	})
}

func TestStorybookRule_ExtractContent(t *testing.T) {
	t.Parallel()

	html := `<html><body>
<div id="storybook-docs"><div class="sbdocs sbdocs-content">
<h1 class="sbdocs-title">Button</h1>
<p class="sbdocs-p">A clickable button.</p>
<button class="docblock-code-toggle">Show code</button>
<script>track()</script>
</div></div>
</body></html>`

	t.Run("converts the docs container to markdown", func(t *testing.T) {
		t.Parallel()

		var converted string
		rule := &goquery.StorybookRule{Converter: &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				converted = html
				return "# Button\n\nA clickable button.\n", nil
			},
		}}

		got, err := rule.ExtractContent(html, "https://sb.example.com/?path=/docs/button--docs")

		require.NoError(t, err)
		assert.Equal(t, "# Button\n\nA clickable button.", got.Content)
		assert.Equal(t, "Button", got.Metadata["name"])
		assert.Equal(t, "A clickable button.", got.Metadata["description"])
		assert.Contains(t, converted, "sbdocs-title")
		assert.NotContains(t, converted, "<script")
		assert.NotContains(t, converted, "Show code")
	})

	t.Run("adds a title heading when the markdown lacks one", func(t *testing.T) {
		t.Parallel()

		rule := &goquery.StorybookRule{Converter: &mock.Converter{
			ConvertFn: func(_ string) (string, error) { return "A clickable button.", nil },
		}}

		got, err := rule.ExtractContent(html, "https://sb.example.com/")

		require.NoError(t, err)
		assert.Equal(t, "# Button\n\nA clickable button.", got.Content)
	})

	t.Run("returns empty content for an empty page", func(t *testing.T) {
		t.Parallel()

		got, err := quickStorybook().ExtractContent(`<html><body> </body></html>`, "https://sb.example.com/")

		require.NoError(t, err)
		assert.Empty(t, got.Content)
	})

	t.Run("propagates converter errors", func(t *testing.T) {
		t.Parallel()

		rule := &goquery.StorybookRule{Converter: &mock.Converter{
			ConvertFn: func(_ string) (string, error) { return "", errors.New("boom") },
		}}

		_, err := rule.ExtractContent(html, "https://sb.example.com/")

		assert.Error(t, err)
	})
}
