package main_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docscout"
	main "github.com/fwojciec/docscout/cmd/docscout"
	"github.com/fwojciec/docscout/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	helpOutput := stdout.String()
	for _, cmd := range []string{"crawl", "segment", "discover", "--browser", "--queue"} {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s", cmd)
	}
}

func TestCLI_ParsesConfig(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	parser, err := kong.New(cli, kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"crawl", "--max-pages", "5", "--queue", "sqlite", "--extractor", "readability", "https://a.com", "https://b.com"})

	require.NoError(t, err)
	assert.Equal(t, 5, cli.MaxPages)
	assert.Equal(t, 5, cli.MaxDepth)
	assert.Equal(t, "sqlite", cli.Queue)
	assert.Equal(t, "readability", cli.Extractor)
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, cli.Crawl.URLs)
}

func TestCLI_RejectsUnknownQueue(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	parser, err := kong.New(cli, kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"crawl", "--queue", "kafka", "https://a.com"})

	assert.Error(t, err)
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("help succeeds", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		err := main.NewMain().Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "crawl")
	})

	t.Run("no command is an error", func(t *testing.T) {
		t.Parallel()

		err := main.NewMain().Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no command specified")
	})
}

func TestDiscoverCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints discovered URLs", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Sitemaps: &mock.SitemapService{
				DiscoverURLsFn: func(_ context.Context, baseURL string) ([]string, error) {
					return []string{baseURL + "/a", baseURL + "/b"}, nil
				},
			},
		}

		require.NoError(t, (&main.DiscoverCmd{URL: "https://x.com"}).Run(deps))

		assert.Equal(t, "https://x.com/a\nhttps://x.com/b\n", stdout.String())
	})

	t.Run("reports errors", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Sitemaps: &mock.SitemapService{
				DiscoverURLsFn: func(context.Context, string) ([]string, error) {
					return nil, docscout.Errorf(docscout.EINVALID, "invalid base URL")
				},
			},
		}

		err := (&main.DiscoverCmd{URL: "::"}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error: invalid base URL")
	})
}

func TestSegmentCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints the article as json", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Fetcher: &mock.Fetcher{
				FetchFn: func(context.Context, string) (string, error) { return "<p>hello</p>", nil },
			},
			Segmenter: titleSegmenter(),
		}

		require.NoError(t, (&main.SegmentCmd{URL: "https://x.com/docs/a.html"}).Run(deps))

		assert.Contains(t, stdout.String(), `"path": "/docs/a.html"`)
		assert.Contains(t, stdout.String(), `"body": "<p>hello</p>"`)
	})

	t.Run("reports fetch errors", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Fetcher: &mock.Fetcher{
				FetchFn: func(context.Context, string) (string, error) { return "", errors.New("refused") },
			},
		}

		err := (&main.SegmentCmd{URL: "https://x.com"}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error:")
	})
}
