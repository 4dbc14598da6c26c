package cmd

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scribblehub-to-epub/downloader/scribblehub/scribblehubtest"
	"scribblehub-to-epub/model"
	apperrors "scribblehub-to-epub/pkg/errors"
)

type testEnv struct {
	srv        *scribblehubtest.Server
	configPath string
	outputDir  string
}

func newTestEnv(t *testing.T, site scribblehubtest.Site) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		srv:        scribblehubtest.NewServer(t, site),
		configPath: filepath.Join(dir, "config.yaml"),
		outputDir:  filepath.Join(dir, "out"),
	}
	yaml := fmt.Sprintf(`base_url: %s
output_dir: %s
cache_backend: sqlite
cache_dir: %s
cache_ttl: 1h
requests_per_minute: 60000
retry_count: 0
log_level: warn
`, env.srv.URL, env.outputDir, filepath.Join(dir, "cache"))
	require.NoError(t, os.WriteFile(env.configPath, []byte(yaml), 0644))
	return env
}

func (e *testEnv) run(args ...string) (string, error) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", e.configPath, "--quiet"}, args...))
	err := root.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestDownloadSecondRunUsesCache(t *testing.T) {
	env := newTestEnv(t, scribblehubtest.DefaultSite())

	path, err := env.run("download", env.srv.SeriesURL())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(env.outputDir, "Jane Writer - The Test Story.epub"), path)
	first, err := os.ReadFile(path)
	require.NoError(t, err)
	hits := env.srv.Hits()
	assert.Equal(t, 7, hits)

	path, err = env.run("download", env.srv.SeriesURL())
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, hits, env.srv.Hits())
	assert.Equal(t, first, second)
}

func TestDownloadFlagsOverrideConfig(t *testing.T) {
	env := newTestEnv(t, scribblehubtest.DefaultSite())
	target := filepath.Join(t.TempDir(), "custom.epub")

	for i := 0; i < 2; i++ {
		path, err := env.run("download", "--cache-backend", "none", "--no-images", "--text", "-o", target, env.srv.SeriesURL())
		require.NoError(t, err)
		assert.Equal(t, target, path)
	}

	// no cache and no images: series page, second TOC page, three chapters, twice
	assert.Equal(t, 10, env.srv.Hits())
	assert.Equal(t, 0, env.srv.HitsFor("/images/cover.png"))

	_, err := os.Stat(filepath.Join(filepath.Dir(target), "Jane Writer - The Test Story", "0001-Prologue.txt"))
	assert.NoError(t, err)
}

func TestDownloadStylesheetFlag(t *testing.T) {
	env := newTestEnv(t, scribblehubtest.DefaultSite())
	cssPath := filepath.Join(t.TempDir(), "book.css")
	require.NoError(t, os.WriteFile(cssPath, []byte("body { color: black; }"), 0644))

	path, err := env.run("download", "--stylesheet", cssPath, env.srv.SeriesURL())
	require.NoError(t, err)

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	rc, err := zr.Open("OEBPS/Styles/style.css")
	require.NoError(t, err)
	defer rc.Close()
	css, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "body { color: black; }", string(css))

	_, err = env.run("download", "--stylesheet", filepath.Join(t.TempDir(), "missing.css"), env.srv.SeriesURL())
	assert.Equal(t, 5, apperrors.ExitCode(err))
}

func TestDownloadErrorsMapToExitCodes(t *testing.T) {
	site := scribblehubtest.DefaultSite()
	env := newTestEnv(t, site)
	env.srv.Fail["/series/123456/the-test-story/"] = 503

	_, err := env.run("download", env.srv.SeriesURL())
	require.Error(t, err)
	assert.Equal(t, 2, apperrors.ExitCode(err))

	_, err = env.run("download", "https://example.com/not-scribblehub")
	assert.Equal(t, 3, apperrors.ExitCode(err))

	_, err = env.run("download", "--rpm", "0", env.srv.SeriesURL())
	assert.Equal(t, 6, apperrors.ExitCode(err))
}

func TestDownloadBrokenChapterWritesNothing(t *testing.T) {
	site := scribblehubtest.DefaultSite()
	site.Chapters[2].Broken = true
	env := newTestEnv(t, site)

	_, err := env.run("download", env.srv.SeriesURL())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeParsing))

	_, statErr := os.Stat(env.outputDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestOutputPath(t *testing.T) {
	work := &model.Work{Title: "What: If?", Author: "A/B"}

	assert.Equal(t, "book.EPUB", outputPath("book.EPUB", "out", work))
	assert.Equal(t, filepath.Join("dir", "A_B - What_ If_.epub"), outputPath("dir", "out", work))
	assert.Equal(t, filepath.Join("out", "A_B - What_ If_.epub"), outputPath("", "out", work))
	assert.Equal(t, filepath.Join(".", "T.epub"), outputPath("", "", &model.Work{Title: "T"}))
}
