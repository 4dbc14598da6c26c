package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"scribblehub-to-epub/config"
	"scribblehub-to-epub/downloader/scribblehub"
	"scribblehub-to-epub/epub"
	"scribblehub-to-epub/fetcher"
	"scribblehub-to-epub/logger"
	"scribblehub-to-epub/model"
	"scribblehub-to-epub/text"
	"scribblehub-to-epub/ui"
	"scribblehub-to-epub/utils"
)

type downloadOptions struct {
	output       string
	noImages     bool
	text         bool
	cacheBackend string
	cacheTTL     time.Duration
	rpm          int
	stylesheet   string
}

func newDownloadCmd(root *rootOptions) *cobra.Command {
	opts := &downloadOptions{}

	cmd := &cobra.Command{
		Use:   "download <series-url|chapter-url|story-id>",
		Short: "Download a series and write it as an EPUB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := root.loadConfig()
			if err != nil {
				return err
			}
			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			path, err := runDownload(ctx, cmd, cfg, opts, root.quiet, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output .epub file or directory (default output_dir from config)")
	cmd.Flags().BoolVar(&opts.noImages, "no-images", false, "skip the cover and inline images")
	cmd.Flags().BoolVar(&opts.text, "text", false, "also export chapters as plain text")
	cmd.Flags().StringVar(&opts.cacheBackend, "cache-backend", "", "cache backend: sqlite, memcache, redis, none")
	cmd.Flags().DurationVar(&opts.cacheTTL, "cache-ttl", 0, "how long cached responses stay fresh")
	cmd.Flags().IntVar(&opts.rpm, "rpm", 0, "maximum requests per minute")
	cmd.Flags().StringVar(&opts.stylesheet, "stylesheet", "", "CSS file to use instead of the built-in stylesheet")
	return cmd
}

// apply lets explicitly set flags override cfg and revalidates it.
func (o *downloadOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("no-images") {
		cfg.Images = !o.noImages
	}
	if flags.Changed("cache-backend") {
		cfg.CacheBackend = o.cacheBackend
	}
	if flags.Changed("cache-ttl") {
		cfg.CacheTTL = o.cacheTTL
	}
	if flags.Changed("rpm") {
		cfg.RequestsPerMinute = o.rpm
	}
	if flags.Changed("stylesheet") {
		cfg.Stylesheet = o.stylesheet
	}
	return cfg.Validate()
}

func runDownload(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts *downloadOptions, quiet bool, input string) (string, error) {
	log := logger.ForComponent("cli").WithFields(logger.Fields{"input": input})

	epubOpts, err := epub.LoadOptions(cfg.Stylesheet)
	if err != nil {
		return "", err
	}

	f, err := fetcher.NewFromConfig(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer f.Close()

	progress := ui.NewChapterProgress(cmd.ErrOrStderr(), "chapters", quiet)
	defer progress.Close()

	loader := scribblehub.New(f, scribblehub.Options{
		BaseURL:          cfg.BaseURL,
		Images:           cfg.Images,
		StraightenQuotes: cfg.StraightenQuotes,
		OnTOC:            progress.SetTotal,
		OnChapter:        progress.Update,
	})

	work, err := loader.GetWork(ctx, input)
	if err != nil {
		return "", err
	}
	progress.Done()

	path := outputPath(opts.output, cfg.OutputDir, work)
	if err := epub.PackWorkToEpub(ctx, work, path, epubOpts); err != nil {
		return "", err
	}

	if opts.text {
		dir, err := text.PackWorkToText(work, filepath.Dir(path))
		if err != nil {
			return "", err
		}
		log.Info().Str("dir", dir).Msg("text written")
	}

	stats := f.Stats()
	log.Info().
		Str("path", path).
		Int("chapters", len(work.Chapters)).
		Int("cache_hits", stats.Hits).
		Int("requests", stats.Misses).
		Msg("epub written")
	return path, nil
}

// outputPath resolves -o: a path ending in .epub is used as is, anything
// else is a directory that receives "<author> - <title>.epub".
func outputPath(output, outputDir string, work *model.Work) string {
	if strings.EqualFold(filepath.Ext(output), ".epub") {
		return output
	}
	dir := output
	if dir == "" {
		dir = outputDir
	}
	if dir == "" {
		dir = "."
	}
	name := work.Title
	if work.Author != "" {
		name = fmt.Sprintf("%s - %s", work.Author, work.Title)
	}
	return filepath.Join(dir, utils.CleanFileName(name)+".epub")
}
