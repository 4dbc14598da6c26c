package scribblehub

import (
	"context"
	"fmt"
	"strings"

	"scribblehub-to-epub/httpcache"
	"scribblehub-to-epub/logger"
	"scribblehub-to-epub/model"
	apperrors "scribblehub-to-epub/pkg/errors"
)

// Fetcher is the subset of fetcher.Fetcher the loader needs.
type Fetcher interface {
	Get(ctx context.Context, url string) (*httpcache.Entry, error)
	GetHTML(ctx context.Context, url string) (string, error)
}

type Options struct {
	BaseURL          string
	Images           bool
	StraightenQuotes bool
	// OnChapter is called after each chapter is loaded
	OnChapter func(done, total int, title string)
	// OnTOC is called once the chapter count is known
	OnTOC func(total int)
}

type Scribblehub struct {
	fetcher Fetcher
	opts    Options
	log     *logger.Logger
}

var _ model.Downloader = (*Scribblehub)(nil)

func New(fetcher Fetcher, opts Options) *Scribblehub {
	return &Scribblehub{
		fetcher: fetcher,
		opts:    opts,
		log:     logger.ForComponent("scribblehub"),
	}
}

func (s *Scribblehub) CanHandleURL(url string) bool {
	return CanHandleURL(url)
}

func (s *Scribblehub) parseOptions() ParseOptions {
	return ParseOptions{StraightenQuotes: s.opts.StraightenQuotes}
}

// GetWork loads metadata, every table of contents page, the cover and all
// chapters of the work named by input. Any failure aborts the whole load.
func (s *Scribblehub) GetWork(ctx context.Context, input string) (*model.Work, error) {
	seriesURL, err := ResolveSeriesURL(input, s.opts.BaseURL)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("url", seriesURL).Msg("getting work")

	body, err := s.fetcher.GetHTML(ctx, seriesURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get series page: %w", err)
	}
	work, err := ParseWork(seriesURL, body, s.parseOptions())
	if err != nil {
		return nil, err
	}

	refs, err := s.getTOC(ctx, seriesURL, body)
	if err != nil {
		return nil, err
	}
	if s.opts.OnTOC != nil {
		s.opts.OnTOC(len(refs))
	}

	if s.opts.Images && work.CoverURL != "" {
		cover, err := s.getImage(ctx, work.CoverURL)
		if err != nil {
			return nil, fmt.Errorf("failed to get cover: %w", err)
		}
		cover.Name = "cover" + model.ImageExt(cover.SourceURL, cover.MediaType)
		work.Cover = cover
	}

	for i, ref := range refs {
		chapter, err := s.getChapter(ctx, work, ref)
		if err != nil {
			return nil, err
		}
		work.Chapters = append(work.Chapters, chapter)
		if s.opts.OnChapter != nil {
			s.opts.OnChapter(i+1, len(refs), chapter.Title)
		}
	}

	s.log.Info().
		Str("title", work.Title).
		Int("chapters", len(work.Chapters)).
		Int("images", len(work.Assets)).
		Msg("work loaded")
	return work, nil
}

func (s *Scribblehub) getTOC(ctx context.Context, seriesURL, firstPage string) ([]ChapterRef, error) {
	refs, lastPage, err := ParseTOC(seriesURL, firstPage)
	if err != nil {
		return nil, err
	}
	pages := [][]ChapterRef{refs}

	for n := 2; n <= lastPage; n++ {
		pageURL, err := tocPageURL(seriesURL, n)
		if err != nil {
			return nil, err
		}
		body, err := s.fetcher.GetHTML(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("failed to get table of contents page %d: %w", n, err)
		}
		pageRefs, _, err := ParseTOC(pageURL, body)
		if err != nil {
			return nil, err
		}
		pages = append(pages, pageRefs)
	}

	merged := MergeTOC(pages...)
	if len(merged) == 0 {
		return nil, apperrors.NewParsing(seriesURL, "no chapters found in table of contents", nil)
	}
	s.log.Debug().Int("chapters", len(merged)).Int("pages", lastPage).Msg("table of contents loaded")
	return merged, nil
}

func (s *Scribblehub) getChapter(ctx context.Context, work *model.Work, ref ChapterRef) (*model.Chapter, error) {
	s.log.Debug().Str("url", ref.URL).Int("order", ref.Index).Msg("getting chapter")

	body, err := s.fetcher.GetHTML(ctx, ref.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to get chapter %d: %w", ref.Index, err)
	}
	parsed, err := ParseChapter(ref.URL, body, ChapterOptions{
		ParseOptions: s.parseOptions(),
		Images:       s.opts.Images,
	})
	if err != nil {
		return nil, err
	}

	title := parsed.Title
	if title == "" {
		title = s.parseOptions().fix(ref.Title)
	}

	for _, src := range parsed.Images {
		if work.HasAsset(src) {
			continue
		}
		asset, err := s.getImage(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("failed to get image in chapter %d: %w", ref.Index, err)
		}
		asset.Name = model.AssetName(src, model.ImageExt(src, ""))
		work.AddAsset(asset)
	}

	return &model.Chapter{
		Index:     ref.Index,
		URL:       ref.URL,
		Title:     title,
		Published: ref.Published,
		Content:   parsed.Content,
	}, nil
}

func (s *Scribblehub) getImage(ctx context.Context, src string) (*model.Asset, error) {
	entry, err := s.fetcher.Get(ctx, src)
	if err != nil {
		return nil, err
	}
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(entry.ContentType, ";")[0]))
	if !strings.HasPrefix(mediaType, "image/") {
		mediaType = model.ImageMediaType(model.ImageExt(src, ""))
	}
	return &model.Asset{
		SourceURL: src,
		MediaType: mediaType,
		Data:      entry.Body,
	}, nil
}
