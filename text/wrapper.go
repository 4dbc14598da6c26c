package text

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"scribblehub-to-epub/logger"
	"scribblehub-to-epub/model"
	apperrors "scribblehub-to-epub/pkg/errors"
	"scribblehub-to-epub/utils"
)

const blockSelectors = "p, div, br, hr, li, h1, h2, h3, h4, h5, h6, aside, blockquote, tr"

var blankLines = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)

// PackWorkToText writes one plain text file per chapter into a directory
// named after the work under outputPath, and returns that directory.
func PackWorkToText(work *model.Work, outputPath string) (string, error) {
	outputPath = filepath.Join(outputPath, utils.CleanFileName(fmt.Sprintf("%s - %s", work.Author, work.Title)))
	if err := os.MkdirAll(outputPath, 0755); err != nil {
		return "", apperrors.NewIO(outputPath, "failed to create output directory", err)
	}

	for i, chapter := range work.Chapters {
		text, err := ChapterText(chapter)
		if err != nil {
			return "", apperrors.New(apperrors.ErrorTypeParsing, chapter.URL, "failed to convert chapter to text", err)
		}
		chapterPath := filepath.Join(outputPath, utils.CleanFileName(fmt.Sprintf("%04d-%s", i+1, chapter.Title))+".txt")
		if err := os.WriteFile(chapterPath, []byte(text), 0644); err != nil {
			return "", apperrors.NewIO(chapterPath, "failed to write chapter file", err)
		}
	}

	logger.ForComponent("text").Info().
		Str("dir", outputPath).
		Int("chapters", len(work.Chapters)).
		Msg("text export written")
	return outputPath, nil
}

// ChapterText renders a chapter as its title followed by the body text,
// one paragraph per line block.
func ChapterText(chapter *model.Chapter) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(chapter.Content))
	if err != nil {
		return "", err
	}
	doc.Find("img").Remove()
	doc.Find(blockSelectors).Each(func(i int, s *goquery.Selection) {
		s.AfterHtml("\n\n")
	})

	body := blankLines.ReplaceAllString(doc.Text(), "\n\n")
	return strings.TrimSpace(chapter.Title) + "\n\n" + strings.TrimSpace(body) + "\n", nil
}
