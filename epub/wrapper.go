package epub

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"scribblehub-to-epub/logger"
	"scribblehub-to-epub/model"
	apperrors "scribblehub-to-epub/pkg/errors"
	"scribblehub-to-epub/template"
)

const (
	xhtmlMediaType = "application/xhtml+xml"
	navTitle       = "Contents"
	modifiedLayout = "2006-01-02T15:04:05Z"
)

type Options struct {
	// StyleCSS replaces the default stylesheet when set
	StyleCSS string
}

// PackWorkToEpub assembles work and writes it to outputPath. Nothing is
// written once ctx is done.
func PackWorkToEpub(ctx context.Context, work *model.Work, outputPath string, opts Options) error {
	data, err := Assemble(ctx, work, opts)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return WriteFile(outputPath, data)
}

// LoadOptions reads the stylesheet at stylesheetPath, if any.
func LoadOptions(stylesheetPath string) (Options, error) {
	if stylesheetPath == "" {
		return Options{}, nil
	}
	css, err := os.ReadFile(stylesheetPath)
	if err != nil {
		return Options{}, apperrors.NewIO(stylesheetPath, "failed to read stylesheet", err)
	}
	return Options{StyleCSS: string(css)}, nil
}

// Assemble builds the EPUB for work in memory. The result depends only on
// work and opts.
func Assemble(ctx context.Context, work *model.Work, opts Options) ([]byte, error) {
	if work == nil || strings.TrimSpace(work.Title) == "" {
		return nil, apperrors.NewAssembly(workURL(work), "work has no title")
	}
	if len(work.Chapters) == 0 {
		return nil, apperrors.NewAssembly(work.URL, "work has no chapters")
	}
	if opts.StyleCSS == "" {
		opts.StyleCSS = template.StyleCSS
	}

	b := &builder{ctx: ctx, work: work, lang: language(work)}
	if err := b.build(opts); err != nil {
		return nil, apperrors.New(apperrors.ErrorTypeAssembly, work.URL, "failed to assemble epub", err)
	}

	data, err := packEpub(b.files, work.Modified())
	if err != nil {
		return nil, apperrors.New(apperrors.ErrorTypeAssembly, work.URL, "failed to pack epub", err)
	}
	logger.ForComponent("epub").Debug().
		Str("title", work.Title).
		Int("chapters", len(work.Chapters)).
		Int("bytes", len(data)).
		Msg("epub assembled")
	return data, nil
}

// WriteFile writes data to path through a temporary file in the same
// directory, so an interrupted write leaves no partial book behind.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewIO(path, "failed to create output directory", err)
	}
	tmp, err := os.CreateTemp(dir, ".sh2epub-*.tmp")
	if err != nil {
		return apperrors.NewIO(path, "failed to create temporary file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperrors.NewIO(path, "failed to write epub", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewIO(path, "failed to write epub", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return apperrors.NewIO(path, "failed to set file mode", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return apperrors.NewIO(path, "failed to move epub into place", err)
	}
	return nil
}

func workURL(work *model.Work) string {
	if work == nil {
		return ""
	}
	return work.URL
}

func language(work *model.Work) string {
	if work.Language == "" {
		return "en"
	}
	return work.Language
}

// ChapterFileName is the name of the n-th chapter document, counting from 1.
func ChapterFileName(n int) string {
	return fmt.Sprintf("chapter-%04d.xhtml", n)
}

// FormatRating renders a rating the way it appears in the package metadata.
func FormatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type builder struct {
	ctx   context.Context
	work  *model.Work
	lang  string
	files []file

	manifest model.Manifest
	spine    model.Spine
}

func (b *builder) add(name string, data []byte) {
	b.files = append(b.files, file{name: name, data: data})
}

func (b *builder) render(name string, c templ.Component) error {
	var buf bytes.Buffer
	if err := c.Render(b.ctx, &buf); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	b.add(name, buf.Bytes())
	return nil
}

// item adds a manifest entry; href is relative to OEBPS.
func (b *builder) item(id, href, media, properties string, inSpine bool) {
	b.manifest.Items = append(b.manifest.Items, model.ManifestItem{
		ID:         id,
		Link:       href,
		Media:      media,
		Properties: properties,
	})
	if inSpine {
		b.spine.Items = append(b.spine.Items, model.SpineItem{IDref: id})
	}
}

func (b *builder) build(opts Options) error {
	work := b.work

	if err := b.render("META-INF/container.xml", template.ContainerXML()); err != nil {
		return err
	}

	if work.Cover != nil {
		coverName := work.Cover.Name
		if coverName == "" {
			coverName = "cover" + model.ImageExt(work.Cover.SourceURL, work.Cover.MediaType)
		}
		if err := b.render("OEBPS/Text/cover.xhtml", template.CoverXHTML(b.lang, work.Title, "../Images/"+coverName)); err != nil {
			return err
		}
		b.item("cover", "Text/cover.xhtml", xhtmlMediaType, "", true)
		b.add("OEBPS/Images/"+coverName, work.Cover.Data)
		b.item("cover-image", "Images/"+coverName, coverMediaType(work.Cover, coverName), "cover-image", false)
	}

	intro := template.Intro{
		Title:       work.Title,
		Author:      work.Author,
		Description: work.Description,
		Subjects:    work.Subjects(),
		SourceURL:   work.URL,
	}
	if work.Rating != nil {
		intro.Rating = FormatRating(*work.Rating)
	}
	if err := b.render("OEBPS/Text/intro.xhtml", template.IntroXHTML(b.lang, intro)); err != nil {
		return err
	}
	b.item("intro", "Text/intro.xhtml", xhtmlMediaType, "", true)

	links := make([]template.NavLink, 0, len(work.Chapters))
	navMap := &model.NavMap{}
	for i, chapter := range work.Chapters {
		title := chapterTitle(chapter, i)
		name := ChapterFileName(i + 1)
		links = append(links, template.NavLink{Href: name, Title: title})
		navMap.Add(strings.TrimSuffix(name, ".xhtml"), title, "Text/"+name)
	}

	if err := b.render("OEBPS/Text/nav.xhtml", template.NavXHTML(b.lang, navTitle, links)); err != nil {
		return err
	}
	b.item("nav", "Text/nav.xhtml", xhtmlMediaType, "nav", true)

	for i, chapter := range work.Chapters {
		name := ChapterFileName(i + 1)
		if err := b.render("OEBPS/Text/"+name, template.ContentXHTML(b.lang, chapterTitle(chapter, i), chapter.Content)); err != nil {
			return err
		}
		b.item(strings.TrimSuffix(name, ".xhtml"), "Text/"+name, xhtmlMediaType, "", true)
	}

	for _, asset := range work.Assets {
		b.add("OEBPS/Images/"+asset.Name, asset.Data)
		media := asset.MediaType
		if media == "" {
			media = model.ImageMediaType(filepath.Ext(asset.Name))
		}
		b.item("img-"+strings.TrimSuffix(asset.Name, filepath.Ext(asset.Name)), "Images/"+asset.Name, media, "", false)
	}

	b.add("OEBPS/Styles/style.css", []byte(opts.StyleCSS))
	b.item("style", "Styles/style.css", "text/css", "", false)

	if err := b.render("OEBPS/toc.ncx", template.TocNCX(work.Title, b.ncxHead(), navMap)); err != nil {
		return err
	}
	b.item("ncx", "toc.ncx", "application/x-dtbncx+xml", "", false)

	b.spine.Toc = "ncx"
	return b.render("OEBPS/content.opf", template.ContentOPF("book-id", b.metadata(), &b.manifest, &b.spine, b.guide()))
}

func (b *builder) metadata() *model.DublinCoreMetadata {
	work := b.work
	modified := work.Modified()

	dc := &model.DublinCoreMetadata{
		Titles: []model.DCTitle{{Value: work.Title}},
		Identifiers: []model.DCIdentifier{
			{Value: work.URL, ID: "book-id", Scheme: "URI"},
			{Value: "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(work.URL)).String(), ID: "uuid-id"},
		},
		Languages: []model.DCLanguage{{Value: b.lang}},
		Dates:     []model.DCDate{{Value: modified.Format(modifiedLayout)}},
		Sources:   []model.DCSource{{Value: work.URL}},
		Metas: []model.DublinCoreMeta{
			{Property: "dcterms:modified", Value: modified.Format(modifiedLayout)},
		},
	}
	if work.Author != "" {
		dc.Creators = []model.DCCreator{{Value: work.Author, ID: "creator", Role: "aut"}}
	}
	if work.Description != "" {
		dc.Descriptions = []model.DCDescription{{Value: work.Description}}
	}
	if work.Publisher != "" {
		dc.Publishers = []model.DCPublisher{{Value: work.Publisher}}
	}
	if work.Rights != "" {
		dc.Rights = []model.DCRights{{Value: strings.Join(strings.Fields(
			fmt.Sprintf("Copyright © %d %s %s", modified.Year(), work.Author, work.Rights)), " ")}}
	}
	for _, subject := range work.Subjects() {
		dc.Subjects = append(dc.Subjects, model.DCSubject{Value: subject})
	}
	if work.Cover != nil {
		dc.Metas = append(dc.Metas, model.DublinCoreMeta{Name: "cover", Content: "cover-image"})
	}
	if work.Rating != nil {
		dc.Metas = append(dc.Metas, model.DublinCoreMeta{Name: "calibre:rating", Content: FormatRating(*work.Rating)})
	}
	return dc
}

func (b *builder) ncxHead() *model.TocNCXHead {
	return &model.TocNCXHead{
		Meta: []model.TocNCXHeadMeta{
			{Name: "dtb:uid", Content: b.work.URL},
			{Name: "dtb:depth", Content: "1"},
			{Name: "dtb:totalPageCount", Content: "0"},
			{Name: "dtb:maxPageNumber", Content: "0"},
		},
	}
}

func (b *builder) guide() *model.Guide {
	guide := &model.Guide{}
	if b.work.Cover != nil {
		guide.Items = append(guide.Items, model.GuideItem{Title: "Cover", Type: "cover", Link: "Text/cover.xhtml"})
	}
	guide.Items = append(guide.Items,
		model.GuideItem{Title: "Introduction", Type: "title-page", Link: "Text/intro.xhtml"},
		model.GuideItem{Title: navTitle, Type: "toc", Link: "Text/nav.xhtml"},
		model.GuideItem{Title: "Begin Reading", Type: "text", Link: "Text/" + ChapterFileName(1)},
	)
	return guide
}

func chapterTitle(chapter *model.Chapter, i int) string {
	if t := strings.TrimSpace(chapter.Title); t != "" {
		return t
	}
	return fmt.Sprintf("Chapter %d", i+1)
}

func coverMediaType(cover *model.Asset, name string) string {
	if strings.HasPrefix(cover.MediaType, "image/") {
		return cover.MediaType
	}
	return model.ImageMediaType(filepath.Ext(name))
}
