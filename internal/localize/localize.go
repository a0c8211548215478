// Package localize turns a downloaded filing document into a
// self-contained local copy: the text is normalized to UTF-8, and the
// images, stylesheets, and CSS-embedded resources it references are pulled
// down beside it with the references rewritten to relative paths.
//
// Every step is fault tolerant at the granularity of one resource. A fetch
// that fails leaves its reference pointing at the remote URL and the rest
// of the document still localizes.
package localize

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/transform"

	"github.com/seenimoa/edgarfetch/internal/config"
	"github.com/seenimoa/edgarfetch/internal/edgar"
	"github.com/seenimoa/edgarfetch/pkg/models"
)

const (
	defaultImageExt      = ".jpg"
	defaultStylesheetExt = ".css"
	defaultResourceExt   = ".bin"
	defaultWorkers       = 4
)

// cssURLPattern matches url(...) references in stylesheet text, quoted or
// not, capturing the reference itself.
var cssURLPattern = regexp.MustCompile(`url\(\s*['"]?([^'")]+?)['"]?\s*\)`)

// Localizer rewrites filing documents against a shared rate-limited
// client.
type Localizer struct {
	client             *edgar.Client
	useFolders         bool
	processImages      bool
	processStylesheets bool
	workers            int
}

// NewLocalizer builds a localizer from the download settings.
func NewLocalizer(client *edgar.Client, cfg config.DownloadConfig) *Localizer {
	workers := cfg.ResourceWorkers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Localizer{
		client:             client,
		useFolders:         cfg.UseFolders,
		processImages:      cfg.ProcessImages,
		processStylesheets: cfg.ProcessStylesheets,
		workers:            workers,
	}
}

// layout names the directories resources are written to and the reference
// prefixes the document sees, which are always forward-slash paths.
type layout struct {
	imagesDir string
	cssDir    string
	imagesRef string
	cssRef    string
}

// Localize decodes the document to UTF-8, pulls its resources local, and
// returns the rewritten bytes. It never fails outright; whatever could not
// be processed is returned in its best intermediate form.
func (l *Localizer) Localize(ctx context.Context, content []byte, contentType, docURL string, filing *models.FilingRecord) []byte {
	decoded := decodeToUTF8(content, contentType)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		log.Printf("localize: unparseable document %s: %v", docURL, err)
		return decoded
	}

	ensureCharsetMeta(doc)

	lay := l.layoutFor(filing)
	if l.processImages {
		l.localizeImages(ctx, doc, docURL, lay)
	}
	if l.processStylesheets {
		l.localizeStylesheets(ctx, doc, docURL, lay)
	}

	html, err := doc.Html()
	if err != nil {
		log.Printf("localize: cannot serialize document %s: %v", docURL, err)
		return decoded
	}
	return []byte(html)
}

// decodeToUTF8 decodes the body using its declared charset. Bad byte
// sequences become replacement runes rather than aborting the decode. A
// document that declares nothing and already scans as valid UTF-8 is kept
// as is; the detector's windows-1252 guess would mangle multibyte runes.
func decodeToUTF8(content []byte, contentType string) []byte {
	enc, name, certain := charset.DetermineEncoding(content, contentType)
	if name == "utf-8" {
		return content
	}
	if !certain && utf8.Valid(content) {
		return content
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), content)
	if err != nil {
		log.Printf("localize: decode as %s failed, keeping raw bytes: %v", name, err)
		return content
	}
	return decoded
}

// ensureCharsetMeta makes the document declare UTF-8 explicitly, since the
// bytes are UTF-8 from here on regardless of what the source declared.
func ensureCharsetMeta(doc *goquery.Document) {
	if meta := doc.Find("meta[charset]"); meta.Length() > 0 {
		meta.SetAttr("charset", "utf-8")
		return
	}
	head := doc.Find("head").First()
	if head.Length() == 0 {
		return
	}
	head.PrependHtml(`<meta charset="utf-8">`)
}

// layoutFor places resources beside the filing when its local path is
// known, under resources/ subdirectories or flat ones depending on
// configuration. Without a local path the layout is rooted at the working
// directory.
func (l *Localizer) layoutFor(filing *models.FilingRecord) layout {
	base := "."
	if filing != nil && filing.LocalPath != "" {
		base = filepath.Dir(filing.LocalPath)
	}
	if l.useFolders {
		return layout{
			imagesDir: filepath.Join(base, "resources", "images"),
			cssDir:    filepath.Join(base, "resources", "css"),
			imagesRef: "resources/images",
			cssRef:    "resources/css",
		}
	}
	return layout{
		imagesDir: filepath.Join(base, "images"),
		cssDir:    filepath.Join(base, "css"),
		imagesRef: "images",
		cssRef:    "css",
	}
}

// localizeImages downloads every img reference and rewrites it to the
// local copy. Names are assigned by discovery order before any fetch
// starts, so a failed download consumes its index and leaves a gap rather
// than renumbering the rest.
func (l *Localizer) localizeImages(ctx context.Context, doc *goquery.Document, docURL string, lay layout) {
	type imageRef struct {
		sel  *goquery.Selection
		src  string
		name string
	}

	var refs []imageRef
	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		src = strings.TrimSpace(src)
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}
		name := fmt.Sprintf("image_%03d%s", len(refs), extensionOf(src, defaultImageExt))
		refs = append(refs, imageRef{sel: sel, src: src, name: name})
	})
	if len(refs) == 0 {
		return
	}
	if err := os.MkdirAll(lay.imagesDir, 0755); err != nil {
		log.Printf("localize: create %s: %v", lay.imagesDir, err)
		return
	}

	bodies := make([][]byte, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			target := resolveRef(docURL, ref.src)
			if target == "" {
				return nil
			}
			data, err := l.client.Fetch(gctx, target)
			if err != nil {
				log.Printf("localize: image %s left remote: %v", ref.src, err)
				return nil
			}
			bodies[i] = data
			return nil
		})
	}
	_ = g.Wait()

	for i, ref := range refs {
		if bodies[i] == nil {
			continue
		}
		if err := os.WriteFile(filepath.Join(lay.imagesDir, ref.name), bodies[i], 0644); err != nil {
			log.Printf("localize: write image %s: %v", ref.name, err)
			continue
		}
		ref.sel.SetAttr("src", path.Join(lay.imagesRef, ref.name))
	}
}

// localizeStylesheets downloads every stylesheet link, localizes the
// resources the sheet itself references, writes the rewritten sheet, and
// points the link at it.
func (l *Localizer) localizeStylesheets(ctx context.Context, doc *goquery.Document, docURL string, lay layout) {
	type sheetRef struct {
		sel  *goquery.Selection
		href string
		name string
	}

	var refs []sheetRef
	doc.Find("link[href]").Each(func(_ int, sel *goquery.Selection) {
		rel, _ := sel.Attr("rel")
		if !strings.EqualFold(strings.TrimSpace(rel), "stylesheet") {
			return
		}
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "data:") {
			return
		}
		name := fmt.Sprintf("stylesheet_%03d%s", len(refs), extensionOf(href, defaultStylesheetExt))
		refs = append(refs, sheetRef{sel: sel, href: href, name: name})
	})
	if len(refs) == 0 {
		return
	}
	if err := os.MkdirAll(lay.cssDir, 0755); err != nil {
		log.Printf("localize: create %s: %v", lay.cssDir, err)
		return
	}

	// resource_<NNN> numbering spans the whole document so sheets sharing
	// the css directory cannot overwrite each other's resources.
	resourceSeq := 0
	for _, ref := range refs {
		target := resolveRef(docURL, ref.href)
		if target == "" {
			continue
		}
		body, err := l.client.Fetch(ctx, target)
		if err != nil {
			log.Printf("localize: stylesheet %s left remote: %v", ref.href, err)
			continue
		}

		css := l.localizeCSSResources(ctx, string(body), target, lay.cssDir, &resourceSeq)

		if err := os.WriteFile(filepath.Join(lay.cssDir, ref.name), []byte(css), 0644); err != nil {
			log.Printf("localize: write stylesheet %s: %v", ref.name, err)
			continue
		}
		ref.sel.SetAttr("href", path.Join(lay.cssRef, ref.name))
	}
}

// localizeCSSResources pulls url(...) targets into the css directory and
// rewrites the references to the bare local file names; the resources sit
// beside the stylesheet that uses them.
func (l *Localizer) localizeCSSResources(ctx context.Context, css, sheetURL, cssDir string, seq *int) string {
	matches := cssURLPattern.FindAllStringSubmatch(css, -1)
	if len(matches) == 0 {
		return css
	}

	type cssRef struct {
		ref  string
		name string
	}
	seen := make(map[string]bool)
	var refs []cssRef
	for _, m := range matches {
		ref := strings.TrimSpace(m[1])
		if ref == "" || strings.HasPrefix(ref, "data:") || seen[ref] {
			continue
		}
		seen[ref] = true
		refs = append(refs, cssRef{ref: ref, name: fmt.Sprintf("resource_%03d%s", *seq, extensionOf(ref, defaultResourceExt))})
		(*seq)++
	}
	if len(refs) == 0 {
		return css
	}

	bodies := make([][]byte, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			target := resolveRef(sheetURL, ref.ref)
			if target == "" {
				return nil
			}
			data, err := l.client.Fetch(gctx, target)
			if err != nil {
				log.Printf("localize: css resource %s left remote: %v", ref.ref, err)
				return nil
			}
			bodies[i] = data
			return nil
		})
	}
	_ = g.Wait()

	for i, ref := range refs {
		if bodies[i] == nil {
			continue
		}
		if err := os.WriteFile(filepath.Join(cssDir, ref.name), bodies[i], 0644); err != nil {
			log.Printf("localize: write css resource %s: %v", ref.name, err)
			continue
		}
		replacement := "url(" + ref.name + ")"
		css = strings.ReplaceAll(css, `url("`+ref.ref+`")`, replacement)
		css = strings.ReplaceAll(css, `url('`+ref.ref+`')`, replacement)
		css = strings.ReplaceAll(css, `url(`+ref.ref+`)`, replacement)
	}
	return css
}

// extensionOf reads the file extension out of a reference's URL path,
// falling back when there is none worth keeping.
func extensionOf(ref, fallback string) string {
	parsed, err := url.Parse(ref)
	if err != nil {
		return fallback
	}
	ext := path.Ext(parsed.Path)
	if ext == "" || len(ext) > 8 {
		return fallback
	}
	return ext
}

// resolveRef resolves a document-relative reference to an absolute URL,
// dropping anything that does not end up addressable over HTTP.
func resolveRef(baseURL, ref string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	target, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(target)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
