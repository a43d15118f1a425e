// Package page holds an HTML page in memory and exposes the pieces of it the
// subscription flow touches: the reader meta tag, trigger elements, the
// appended dialogs and the embedded clipboard payload.
package page

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/feedfollow/internal/clipboard"
	"github.com/jimezsa/feedfollow/internal/models"
	"github.com/jimezsa/feedfollow/internal/subscribe"
)

const (
	DefaultMetaName  = "feedfollow-readers"
	DefaultAttribute = "data-feedfollow"

	dialogClass    = "feedfollow-dialog"
	clipboardClass = "feedfollow-clipboard"
)

// Fetcher retrieves remote resources.
type Fetcher interface {
	Fetch(ctx context.Context, target string, accept string) ([]byte, error)
}

type Document struct {
	mu       sync.Mutex
	doc      *goquery.Document
	location *url.URL
}

// Blank returns an empty page at location.
func Blank(location *url.URL) *Document {
	doc, _ := Load(strings.NewReader("<!doctype html><html><head></head><body></body></html>"), location)
	return doc
}

func Load(r io.Reader, location *url.URL) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Document{doc: doc, location: location}, nil
}

// LoadFile reads a page from disk. A nil location defaults to the file URL.
func LoadFile(path string, location *url.URL) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if location == nil {
		location = fileURL(path)
	}
	return Load(bytes.NewReader(data), location)
}

// Fetch downloads target. A nil location defaults to target itself.
func Fetch(ctx context.Context, fetcher Fetcher, target string, location *url.URL) (*Document, error) {
	if location == nil {
		parsed, err := url.Parse(target)
		if err != nil {
			return nil, err
		}
		location = parsed
	}
	body, err := fetcher.Fetch(ctx, target, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	return Load(bytes.NewReader(body), location)
}

func (d *Document) Location() *url.URL {
	return d.location
}

// HTML serializes the current document.
func (d *Document) HTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Html()
}

func (d *Document) WriteFile(path string) error {
	out, err := d.HTML()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(out), 0o644)
}

// Triggers lists elements carrying attr. The attribute value is a whitespace
// separated feed list; anchors with an empty value use their href.
func (d *Document) Triggers(attr string) []models.Trigger {
	if attr == "" {
		attr = DefaultAttribute
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var triggers []models.Trigger
	d.doc.Find("[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
		value, _ := s.Attr(attr)
		feeds := strings.Fields(value)
		if len(feeds) == 0 {
			if href, ok := s.Attr("href"); ok && strings.TrimSpace(href) != "" {
				feeds = []string{strings.TrimSpace(href)}
			}
		}
		triggers = append(triggers, models.Trigger{
			Tag:   goquery.NodeName(s),
			Text:  cleanText(s.Text()),
			Feeds: feeds,
		})
	})
	return triggers
}

// Render appends a dialog element to the body. Every call appends a new one.
func (d *Document) Render(_ context.Context, dialog subscribe.Dialog) error {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="%s" role="dialog" aria-modal="true">`, dialogClass)
	fmt.Fprintf(&b, `<p class="feedfollow-title">%s</p>`, html.EscapeString(dialog.Title))
	fmt.Fprintf(&b, `<p class="feedfollow-message">%s</p>`, html.EscapeString(dialog.Message))
	for _, action := range dialog.Actions {
		fmt.Fprintf(&b, `<a class="feedfollow-action" data-action="%s" href="%s">%s</a>`,
			html.EscapeString(string(action.ID)),
			html.EscapeString(action.Target),
			html.EscapeString(action.Label),
		)
	}
	b.WriteString(`</div>`)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.body().AppendHtml(b.String())
	return nil
}

// Dialogs returns the dialogs currently present on the page.
func (d *Document) Dialogs() []subscribe.Dialog {
	d.mu.Lock()
	defer d.mu.Unlock()

	var dialogs []subscribe.Dialog
	d.doc.Find("div." + dialogClass).Each(func(_ int, s *goquery.Selection) {
		dialog := subscribe.Dialog{
			Title:   s.Find(".feedfollow-title").First().Text(),
			Message: s.Find(".feedfollow-message").First().Text(),
		}
		s.Find("a.feedfollow-action").Each(func(_ int, a *goquery.Selection) {
			id, _ := a.Attr("data-action")
			href, _ := a.Attr("href")
			dialog.Actions = append(dialog.Actions, subscribe.Action{
				ID:     subscribe.ActionID(id),
				Label:  a.Text(),
				Target: href,
			})
		})
		dialogs = append(dialogs, dialog)
	})
	return dialogs
}

// WriteClipboard embeds the payload in the page so client code can copy it.
func (d *Document) WriteClipboard(ctx context.Context, item clipboard.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch item.MIMEType {
	case clipboard.MIMEURIList, clipboard.MIMEPlainText:
	default:
		return clipboard.ErrUnsupportedType
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.body().AppendHtml(fmt.Sprintf(`<template class="%s" data-clipboard-type="%s">%s</template>`,
		clipboardClass,
		html.EscapeString(item.MIMEType),
		html.EscapeString(item.Data),
	))
	return nil
}

// ClipboardItems returns the payloads embedded by WriteClipboard.
func (d *Document) ClipboardItems() []clipboard.Item {
	d.mu.Lock()
	defer d.mu.Unlock()

	var items []clipboard.Item
	d.doc.Find("template." + clipboardClass).Each(func(_ int, s *goquery.Selection) {
		mimeType, _ := s.Attr("data-clipboard-type")
		items = append(items, clipboard.Item{MIMEType: mimeType, Data: s.Text()})
	})
	return items
}

func (d *Document) body() *goquery.Selection {
	return d.doc.Find("body").First()
}

func (d *Document) head() *goquery.Selection {
	return d.doc.Find("head").First()
}

func cleanText(value string) string {
	return strings.Join(strings.Fields(html.UnescapeString(value)), " ")
}

func fileURL(path string) *url.URL {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
}
