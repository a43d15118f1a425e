package page

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jimezsa/feedfollow/internal/clipboard"
	"github.com/jimezsa/feedfollow/internal/readers"
	"github.com/jimezsa/feedfollow/internal/subscribe"
	"github.com/rs/zerolog"
)

const samplePage = `
<!doctype html>
<html>
<head>
  <title>Example Blog</title>
  <meta name="feedfollow-readers" content="android=https://play.example/reader linux=https://flathub.example/reader unknown=1">
</head>
<body>
  <a href="#" data-feedfollow="/feed.xml https://other.example/atom.xml">Subscribe  to   both</a>
  <button data-feedfollow="comments.xml">Comments</button>
  <a href="/podcast.xml" data-feedfollow>Podcast</a>
  <a href="/about">About</a>
</body>
</html>`

func mustPage(t *testing.T, raw string, location string) *Document {
	t.Helper()
	u, err := url.Parse(location)
	if err != nil {
		t.Fatalf("url.Parse() error = %v", err)
	}
	doc, err := Load(strings.NewReader(raw), u)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return doc
}

func TestMetaStoreReadsExistingEntry(t *testing.T) {
	doc := mustPage(t, samplePage, "https://blog.example/posts/1")
	registry := readers.NewRegistry(doc.MetaStore(""))

	got := registry.RecommendedReaders()
	want := readers.Readers{Android: "https://play.example/reader", Linux: "https://flathub.example/reader"}
	if got != want {
		t.Fatalf("RecommendedReaders() = %+v, want %+v", got, want)
	}
}

func TestMetaStoreCreatesAndRewritesEntry(t *testing.T) {
	doc := Blank(nil)
	store := doc.MetaStore("readers")
	if _, ok := store.Lookup(); ok {
		t.Fatalf("expected no meta entry on blank page")
	}

	registry := readers.NewRegistry(store)
	registry.SetRecommendedReaders(readers.Partial{readers.PlatformIOS: "X"})
	registry.SetRecommendedReaders(readers.Partial{readers.PlatformMacOS: "https://mac.example/?a=1&b=2"})

	out, err := doc.HTML()
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	if strings.Count(out, `name="readers"`) != 1 {
		t.Fatalf("expected exactly one meta tag, got:\n%s", out)
	}

	want := readers.Readers{IOS: "X", MacOS: "https://mac.example/?a=1&b=2"}
	if got := registry.RecommendedReaders(); got != want {
		t.Fatalf("RecommendedReaders() = %+v, want %+v", got, want)
	}

	reloaded := mustPage(t, out, "https://blog.example/")
	if got := readers.NewRegistry(reloaded.MetaStore("readers")).RecommendedReaders(); got != want {
		t.Fatalf("reloaded RecommendedReaders() = %+v, want %+v", got, want)
	}
}

func TestTriggers(t *testing.T) {
	doc := mustPage(t, samplePage, "https://blog.example/posts/1")

	triggers := doc.Triggers("")
	if len(triggers) != 3 {
		t.Fatalf("expected 3 triggers, got %d: %+v", len(triggers), triggers)
	}
	if triggers[0].Tag != "a" || triggers[0].Text != "Subscribe to both" || len(triggers[0].Feeds) != 2 {
		t.Fatalf("unexpected first trigger %+v", triggers[0])
	}
	if triggers[1].Tag != "button" || triggers[1].Feeds[0] != "comments.xml" {
		t.Fatalf("unexpected second trigger %+v", triggers[1])
	}
	if len(triggers[2].Feeds) != 1 || triggers[2].Feeds[0] != "/podcast.xml" {
		t.Fatalf("expected href fallback, got %+v", triggers[2])
	}
}

func TestSubscribeOnPage(t *testing.T) {
	doc := mustPage(t, samplePage, "https://blog.example/posts/1")
	o := &subscribe.Orchestrator{
		Env: subscribe.Environment{
			Location:  doc.Location(),
			UserAgent: "Mozilla/5.0 (Linux; Android 14)",
			Platform:  "Linux armv8l",
		},
		Registry:  readers.NewRegistry(doc.MetaStore("")),
		Clipboard: doc,
		Renderer:  doc,
		Logger:    zerolog.Nop(),
	}

	if len(doc.Dialogs()) != 0 {
		t.Fatalf("expected no dialogs before subscribe")
	}
	if _, err := o.Subscribe(context.Background()); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if len(doc.Dialogs()) != 0 || len(doc.ClipboardItems()) != 0 {
		t.Fatalf("empty subscribe should not touch the page")
	}

	feeds := doc.Triggers("")[0].Feeds
	if _, err := o.Subscribe(context.Background(), feeds...); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	dialogs := doc.Dialogs()
	if len(dialogs) != 1 {
		t.Fatalf("expected one dialog, got %d", len(dialogs))
	}
	yes, _ := dialogs[0].Action(subscribe.ActionYes)
	no, _ := dialogs[0].Action(subscribe.ActionNo)
	if yes.Target != "feed://follow?https://blog.example/feed.xml" {
		t.Fatalf("yes target = %q", yes.Target)
	}
	if no.Target != "https://play.example/reader" {
		t.Fatalf("no target = %q", no.Target)
	}

	items := doc.ClipboardItems()
	want := "feed://follow?https://blog.example/feed.xml\nfeed://follow?https://other.example/atom.xml"
	if len(items) != 1 || items[0].MIMEType != clipboard.MIMEURIList || items[0].Data != want {
		t.Fatalf("clipboard items = %+v", items)
	}

	if _, err := o.Subscribe(context.Background(), "/x.xml"); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if len(doc.Dialogs()) != 2 {
		t.Fatalf("each subscribe should append its own dialog")
	}
}

func TestWriteClipboardRejectsUnknownType(t *testing.T) {
	doc := Blank(nil)
	err := doc.WriteClipboard(context.Background(), clipboard.Item{MIMEType: "image/png"})
	if !errors.Is(err, clipboard.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

type fakeFetcher struct {
	body []byte
	err  error
	got  string
}

func (f *fakeFetcher) Fetch(_ context.Context, target string, _ string) ([]byte, error) {
	f.got = target
	return f.body, f.err
}

func TestFetch(t *testing.T) {
	fetcher := &fakeFetcher{body: []byte(samplePage)}
	doc, err := Fetch(context.Background(), fetcher, "https://blog.example/posts/1", nil)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if fetcher.got != "https://blog.example/posts/1" {
		t.Fatalf("fetched %q", fetcher.got)
	}
	if doc.Location().Host != "blog.example" {
		t.Fatalf("Location() = %v", doc.Location())
	}

	boom := errors.New("boom")
	if _, err := Fetch(context.Background(), &fakeFetcher{err: boom}, "https://blog.example/", nil); !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestLoadFileWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")

	doc := Blank(nil)
	doc.MetaStore("").Save("ios=X")
	if err := doc.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loaded, err := LoadFile(path, nil)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.Location().Scheme != "file" {
		t.Fatalf("expected file location, got %v", loaded.Location())
	}
	if value, ok := loaded.MetaStore("").Lookup(); !ok || value != "ios=X" {
		t.Fatalf("Lookup() = %q, %v", value, ok)
	}
}
