package subscribe

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jimezsa/feedfollow/internal/clipboard"
	"github.com/jimezsa/feedfollow/internal/readers"
	"github.com/rs/zerolog"
)

type recordingClipboard struct {
	mu    sync.Mutex
	fail  bool
	items []clipboard.Item
}

func (r *recordingClipboard) WriteClipboard(_ context.Context, item clipboard.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("permission denied")
	}
	r.items = append(r.items, item)
	return nil
}

type recordingRenderer struct {
	mu      sync.Mutex
	dialogs []Dialog
}

func (r *recordingRenderer) Render(_ context.Context, dialog Dialog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dialogs = append(r.dialogs, dialog)
	return nil
}

func newOrchestrator(t *testing.T, cb clipboard.Writer, renderer Renderer) *Orchestrator {
	t.Helper()
	registry := readers.NewRegistry(readers.NewMemoryStore())
	registry.SetRecommendedReaders(readers.Partial{
		readers.PlatformAndroid: "https://play.example/reader",
		readers.PlatformLinux:   "https://flathub.example/reader",
	})
	return &Orchestrator{
		Env: Environment{
			Location:  mustURL(t, "https://blog.example/index.html"),
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64)",
			Platform:  "Linux x86_64",
		},
		Registry:  registry,
		Clipboard: cb,
		Renderer:  renderer,
		Logger:    zerolog.Nop(),
	}
}

func TestSubscribeEmptyIsNoop(t *testing.T) {
	cb := &recordingClipboard{}
	renderer := &recordingRenderer{}
	o := newOrchestrator(t, cb, renderer)

	session, err := o.Subscribe(context.Background())
	if err != nil || session != nil {
		t.Fatalf("Subscribe() = %v, %v; want nil, nil", session, err)
	}
	if len(cb.items) != 0 || len(renderer.dialogs) != 0 {
		t.Fatalf("expected no side effects, got %d writes and %d dialogs", len(cb.items), len(renderer.dialogs))
	}
}

func TestSubscribeRendersOneDialogWithPayload(t *testing.T) {
	cb := &recordingClipboard{}
	renderer := &recordingRenderer{}
	o := newOrchestrator(t, cb, renderer)

	session, err := o.Subscribe(context.Background(), "http://a.com/f", "http://b.com/f")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if session.State != StateDialogShown {
		t.Fatalf("State = %s, want %s", session.State, StateDialogShown)
	}
	if len(renderer.dialogs) != 1 {
		t.Fatalf("expected one dialog, got %d", len(renderer.dialogs))
	}

	wantPayload := "feed://follow?http://a.com/f\nfeed://follow?http://b.com/f"
	if len(cb.items) != 1 || cb.items[0].Data != wantPayload {
		t.Fatalf("clipboard items = %+v, want payload %q", cb.items, wantPayload)
	}
	if cb.items[0].MIMEType != clipboard.MIMEURIList || session.ClipboardFormat != clipboard.MIMEURIList {
		t.Fatalf("expected uri-list format, got %q", session.ClipboardFormat)
	}

	dialog := renderer.dialogs[0]
	yes, _ := dialog.Action(ActionYes)
	no, _ := dialog.Action(ActionNo)
	if yes.Target != "feed://follow?http://a.com/f" {
		t.Fatalf("yes target = %q, want first uri", yes.Target)
	}
	if no.Target != "https://flathub.example/reader" {
		t.Fatalf("no target = %q, want linux reader", no.Target)
	}
}

func TestSubscribeYesTargetIsFirstURIForAnyCount(t *testing.T) {
	feeds := []string{"/one.xml", "/two.xml", "/three.xml", "/four.xml"}
	for n := 1; n <= len(feeds); n++ {
		o := newOrchestrator(t, &recordingClipboard{}, &recordingRenderer{})
		session, err := o.Subscribe(context.Background(), feeds[:n]...)
		if err != nil {
			t.Fatalf("Subscribe(%d feeds) error = %v", n, err)
		}
		target, err := session.Choose(ActionYes)
		if err != nil {
			t.Fatalf("Choose(yes) error = %v", err)
		}
		if target != "feed://follow?https://blog.example/one.xml" || target != session.URIs[0] {
			t.Fatalf("yes target with %d feeds = %q", n, target)
		}
		if session.State != StateAccepted {
			t.Fatalf("State = %s, want accepted", session.State)
		}
	}
}

func TestSubscribeClipboardFailureStillShowsDialog(t *testing.T) {
	renderer := &recordingRenderer{}
	o := newOrchestrator(t, &recordingClipboard{fail: true}, renderer)

	session, err := o.Subscribe(context.Background(), "http://a.com/f")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if session.State != StateDialogShown || session.ClipboardFormat != "" {
		t.Fatalf("unexpected session %+v", session)
	}
	if len(renderer.dialogs) != 1 {
		t.Fatalf("expected dialog after clipboard failure")
	}
}

func TestSubscribeDeclineUsesPlatformReader(t *testing.T) {
	o := newOrchestrator(t, &recordingClipboard{}, &recordingRenderer{})
	o.Env.UserAgent = "Mozilla/5.0 (Linux; Android 14)"

	session, err := o.Subscribe(context.Background(), "http://a.com/f")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	target, err := session.Choose(ActionNo)
	if err != nil {
		t.Fatalf("Choose(no) error = %v", err)
	}
	if target != "https://play.example/reader" || session.State != StateDeclined {
		t.Fatalf("decline target = %q state = %s", target, session.State)
	}
	if _, err := session.Choose(ActionYes); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed on second choice, got %v", err)
	}
}

func TestSubscribeRendererError(t *testing.T) {
	boom := errors.New("boom")
	o := newOrchestrator(t, &recordingClipboard{}, RendererFunc(func(context.Context, Dialog) error { return boom }))

	session, err := o.Subscribe(context.Background(), "http://a.com/f")
	if !errors.Is(err, boom) {
		t.Fatalf("expected renderer error, got %v", err)
	}
	if session == nil || session.State != StateClipboardAttempted {
		t.Fatalf("unexpected session %+v", session)
	}
	if _, err := session.Choose(ActionYes); !errors.Is(err, ErrNotShown) {
		t.Fatalf("expected ErrNotShown, got %v", err)
	}
}

func TestSubscribeConcurrentInvocationsEachRender(t *testing.T) {
	renderer := &recordingRenderer{}
	o := newOrchestrator(t, &recordingClipboard{}, renderer)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := o.Subscribe(context.Background(), "http://a.com/f"); err != nil {
				t.Errorf("Subscribe() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if len(renderer.dialogs) != 5 {
		t.Fatalf("expected 5 dialogs, got %d", len(renderer.dialogs))
	}
}

func TestSubscribeTitler(t *testing.T) {
	renderer := &recordingRenderer{}
	o := newOrchestrator(t, &recordingClipboard{}, renderer)
	o.Titler = func(_ context.Context, feeds []string) string { return "Example Blog" }

	if _, err := o.Subscribe(context.Background(), "http://a.com/f"); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if renderer.dialogs[0].Title != "Example Blog" {
		t.Fatalf("Title = %q", renderer.dialogs[0].Title)
	}
}

func TestParseActionID(t *testing.T) {
	for input, want := range map[string]ActionID{"y": ActionYes, " YES ": ActionYes, "n": ActionNo, "No": ActionNo} {
		got, err := ParseActionID(input)
		if err != nil || got != want {
			t.Fatalf("ParseActionID(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := ParseActionID("maybe"); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestSubscribeAssignsDistinctSessionIDs(t *testing.T) {
	o := newOrchestrator(t, &recordingClipboard{}, &recordingRenderer{})
	first, err := o.Subscribe(context.Background(), "/feed.xml")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	second, err := o.Subscribe(context.Background(), "/feed.xml")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("session ids = %q, %q; want distinct non-empty", first.ID, second.ID)
	}
}

func TestSubscribeMalformedFeedStillShowsDialog(t *testing.T) {
	for _, feed := range []string{"http://a.com/100%/feed.xml", "feed%.xml"} {
		cb := &recordingClipboard{}
		renderer := &recordingRenderer{}
		o := newOrchestrator(t, cb, renderer)
		session, err := o.Subscribe(context.Background(), feed)
		if err != nil {
			t.Fatalf("Subscribe(%q) error = %v", feed, err)
		}
		if session.State != StateDialogShown || len(renderer.dialogs) != 1 {
			t.Fatalf("Subscribe(%q) state = %s dialogs = %d", feed, session.State, len(renderer.dialogs))
		}
		if len(cb.items) != 1 || cb.items[0].Data != session.URIs[0] {
			t.Fatalf("Subscribe(%q) clipboard = %+v", feed, cb.items)
		}
	}
}

func TestSubscribeRelativeFeedWithoutLocation(t *testing.T) {
	renderer := &recordingRenderer{}
	o := newOrchestrator(t, &recordingClipboard{}, renderer)
	o.Env.Location = nil
	session, err := o.Subscribe(context.Background(), "/feed.xml")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if session.URIs[0] != "feed://follow?/feed.xml" || len(renderer.dialogs) != 1 {
		t.Fatalf("uris = %v dialogs = %d", session.URIs, len(renderer.dialogs))
	}
}
