package subscribe

import (
	"context"
	"net/url"

	"github.com/google/uuid"
	"github.com/jimezsa/feedfollow/internal/clipboard"
	"github.com/jimezsa/feedfollow/internal/readers"
	"github.com/rs/zerolog"
)

// Renderer presents a dialog. Each call shows a new dialog.
type Renderer interface {
	Render(ctx context.Context, dialog Dialog) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, dialog Dialog) error

func (f RendererFunc) Render(ctx context.Context, dialog Dialog) error {
	return f(ctx, dialog)
}

// Environment describes the page and device a subscription runs in.
type Environment struct {
	Location  *url.URL
	UserAgent string
	Platform  string
}

type Orchestrator struct {
	Scheme    string
	Env       Environment
	Registry  *readers.Registry
	Clipboard clipboard.Writer
	Renderer  Renderer
	Logger    zerolog.Logger
	// Titler optionally names the dialog after the resolved feed URLs.
	Titler func(ctx context.Context, feeds []string) string
}

// Subscribe runs one handoff. With no feeds it does nothing and returns a nil
// session. Clipboard failures never surface and malformed feed URLs are
// repaired; the only error is one returned by the renderer.
func (o *Orchestrator) Subscribe(ctx context.Context, feeds ...string) (*Session, error) {
	if len(feeds) == 0 {
		return nil, nil
	}

	resolved := ResolveFeeds(o.Env.Location, feeds)
	uris := FollowURIs(o.Scheme, resolved)
	session := &Session{ID: uuid.NewString(), URIs: uris, State: StateURIsBuilt}
	logger := o.Logger.With().Str("session", session.ID).Int("feeds", len(uris)).Logger()
	logger.Debug().Strs("uris", uris).Msg("follow uris built")

	result := clipboard.Transfer(ctx, o.Clipboard, session.Payload(), logger)
	session.ClipboardFormat = result.Format
	session.State = StateClipboardAttempted

	if o.Registry != nil {
		session.Download = o.Registry.RecommendedReader(o.Env.UserAgent, o.Env.Platform)
	}
	if o.Titler != nil {
		session.Title = o.Titler(ctx, resolved)
	}

	if o.Renderer != nil {
		if err := o.Renderer.Render(ctx, session.Dialog()); err != nil {
			return session, err
		}
	}
	session.State = StateDialogShown
	logger.Debug().
		Str("clipboard", result.Format).
		Str("download", session.Download).
		Msg("subscribe dialog shown")
	return session, nil
}
