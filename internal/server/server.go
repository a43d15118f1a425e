// Package server renders subscription pages over HTTP. Each request is one
// page view: the device is taken from the request headers and the dialog is
// appended to a fresh page together with the clipboard payload.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jimezsa/feedfollow/internal/page"
	"github.com/jimezsa/feedfollow/internal/readers"
	"github.com/jimezsa/feedfollow/internal/subscribe"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/vfaronov/httpheader"
)

const platformHeader = "Sec-CH-UA-Platform"

type Options struct {
	Scheme   string
	Registry *readers.Registry
	Logger   zerolog.Logger
	// Titler optionally names dialogs after the feeds.
	Titler func(ctx context.Context, feeds []string) string
}

type Server struct {
	opts Options
}

func New(opts Options) *Server {
	if opts.Registry == nil {
		opts.Registry = readers.NewRegistry(readers.NewMemoryStore())
	}
	return &Server{opts: opts}
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /subscribe", s.handleSubscribe)
	mux.HandleFunc("GET /readers", s.handleGetReaders)
	mux.HandleFunc("POST /readers", s.handleSetReaders)
	mux.HandleFunc("GET /readers/recommended", s.handleRecommended)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	var h http.Handler = mux
	h = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(h)
	h = hlog.UserAgentHandler("user_agent")(h)
	h = hlog.RemoteAddrHandler("ip")(h)
	h = hlog.NewHandler(s.opts.Logger)(h)
	return h
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	s.opts.Logger.Info().Str("addr", listener.Addr().String()).Msg("server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.opts.Logger.Info().Msg("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	logger := hlog.FromRequest(r)
	feeds := feedsFromQuery(r.URL.Query())
	if len(feeds) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	location := pageLocation(r)
	doc := page.Blank(location)
	o := &subscribe.Orchestrator{
		Scheme: s.opts.Scheme,
		Env: subscribe.Environment{
			Location:  location,
			UserAgent: r.UserAgent(),
			Platform:  requestPlatform(r),
		},
		Registry:  s.opts.Registry,
		Clipboard: doc,
		Renderer:  doc,
		Logger:    *logger,
		Titler:    s.opts.Titler,
	}

	session, err := o.Subscribe(r.Context(), feeds...)
	if err != nil {
		logger.Error().Err(err).Msg("subscribe failed")
		http.Error(w, "subscribe failed", http.StatusInternalServerError)
		return
	}

	out, err := doc.HTML()
	if err != nil {
		logger.Error().Err(err).Msg("render page")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Feedfollow-State", string(session.State))
	w.Header().Set("X-Feedfollow-Session", session.ID)
	httpheader.SetLink(w.Header(), s.feedLinks(session))
	_, _ = w.Write([]byte(out))
}

// feedLinks advertises each feed of session as an alternate of the page.
func (s *Server) feedLinks(session *subscribe.Session) []httpheader.LinkElem {
	var links []httpheader.LinkElem
	for _, uri := range session.URIs {
		feed, err := subscribe.ParseFollowURI(s.opts.Scheme, uri)
		if err != nil {
			continue
		}
		target, err := url.Parse(feed)
		if err != nil {
			continue
		}
		links = append(links, httpheader.LinkElem{Rel: "alternate", Target: target})
	}
	return links
}

func (s *Server) handleGetReaders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Registry.RecommendedReaders())
}

func (s *Server) handleSetReaders(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	values := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		values[key] = strings.TrimSpace(r.PostForm.Get(key))
	}
	partial, err := readers.PartialFromMap(values)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.opts.Registry.SetRecommendedReaders(partial)
	hlog.FromRequest(r).Info().Int("platforms", len(partial)).Msg("readers updated")
	writeJSON(w, http.StatusOK, s.opts.Registry.RecommendedReaders())
}

func (s *Server) handleRecommended(w http.ResponseWriter, r *http.Request) {
	platform := requestPlatform(r)
	detected := readers.DetectPlatform(r.UserAgent(), platform)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Feedfollow-Platform", string(detected))
	fmt.Fprintln(w, s.opts.Registry.RecommendedReader(r.UserAgent(), platform))
}

// feedsFromQuery collects feed parameters; each value may hold several
// whitespace separated URLs.
func feedsFromQuery(query url.Values) []string {
	var feeds []string
	for _, value := range query["feed"] {
		feeds = append(feeds, strings.Fields(value)...)
	}
	return feeds
}

// pageLocation is the page the subscription was started from: the page
// parameter, the Referer, or the server root.
func pageLocation(r *http.Request) *url.URL {
	for _, raw := range []string{r.URL.Query().Get("page"), r.Referer()} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err == nil && u.IsAbs() {
			return u
		}
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return &url.URL{Scheme: scheme, Host: r.Host, Path: "/"}
}

// requestPlatform derives a navigator.platform style string from the query
// override or the platform client hint.
func requestPlatform(r *http.Request) string {
	if platform := r.URL.Query().Get("platform"); platform != "" {
		return platform
	}
	hint := strings.Trim(strings.TrimSpace(r.Header.Get(platformHeader)), `"`)
	switch strings.ToLower(hint) {
	case "windows":
		return "Win32"
	case "macos":
		return "MacIntel"
	case "ios":
		return "iPhone"
	}
	return hint
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(value)
}
