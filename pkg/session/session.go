// Package session holds the single open PDF document and its pagination state.
package session

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pyhub-apps/mediakiosk/pkg/logging"
	"github.com/pyhub-apps/mediakiosk/pkg/pdf"
	"github.com/pyhub-apps/mediakiosk/pkg/raster"
)

// Frame is delivered to listeners after every render. Surface belongs to the
// session and stays valid until the next frame or Close; it is nil when the
// page could not be rendered.
type Frame struct {
	Surface   *raster.Raster
	PageIndex int
	PageCount int
	Label     string
	Title     string
}

// Listener is notified of render-complete frames, in subscription order.
type Listener func(Frame)

// Opener opens a document; pdf.Open by default.
type Opener func(path string) (pdf.Document, error)

// Renderer rasterizes one page; pdf.RenderPage by default.
type Renderer func(doc pdf.Document, index, width, height int) (*raster.Raster, error)

// Option configures a Session.
type Option func(*Session)

// WithOpener replaces the document opener.
func WithOpener(o Opener) Option {
	return func(s *Session) { s.open = o }
}

// WithRenderer replaces the page renderer.
func WithRenderer(r Renderer) Option {
	return func(s *Session) { s.render = r }
}

// Session is either Closed or Open on exactly one document. It is not safe for
// concurrent use; all calls come from the UI loop.
type Session struct {
	open      Opener
	render    Renderer
	listeners []Listener

	doc       *handle
	path      string
	title     string
	pageIndex int
	pageCount int
	width     int
	height    int
	surface   *raster.Raster
}

// New returns a closed session.
func New(opts ...Option) *Session {
	s := &Session{
		open:   pdf.Open,
		render: pdf.RenderPage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers l for every subsequent frame.
func (s *Session) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

// Open releases the current document, then opens path and renders its first
// page at width x height. On error the session is left Closed.
func (s *Session) Open(path string, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid page target %dx%d", width, height)
	}
	if err := s.Close(); err != nil {
		logging.Warn("session: closing previous document failed", zap.Error(err))
	}

	doc, err := s.open(path)
	if err != nil {
		return err
	}
	h := &handle{doc: doc}
	count := doc.PageCount()
	if count < 1 {
		h.release()
		return &pdf.DocumentOpenError{Path: path, Err: pdf.ErrNoPages}
	}

	s.doc = h
	s.path = path
	s.title = doc.GetMetadata().Title
	s.pageIndex = 0
	s.pageCount = count
	s.width = width
	s.height = height

	logging.Info("session: document opened",
		zap.String("path", path),
		zap.Int("pages", count))

	s.renderCurrent()
	return nil
}

// Close releases the document and the rendered surface. Closing a closed
// session is a no-op.
func (s *Session) Close() error {
	if s.doc == nil {
		return nil
	}
	err := s.doc.release()
	s.doc = nil
	s.releaseSurface()
	s.path = ""
	s.title = ""
	s.pageIndex = 0
	s.pageCount = 0
	return err
}

// IsOpen reports whether a document is open.
func (s *Session) IsOpen() bool { return s.doc != nil }

// NextPage advances one page and re-renders. At the last page, or when
// closed, it does nothing and returns false.
func (s *Session) NextPage() bool {
	if s.doc == nil || s.pageIndex >= s.pageCount-1 {
		return false
	}
	s.pageIndex++
	s.renderCurrent()
	return true
}

// PrevPage goes back one page and re-renders. At the first page, or when
// closed, it does nothing and returns false.
func (s *Session) PrevPage() bool {
	if s.doc == nil || s.pageIndex <= 0 {
		return false
	}
	s.pageIndex--
	s.renderCurrent()
	return true
}

// CurrentLabel returns "Page i / n" with a 1-based page number, or "" when closed.
func (s *Session) CurrentLabel() string {
	if s.doc == nil {
		return ""
	}
	return Label(s.pageIndex, s.pageCount)
}

// Label formats a 0-based page index for display.
func Label(pageIndex, pageCount int) string {
	return fmt.Sprintf("Page %d / %d", pageIndex+1, pageCount)
}

// PageIndex returns the 0-based current page.
func (s *Session) PageIndex() int { return s.pageIndex }

// PageCount returns the number of pages, 0 when closed.
func (s *Session) PageCount() int { return s.pageCount }

// Title returns the document title from its metadata.
func (s *Session) Title() string { return s.title }

// Path returns the open document's path.
func (s *Session) Path() string { return s.path }

// Surface returns the last rendered page, owned by the session.
func (s *Session) Surface() *raster.Raster { return s.surface }

// Frame returns the current state as a frame.
func (s *Session) Frame() Frame {
	return Frame{
		Surface:   s.surface,
		PageIndex: s.pageIndex,
		PageCount: s.pageCount,
		Label:     s.CurrentLabel(),
		Title:     s.title,
	}
}

// Thumbnail renders a preview of the document at path without touching the
// open session.
func (s *Session) Thumbnail(path string, width, height int) (*raster.Raster, error) {
	return pdf.RenderThumbnail(path, width, height)
}

// renderCurrent replaces the surface with the current page and notifies
// listeners. A failed render leaves a nil surface.
func (s *Session) renderCurrent() {
	s.releaseSurface()
	r, err := s.render(s.doc.doc, s.pageIndex, s.width, s.height)
	if err != nil {
		logging.Warn("session: page render failed",
			zap.String("path", s.path),
			zap.Int("page", s.pageIndex+1),
			zap.Error(err))
		r = nil
	}
	s.surface = r

	f := s.Frame()
	for _, l := range s.listeners {
		l(f)
	}
}

func (s *Session) releaseSurface() {
	if s.surface != nil {
		s.surface.Release()
		s.surface = nil
	}
}

// handle owns an open document and closes it exactly once.
type handle struct {
	doc    pdf.Document
	closed bool
}

var errHandleClosed = errors.New("document handle already released")

func (h *handle) release() error {
	if h.closed {
		return errHandleClosed
	}
	h.closed = true
	return h.doc.Close()
}
