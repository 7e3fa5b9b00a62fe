package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/02loveslollipop/climate-controller/services/controller/climate"
)

const (
	contentTypeHTML = "text/html"
	contentTypeJSON = "application/json"
)

// Cycler runs one control cycle per request.
type Cycler interface {
	Cycle(ctx context.Context, cmd climate.Override) (climate.Snapshot, error)
	Last() climate.Snapshot
}

// Response is a fully rendered reply, independent of the transport that sends it.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// WriteTo writes r as an HTTP/1.1 message.
func (r Response) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "HTTP/1.1 %d %s\r\n", r.Status, http.StatusText(r.Status))
	if err := r.Header.Write(&buf); err != nil {
		return 0, err
	}
	buf.WriteString("\r\n")
	buf.Write(r.Body)
	return buf.WriteTo(w)
}

// Responder turns a route into a response by running a control cycle.
type Responder struct {
	cycler    Cycler
	validFlag bool
	logger    *slog.Logger
}

// NewResponder builds a Responder. validFlag adds "valid" to JSON bodies.
func NewResponder(cycler Cycler, validFlag bool, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{cycler: cycler, validFlag: validFlag, logger: logger}
}

// Handle classifies a raw request line and responds to it.
func (r *Responder) Handle(ctx context.Context, requestLine string) Response {
	route := Classify(requestLine)
	if route == DefaultRoute {
		r.logger.Debug("unrecognized request, serving status page", "request", requestLine)
	}
	return r.Respond(ctx, route)
}

// Respond runs one cycle with the route's override and renders the snapshot.
// The status is always 200; if the cycle cannot run, the last known snapshot is rendered.
func (r *Responder) Respond(ctx context.Context, route Route) Response {
	snap, err := r.cycler.Cycle(ctx, route.Override)
	if err != nil {
		r.logger.Warn("control cycle unavailable, serving last snapshot", "path", route.Path, "err", err)
		snap = r.cycler.Last()
	}

	contentType := contentTypeHTML
	var body []byte
	if route.Body == BodyJSON {
		contentType = contentTypeJSON
		body, err = RenderJSON(snap, r.validFlag)
	} else {
		body, err = RenderHTML(snap)
	}
	if err != nil {
		r.logger.Error("render response", "path", route.Path, "err", err)
	}

	header := make(http.Header)
	header.Set("Content-Type", contentType)
	header.Set("Connection", "close")
	return Response{Status: http.StatusOK, Header: header, Body: body}
}
