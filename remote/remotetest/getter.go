// Package remotetest provides an in-memory remote.Getter for tests.
package remotetest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing/iotest"

	"github.com/pkg/errors"
	"github.com/vispana/apppackage-client/remote"
)

// Getter serves directory listings and file bodies from memory and records every requested URL.
type Getter struct {
	Listings map[string][]string // url -> JSON array of child references
	Files    map[string][]byte   // url -> raw body
	Errors   map[string]error    // url -> forced failure
	Panics   map[string]bool     // url -> panic when requested
	Breaks   map[string]int      // url -> bytes served by Open before the body fails

	mu    sync.Mutex
	calls []string
}

var _ remote.Getter = (*Getter)(nil)

// NewGetter creates an empty in-memory getter.
func NewGetter() *Getter {
	return &Getter{
		Listings: make(map[string][]string),
		Files:    make(map[string][]byte),
		Errors:   make(map[string]error),
		Panics:   make(map[string]bool),
		Breaks:   make(map[string]int),
	}
}

// Get implements remote.Getter.
func (g *Getter) Get(ctx context.Context, url string) ([]byte, error) {
	g.record(url)

	if g.Panics[url] {
		panic("remotetest: forced panic for " + url)
	}

	if err, ok := g.Errors[url]; ok {
		return nil, err
	}

	if entries, ok := g.Listings[url]; ok {
		return json.Marshal(entries)
	}

	if data, ok := g.Files[url]; ok {
		return data, nil
	}

	return nil, &remote.StatusError{URL: url, StatusCode: http.StatusNotFound, Status: "404 Not Found"}
}

// ErrBroken is returned by a body listed in Breaks once its bytes are served.
var ErrBroken = errors.New("remotetest: connection reset")

// Open implements remote.Getter.
func (g *Getter) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	data, err := g.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	if n, ok := g.Breaks[url]; ok && n < len(data) {
		return io.NopCloser(io.MultiReader(bytes.NewReader(data[:n]), iotest.ErrReader(ErrBroken))), nil
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Calls returns the requested URLs in order.
func (g *Getter) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

// Called reports whether url was requested at least once.
func (g *Getter) Called(url string) bool {
	for _, call := range g.Calls() {
		if call == url {
			return true
		}
	}
	return false
}

func (g *Getter) record(url string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, url)
}
