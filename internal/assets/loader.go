// Package assets fetches and decodes STL meshes from local paths and URLs.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"dropview/internal/geometry"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/hschendel/stl"
	"golang.org/x/sync/singleflight"
)

// ErrUnsupportedScheme is returned for URLs that are neither a path, file:// nor http(s)://
var ErrUnsupportedScheme = errors.New("unsupported asset url scheme")

// HTTPError is returned when the asset server answers with an error status
type HTTPError struct {
	StatusCode int
	Status     string
}

func (r HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %s", r.Status)
}

// STLLoader loads STL meshes. Parsed meshes are cached by URL and every caller
// gets its own copy. Safe for concurrent use.
type STLLoader struct {
	client *retryablehttp.Client
	log    *slog.Logger

	sfg   *singleflight.Group
	mu    sync.Mutex
	cache map[string]*geometry.Geometry
}

// NewSTLLoader returns a loader fetching remote assets through client.
// A nil client gets a default retrying client logging to logger.
func NewSTLLoader(client *retryablehttp.Client, logger *slog.Logger) *STLLoader {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = retryablehttp.NewClient()
		client.Logger = logger
		client.RetryMax = 3
	}
	return &STLLoader{
		client: client,
		log:    logger,
		sfg:    new(singleflight.Group),
		cache:  make(map[string]*geometry.Geometry),
	}
}

// Load returns the mesh at rawURL. Concurrent loads of the same URL share one
// fetch and decode.
func (l *STLLoader) Load(ctx context.Context, rawURL string) (*geometry.Geometry, error) {
	l.mu.Lock()
	g, found := l.cache[rawURL]
	l.mu.Unlock()
	if !found {
		x, err, _ := l.sfg.Do(rawURL, func() (any, error) {
			return l.load(ctx, rawURL)
		})
		if err != nil {
			return nil, err
		}
		g = x.(*geometry.Geometry)
	}
	return g.Clone(), nil
}

func (l *STLLoader) load(ctx context.Context, rawURL string) (*geometry.Geometry, error) {
	start := time.Now()
	data, err := l.read(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	g, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rawURL, err)
	}
	l.log.Info("asset loaded",
		"url", rawURL,
		"size", humanize.Bytes(uint64(len(data))),
		"triangles", humanize.Comma(int64(g.VertexCount()/3)),
		"duration", time.Since(start),
	)

	l.mu.Lock()
	l.cache[rawURL] = g
	l.mu.Unlock()
	return g, nil
}

func (l *STLLoader) read(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse asset url: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		return l.fetch(ctx, rawURL)
	case "file":
		return readFile(u.Path)
	case "":
		return readFile(rawURL)
	default:
		return nil, fmt.Errorf("%s: %w", rawURL, ErrUnsupportedScheme)
	}
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read asset file: %w", err)
	}
	return data, nil
}

func (l *STLLoader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	r, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer r.Body.Close()
	if r.StatusCode >= 400 {
		return nil, HTTPError{StatusCode: r.StatusCode, Status: r.Status}
	}
	return io.ReadAll(r.Body)
}

// Decode parses ASCII or binary STL data. Facets without a stored normal get
// one computed from their winding.
func Decode(data []byte) (*geometry.Geometry, error) {
	solid, err := stl.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not decode stl: %w", err)
	}
	g := &geometry.Geometry{
		Positions: make([]float32, 0, len(solid.Triangles)*9),
		Normals:   make([]float32, 0, len(solid.Triangles)*9),
	}
	missing := false
	for _, t := range solid.Triangles {
		if t.Normal == (stl.Vec3{}) {
			missing = true
		}
		for _, v := range t.Vertices {
			g.Positions = append(g.Positions, v[0], v[1], v[2])
			g.Normals = append(g.Normals, t.Normal[0], t.Normal[1], t.Normal[2])
		}
	}
	if missing {
		g.ComputeNormals()
	}
	return g, nil
}
