package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/01moynul/taptosell-storefront/internal/models"
	json "github.com/goccy/go-json"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// ErrNoCandidateSucceeded is returned when no candidate location produced a
// parseable data set. The accompanying collection is empty, not nil.
var ErrNoCandidateSucceeded = errors.New("catalog: no candidate location returned product data")

// maxPayload caps a single data file read.
const maxPayload = 32 << 20

// Loader fetches the product data set from an ordered list of candidate
// locations, first success wins.
type Loader struct {
	Candidates []string
	BaseURL    *url.URL
	Files      fs.FS
	Client     *http.Client
	Log        *zap.Logger
}

// NewLoader builds a loader. baseURL may be empty, in which case relative
// candidates are read from files.
func NewLoader(candidates []string, baseURL string, files fs.FS, client *http.Client, log *zap.Logger) (*Loader, error) {
	l := &Loader{
		Candidates: candidates,
		Files:      files,
		Client:     client,
		Log:        log,
	}
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("catalog: invalid base url %q: %w", baseURL, err)
		}
		l.BaseURL = u
	}
	if l.Client == nil {
		l.Client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	if l.Log == nil {
		l.Log = zap.NewNop()
	}
	return l, nil
}

// Result is one completed load.
type Result struct {
	Products []models.Product
	Index    map[string]models.Product
	Source   string
}

// candidateList puts preferred first and drops blanks and repeats.
func (l *Loader) candidateList(preferred string) []string {
	seen := make(map[string]struct{}, len(l.Candidates)+1)
	out := make([]string, 0, len(l.Candidates)+1)
	for _, c := range append([]string{preferred}, l.Candidates...) {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Load tries each candidate once. A failing candidate is logged and skipped;
// it is not retried.
func (l *Loader) Load(ctx context.Context, preferred string) (*Result, error) {
	candidates := l.candidateList(preferred)
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return emptyResult(), err
		}
		body, err := l.fetch(ctx, c)
		if err != nil {
			l.Log.Warn("product data candidate failed", zap.String("candidate", c), zap.Error(err))
			continue
		}
		entries, err := extractEntries(body)
		if err != nil {
			l.Log.Warn("product data candidate is not valid JSON", zap.String("candidate", c), zap.Error(err))
			continue
		}
		products := normalize(entries)
		index := buildIndex(products)
		l.Log.Info("product data loaded", zap.String("source", c), zap.Int("products", len(products)))
		return &Result{Products: products, Index: index, Source: c}, nil
	}

	l.Log.Error("failed to fetch product data from any candidate location", zap.Strings("candidates", candidates))
	return emptyResult(), ErrNoCandidateSucceeded
}

func emptyResult() *Result {
	return &Result{Products: []models.Product{}, Index: map[string]models.Product{}}
}

func (l *Loader) fetch(ctx context.Context, candidate string) ([]byte, error) {
	if u, ok := l.resolveURL(candidate); ok {
		return l.fetchHTTP(ctx, u)
	}
	return l.readFile(candidate)
}

func (l *Loader) resolveURL(candidate string) (string, bool) {
	if strings.HasPrefix(candidate, "http://") || strings.HasPrefix(candidate, "https://") {
		return candidate, true
	}
	if l.BaseURL == nil {
		return "", false
	}
	ref, err := url.Parse(candidate)
	if err != nil {
		return "", false
	}
	return l.BaseURL.ResolveReference(ref).String(), true
}

func (l *Loader) fetchHTTP(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Accept", "application/json")

	res, err := l.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", res.StatusCode)
	}
	return io.ReadAll(io.LimitReader(res.Body, maxPayload))
}

func (l *Loader) readFile(candidate string) ([]byte, error) {
	if l.Files == nil {
		return nil, errors.New("no data directory configured")
	}
	name := strings.TrimPrefix(path.Clean("/"+candidate), "/")
	return fs.ReadFile(l.Files, name)
}

// extractEntries accepts a root array or an object carrying the array under
// "data" or "products". An object without either parses to no entries; any
// other root is an error so the next candidate is tried.
func extractEntries(body []byte) ([]json.RawMessage, error) {
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, err
	}
	switch root.(type) {
	case nil:
		return nil, errors.New("empty payload")
	case []any, map[string]any:
	default:
		return nil, fmt.Errorf("payload root is %T, want array or object", root)
	}

	var list []json.RawMessage
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	for _, field := range []string{"data", "products"} {
		raw, ok := wrapped[field]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &list); err == nil && list != nil {
			return list, nil
		}
	}
	return []json.RawMessage{}, nil
}
