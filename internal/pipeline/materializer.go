package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lulatiAI/ai-image-backend/pkg/zip"
)

// Fetcher retrieves the bytes behind a vendor URL. Shared between the
// moderation gate (which needs bytes to classify) and the materializer.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (data []byte, mime string, err error)
}

// Store is the transient download store the materializer persists bytes into
// for DeliverDownload mode.
type Store interface {
	Put(data []byte, mime string) (id string, expiresAt time.Time, err error)
}

// Delivery is the single payload handed back to the HTTP layer. Exactly one
// shape is populated, selected by Mode.
type Delivery struct {
	Mode DeliveryMode

	// DeliverURL
	URL  string
	URLs []string

	// DeliverInline
	Data []byte
	MIME string

	// DeliverDownload
	DownloadID   string
	DownloadPath string
	ExpiresAt    time.Time
}

// Materializer converts a succeeded task into the requested delivery shape.
type Materializer struct {
	fetcher Fetcher
	store   Store
}

func NewMaterializer(fetcher Fetcher, store Store) *Materializer {
	return &Materializer{fetcher: fetcher, store: store}
}

// Materialize builds the delivery payload. prefetched carries bytes already
// fetched for moderation, indexed like task.Outputs; entries may be nil.
func (m *Materializer) Materialize(ctx context.Context, req Request, task *Task, prefetched [][]byte) (*Delivery, error) {
	switch req.Delivery {
	case DeliverURL:
		return m.materializeURL(req, task, prefetched)
	case DeliverInline:
		data, mime, err := m.outputBytes(ctx, task.Outputs[0], firstOf(prefetched, 0))
		if err != nil {
			return nil, err
		}
		return &Delivery{Mode: DeliverInline, Data: data, MIME: mime}, nil
	case DeliverDownload:
		return m.materializeDownload(ctx, req, task, prefetched)
	default:
		return nil, Errf(KindInternal, "unknown delivery mode %q", req.Delivery)
	}
}

func (m *Materializer) materializeURL(req Request, task *Task, prefetched [][]byte) (*Delivery, error) {
	var urls []string
	for _, out := range task.Outputs {
		if out.URL != "" {
			urls = append(urls, out.URL)
		}
	}
	if len(urls) == 0 {
		// Byte-only vendors have nothing to reference remotely; the closest
		// honest answer is a local download handle.
		return m.materializeDownload(context.Background(), req, task, prefetched)
	}
	return &Delivery{Mode: DeliverURL, URL: urls[0], URLs: urls}, nil
}

func (m *Materializer) materializeDownload(ctx context.Context, req Request, task *Task, prefetched [][]byte) (*Delivery, error) {
	if m.store == nil {
		return nil, Errf(KindInternal, "download delivery requested but no store is configured")
	}
	type blob struct {
		data []byte
		mime string
	}
	blobs := make([]blob, 0, len(task.Outputs))
	for i, out := range task.Outputs {
		data, mime, err := m.outputBytes(ctx, out, firstOf(prefetched, i))
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, blob{data: data, mime: mime})
	}

	var data []byte
	var mime string
	if len(blobs) == 1 {
		data, mime = blobs[0].data, blobs[0].mime
	} else {
		assets := make([]zip.Asset, len(blobs))
		for i, b := range blobs {
			assets[i] = zip.Asset{Filename: fmt.Sprintf("%s-%d", task.ID, i+1), MIME: b.mime, Data: b.data}
		}
		data, mime = zip.ArchiveAssets(assets), "application/zip"
	}

	id, expires, err := m.store.Put(data, mime)
	if err != nil {
		return nil, WrapErr(KindInternal, err, "failed to persist download")
	}
	return &Delivery{
		Mode:         DeliverDownload,
		DownloadID:   id,
		DownloadPath: "/v1/downloads/" + id,
		MIME:         mime,
		ExpiresAt:    expires,
	}, nil
}

// outputBytes returns the asset's bytes, preferring in-memory data over a
// fresh fetch.
func (m *Materializer) outputBytes(ctx context.Context, out Output, prefetched []byte) ([]byte, string, error) {
	if len(prefetched) > 0 {
		return prefetched, mimeOrDefault(out.MIME), nil
	}
	if len(out.Data) > 0 {
		return out.Data, mimeOrDefault(out.MIME), nil
	}
	if out.URL == "" {
		return nil, "", Errf(KindUpstreamFetch, "output has neither bytes nor a url")
	}
	if m.fetcher == nil {
		return nil, "", Errf(KindInternal, "no fetcher configured")
	}
	data, mime, err := m.fetcher.Fetch(ctx, out.URL)
	if err != nil {
		return nil, "", err
	}
	if mime == "" {
		mime = mimeOrDefault(out.MIME)
	}
	return data, mime, nil
}

func mimeOrDefault(mime string) string {
	if mime != "" {
		return mime
	}
	return "application/octet-stream"
}

func firstOf(prefetched [][]byte, i int) []byte {
	if i < len(prefetched) {
		return prefetched[i]
	}
	return nil
}

// HTTPFetcher downloads generated assets over HTTP. Non-success statuses and
// transport errors surface as KindUpstreamFetch.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Scheme == "" {
		return nil, "", Errf(KindUpstreamFetch, "invalid asset url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, "", WrapErr(KindUpstreamFetch, err, "build asset request")
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", WrapErr(KindUpstreamFetch, err, "fetch asset")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, "", Errf(KindUpstreamFetch, "asset fetch returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", WrapErr(KindUpstreamFetch, err, "read asset body")
	}
	return data, resp.Header.Get("Content-Type"), nil
}

var _ Fetcher = (*HTTPFetcher)(nil)
