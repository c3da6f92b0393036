// Package camera relays MJPEG streams and single frames from the two
// networked cameras. Upstream requests carry the client request context,
// so a viewer disconnecting tears the upstream connection down with it.
package camera

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"
)

// ErrUpstream marks a camera that could not be reached or answered badly.
var ErrUpstream = errors.New("camera upstream unavailable")

// streams have no natural length, so the client gets no timeout; the
// context is the only cancellation path.
var streamClient = &http.Client{}

// Stream proxies the camera's multipart stream into w until either side
// goes away.
func Stream(ctx context.Context, w http.ResponseWriter, upstreamURL string) error {
	return relay(ctx, w, upstreamURL, "multipart/x-mixed-replace; boundary=frame")
}

// Snapshot proxies a single frame.
func Snapshot(ctx context.Context, w http.ResponseWriter, upstreamURL string) error {
	return relay(ctx, w, upstreamURL, "image/jpeg")
}

// Fetch pulls a single frame into memory, for callers that persist it
// instead of relaying it.
func Fetch(ctx context.Context, upstreamURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, upstreamURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, errors.Join(ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrUpstream
	}
	return io.ReadAll(resp.Body)
}

func relay(ctx context.Context, w http.ResponseWriter, upstreamURL, fallbackContentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, upstreamURL, nil)
	if err != nil {
		return err
	}

	resp, err := streamClient.Do(req)
	if err != nil {
		return errors.Join(ErrUpstream, err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = fallbackContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil && ctx.Err() == nil {
		logger.Debug.Printf("Camera relay from %s ended: %v", upstreamURL, err)
	}
	return nil
}
