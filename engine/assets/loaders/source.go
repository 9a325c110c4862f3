package loaders

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// HTTPClient is used for http and https locators.
var HTTPClient = &http.Client{Timeout: 30 * time.Second}

func isRemote(locator string) bool {
	return strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://")
}

// localPath resolves a file locator to a path on disk.
func localPath(locator string) string {
	return filepath.FromSlash(strings.TrimPrefix(locator, "file://"))
}

// open returns the contents behind locator. Remote locators honour ctx.
func open(ctx context.Context, locator string) (io.ReadCloser, error) {
	if !isRemote(locator) {
		return os.Open(localPath(locator))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, err
	}
	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: %s", locator, resp.Status)
	}
	return resp.Body, nil
}

// readAll buffers the whole resource, for decoders that need to seek.
func readAll(ctx context.Context, locator string) (*bytes.Reader, error) {
	rc, err := open(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
