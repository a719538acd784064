package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"
)

const checkoutScriptURL = "https://checkout.razorpay.com/v1/checkout.js"

// ScriptLoader lazily fetches the third-party checkout script. The first
// successful load is cached; concurrent callers coalesce onto one fetch
// instead of hitting the CDN once each. A failed load is not cached, so the
// next attempt retries.
type ScriptLoader struct {
	url        string
	httpClient *http.Client

	mu     sync.RWMutex
	script []byte
	sfg    singleflight.Group
}

func NewScriptLoader(url string) *ScriptLoader {
	if url == "" {
		url = checkoutScriptURL
	}
	return &ScriptLoader{
		url:        url,
		httpClient: &http.Client{},
	}
}

// Load returns the checkout script, fetching it on first use.
func (l *ScriptLoader) Load(ctx context.Context) ([]byte, error) {
	l.mu.RLock()
	cached := l.script
	l.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := l.sfg.Do("checkout-script", func() (interface{}, error) {
		// Re-check under the group: another caller may have finished already.
		l.mu.RLock()
		loaded := l.script
		l.mu.RUnlock()
		if loaded != nil {
			return loaded, nil
		}

		script, fetchErr := l.fetch(ctx)
		if fetchErr != nil {
			return nil, fetchErr
		}

		l.mu.Lock()
		l.script = script
		l.mu.Unlock()
		return script, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]byte), nil
}

// Loaded reports whether the script is already cached.
func (l *ScriptLoader) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.script != nil
}

func (l *ScriptLoader) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment SDK: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to load payment SDK: status %d", resp.StatusCode)
	}

	script, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read payment SDK: %w", err)
	}

	return script, nil
}
