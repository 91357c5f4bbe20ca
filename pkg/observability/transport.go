package observability

import (
	"net/http"
	"time"
)

// Transport wraps base so that every request is reported to the registered
// [HTTPHooks]. A nil base uses [http.DefaultTransport].
func Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &hookedTransport{base: base}
}

type hookedTransport struct {
	base http.RoundTripper
}

func (t *hookedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	hooks := HTTP()
	ctx := req.Context()
	host, path := req.URL.Host, req.URL.Path

	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, err
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}
