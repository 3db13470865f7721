// Package httpclient builds the HTTP clients used against the service's
// sidecar backends: the embedding and generation server, the sparse encoder,
// the document converters, and the metadata catalog.
package httpclient

import (
	"net/http"
	"time"
)

// All sidecars are a fixed, small set of long-lived HTTP/1.1 services, so a
// single shared transport keeps warm connections to each of them instead of
// redialing per request. Conversion responses can take minutes to arrive;
// no header timeout is set here, the per-client Timeout is the only
// deadline.
var sharedTransport = &http.Transport{
	MaxIdleConns:        32,
	MaxIdleConnsPerHost: 8,
	IdleConnTimeout:     90 * time.Second,
	ForceAttemptHTTP2:   false,
}

// NewPooledClient returns a client drawing from the shared connection pool.
// timeout bounds the whole exchange and differs per backend: embedding and
// generation calls get the model timeout, conversions the much longer
// converter timeout.
func NewPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: sharedTransport,
	}
}
