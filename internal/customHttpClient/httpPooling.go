package customHttpClient

import (
	"net/http"
	"time"

	"github.com/akolanti/DocRagAPI/internal/config"
)

// shared transport so outbound clients (vector index, OCR side services)
// reuse connections instead of paying the handshake per call
var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

func NewPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: customTransport,
		Timeout:   timeout,
	}
}
