package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/DocRagAPI/internal/config"
	"github.com/akolanti/DocRagAPI/internal/metrics"
	"github.com/akolanti/DocRagAPI/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

// Chain carries the settings the request middleware needs. Handlers are
// wrapped at route registration time.
type Chain struct {
	settings *config.Settings
	limiter  *IPRateLimiter
}

func New(settings *config.Settings) *Chain {
	return &Chain{
		settings: settings,
		limiter:  NewIPRateLimiter(defaultRateLimit, defaultBurstLimit),
	}
}

func (c *Chain) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := c.processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func (c *Chain) processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")

	re = injectTrace(re)
	re = c.rateLimit(re)
	if handleBadRequest(re) {
		return re //stop here if rate limit fails
	}
	re = c.authenticate(re)
	if handleBadRequest(re) {
		return re //stop if auth fails
	}
	return re
}
