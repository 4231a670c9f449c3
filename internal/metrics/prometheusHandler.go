package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var ingestFiles = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ingest_files_total",
	Help: "Files submitted for ingestion",
})

var ingestDuplicates = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ingest_duplicates_total",
	Help: "Files skipped because their content hash already exists",
})

var ingestChunks = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ingest_chunks_total",
	Help: "Chunks produced during ingestion",
})

var ingestOCRPages = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ingest_ocr_pages_total",
	Help: "Pages where OCR fallback ran",
})

var embedRequests = promauto.NewCounter(prometheus.CounterOpts{
	Name: "embed_requests_total",
	Help: "Embedding calls (batches)",
})

var embedVectors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "embed_vectors_total",
	Help: "Texts embedded",
})

var indexInsertBatches = promauto.NewCounter(prometheus.CounterOpts{
	Name: "index_insert_batches_total",
	Help: "Batches sent to the vector index",
})

var indexInsertErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "index_insert_errors_total",
	Help: "Failed vector index inserts",
})

var searchRequests = promauto.NewCounter(prometheus.CounterOpts{
	Name: "search_requests_total",
	Help: "Hybrid search requests",
})

var searchErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "search_errors_total",
	Help: "Hybrid search failures",
})

var questionRequests = promauto.NewCounter(prometheus.CounterOpts{
	Name: "question_requests_total",
	Help: "Question answering requests",
})

var questionErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "question_errors_total",
	Help: "Question answering failures",
})

var stageLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "rag_stage_latency_seconds",
	Help: "Latency per pipeline stage",
	// parse | chunkfy | embed | index_insert | search | generate
	Buckets: []float64{.01, .05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"stage"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementIngestFiles()      { ingestFiles.Inc() }
func IncrementIngestDuplicates() { ingestDuplicates.Inc() }
func AddIngestChunks(n int)      { ingestChunks.Add(float64(n)) }
func IncrementOCRPages()         { ingestOCRPages.Inc() }

func IncrementEmbedRequests()  { embedRequests.Inc() }
func AddEmbedVectors(n int)    { embedVectors.Add(float64(n)) }
func IncrementInsertBatches()  { indexInsertBatches.Inc() }
func IncrementInsertErrors()   { indexInsertErrors.Inc() }
func IncrementSearchRequests() { searchRequests.Inc() }
func IncrementSearchErrors()   { searchErrors.Inc() }

func IncrementQuestionRequests() { questionRequests.Inc() }
func IncrementQuestionErrors()   { questionErrors.Inc() }

// ObserveStage returns a func to defer; it records the elapsed time of one
// pipeline stage into the stage latency histogram.
func ObserveStage(stage string) func() {
	start := time.Now()
	return func() {
		stageLatency.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}
