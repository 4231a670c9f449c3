package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

type stageStats struct {
	Count uint64  `json:"count"`
	Sum   float64 `json:"sum"`
	Avg   float64 `json:"avg"`
}

type Summary struct {
	Counts       map[string]float64    `json:"counts"`
	StageLatency map[string]stageStats `json:"stage_latency"`
}

// Snapshot reads the default gatherer and builds a JSON-friendly view of the
// pipeline counters and per-stage latencies. Meant for dashboards that don't
// speak the prometheus text format.
func Snapshot() (Summary, error) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return Summary{}, err
	}

	out := Summary{
		Counts:       make(map[string]float64),
		StageLatency: make(map[string]stageStats),
	}

	for _, fam := range families {
		name := fam.GetName()
		switch name {
		case "rag_stage_latency_seconds":
			for _, m := range fam.GetMetric() {
				stage := "unknown"
				for _, lbl := range m.GetLabel() {
					if lbl.GetName() == "stage" {
						stage = lbl.GetValue()
					}
				}
				h := m.GetHistogram()
				st := stageStats{Count: h.GetSampleCount(), Sum: h.GetSampleSum()}
				if st.Count > 0 {
					st.Avg = st.Sum / float64(st.Count)
				}
				out.StageLatency[stage] = st
			}

		case "ingest_files_total", "ingest_duplicates_total", "ingest_chunks_total",
			"ingest_ocr_pages_total", "embed_requests_total", "embed_vectors_total",
			"index_insert_batches_total", "index_insert_errors_total",
			"search_requests_total", "search_errors_total",
			"question_requests_total", "question_errors_total":
			for _, m := range fam.GetMetric() {
				out.Counts[name] += m.GetCounter().GetValue()
			}
		}
	}
	return out, nil
}

func SummaryHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := Snapshot()
	if err != nil {
		http.Error(w, "failed to gather metrics", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)
}
