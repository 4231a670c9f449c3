package api

import "github.com/akolanti/DocRagAPI/internal/domain/ragModel"

type FileReport struct {
	Filename     string                 `json:"filename"`
	Message      string                 `json:"message"`
	TotalChunks  int                    `json:"total_chunks"`
	FailedChunks []ragModel.FailedChunk `json:"failed_chunks,omitempty"`
}

type UploadResponse struct {
	Message          string       `json:"message"`
	DocumentsIndexed int          `json:"documents_indexed"`
	TotalChunks      int          `json:"total_chunks"`
	FailedChunks     int          `json:"failed_chunks"`
	FailedFiles      int          `json:"failed_files"`
	Duplicates       int          `json:"duplicates"`
	Files            []FileReport `json:"files"`
}

type SearchResponse struct {
	Query   string                  `json:"query"`
	Results []ragModel.SearchResult `json:"results"`
}

type QuestionRequest struct {
	Question string `json:"question" validate:"required"`
}

type QuestionResponse struct {
	Answer     string   `json:"answer"`
	References []string `json:"references"`
}

type AgentRunRequest struct {
	Message   string `json:"message" validate:"required"`
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type AgentRunResponse struct {
	Output  string `json:"output"`
	TraceID string `json:"trace_id,omitempty"`
}

type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Invalid request data"`
	TraceID string `json:"trace_id,omitempty"`
}
