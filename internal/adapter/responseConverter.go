package adapter

import (
	"fmt"

	"github.com/akolanti/DocRagAPI/internal/api"
	"github.com/akolanti/DocRagAPI/internal/domain/ragModel"
)

// FileOutcome is one file's ingestion outcome as seen by the upload handler.
type FileOutcome struct {
	Filename string
	Result   ragModel.IndexingResult
	Err      error
}

func (o FileOutcome) isDuplicate() bool {
	return o.Err == nil && o.Result.TotalChunks == 0 && o.Result.Message == "Duplicate file; skipping embedding."
}

func (o FileOutcome) isFailed() bool {
	if o.Err != nil {
		return true
	}
	return o.Result.TotalChunks > 0 && len(o.Result.Errors) == o.Result.TotalChunks
}

// BuildUploadResponse aggregates per-file outcomes into the upload response
// and picks the top-level message.
func BuildUploadResponse(outcomes []FileOutcome) api.UploadResponse {
	resp := api.UploadResponse{Files: make([]api.FileReport, 0, len(outcomes))}

	for _, o := range outcomes {
		report := api.FileReport{
			Filename:     o.Filename,
			Message:      o.Result.Message,
			TotalChunks:  o.Result.TotalChunks,
			FailedChunks: o.Result.Errors,
		}
		switch {
		case o.isDuplicate():
			resp.Duplicates++
		case o.isFailed():
			resp.FailedFiles++
			if o.Err != nil {
				report.Message = o.Err.Error()
			}
		default:
			resp.DocumentsIndexed++
			resp.TotalChunks += o.Result.TotalChunks
		}
		resp.FailedChunks += len(o.Result.Errors)
		resp.Files = append(resp.Files, report)
	}

	switch {
	case resp.DocumentsIndexed > 0 && resp.Duplicates > 0:
		resp.Message = fmt.Sprintf("Documents indexed successfully (%d duplicates found).", resp.Duplicates)
	case resp.DocumentsIndexed == 0 && resp.Duplicates > 0 && resp.FailedFiles == 0:
		resp.Message = "No documents indexed. All files were duplicates."
	case resp.DocumentsIndexed == 0:
		resp.Message = "All files failed to process."
	default:
		resp.Message = "Documents uploaded successfully"
	}
	return resp
}

func NewError(code int, message string, traceID string) api.ErrorResponse {
	return api.ErrorResponse{Code: code, Message: message, TraceID: traceID}
}
