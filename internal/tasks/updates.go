package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPage Phase = iota
	WriteFile
	UploadFile
)

func (p Phase) String() string {
	switch p {
	case FetchPage:
		return "fetch_page"
	case WriteFile:
		return "write_file"
	case UploadFile:
		return "upload_file"
	default:
		return ""
	}
}

func fetchPageUpdate(page, total, rows int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPage,
		Step:    page,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetched page %d (%d rows)", page, total, page, rows),
	}
}

func fetchFailedUpdate(page, total int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPage,
		Step:    page,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ page %d: %v", page, total, page, err),
	}
}

func writeFileUpdate(path string, rows int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteFile,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Wrote %d rows to %s", rows, path),
		Data:    path,
	}
}

func uploadingUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFile,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Uploading: %s...", step, total, name),
	}
}

func uploadCompletedUpdate(step, total int, res FileUploadResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFile,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, res.Filename),
		Data:    res,
	}
}

func uploadFailedUpdate(step, total int, res FileUploadResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFile,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s (%s): %v", step, total, res.Filename, res.Status, res.Err),
		Data:    res,
	}
}
