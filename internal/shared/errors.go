package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig   = fmt.Errorf("configuration not found")
	ErrInvalidConfig   = fmt.Errorf("invalid configuration")
	ErrMissingEndpoint = fmt.Errorf("missing endpoint url")
	ErrUnknownTable    = fmt.Errorf("unknown table")
	ErrMissingSession  = fmt.Errorf("missing session")

	// API and service errors
	ErrAPIRequest        = fmt.Errorf("API request failed")
	ErrMalformedResponse = fmt.Errorf("malformed response")
	ErrUploadFailed      = fmt.Errorf("upload failed")
	ErrUploadAborted     = fmt.Errorf("upload aborted")

	// Persistence errors
	ErrPreferenceNotFound = fmt.Errorf("preference not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
	ErrUnsupportedFile = fmt.Errorf("unsupported file type")
)
