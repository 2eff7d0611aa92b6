// Package services implements the client for the orchestra API's part asset endpoints.
//
// # Client
//
// [Client] wraps a go-resty client configured from a [shared.Session]: every request carries the
// session cookie and the CSRF token header the API requires on mutations. Transport errors and 5xx
// responses are retried.
//
// # Uploads
//
// [Client.Upload] runs the three-step upload:
//
//  1. POST /api/pieces/{id}/asset creates the asset and returns a presigned upload URL
//  2. PUT the file bytes to that URL
//  3. PATCH /api/pieces/{id}/asset/{asset} reports Uploaded, Failed or Aborted
//
// Only PDF content is accepted; the check uses the file's bytes, not its name.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingSession] : no session cookie or CSRF token
//   - [shared.ErrAPIRequest] : HTTP request failed or returned a non-2xx status
//   - [shared.ErrUnsupportedFile] : upload content is not a PDF
//   - [shared.ErrUploadFailed] : the presigned PUT returned a non-2xx status
//   - [shared.ErrUploadAborted] : the presigned PUT did not complete
package services
