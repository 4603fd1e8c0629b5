package api

// Response defines an interface for all responses from the DSM API.
type Response interface {
	ErrorDescriber

	// GetError returns the latest error associated with response, if any.
	GetError() SynologyError

	// SetError sets error object for the current response.
	SetError(SynologyError)

	// Success reports whether the current request was successful.
	Success() bool
}

// GenericResponse is the envelope common to all DSM responses.
type GenericResponse struct {
	Success bool
	Data    interface{}
	Error   SynologyError
}

// BaseResponse is embedded by concrete response types to satisfy Response.
type BaseResponse struct {
	SynologyError
}

func (b *BaseResponse) SetError(e SynologyError) {
	b.SynologyError = e
}

func (b BaseResponse) Success() bool {
	return b.SynologyError.Code == 0
}

func (b *BaseResponse) GetError() SynologyError {
	return b.SynologyError
}

// ErrorSummaries satisfies ErrorDescriber for responses without API-specific
// error tables.
func (b BaseResponse) ErrorSummaries() []ErrorSummary {
	return nil
}
