package summarization

import "errors"

// Common errors returned by the summarization package
var (
	// ErrSummarizationFailed is returned when summarization fails for any general reason
	ErrSummarizationFailed = errors.New("failed to summarize transcript")

	// ErrInvalidResponse is returned when the model response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during summarization")

	// ErrInvalidConfig is returned when the summarizer configuration is invalid
	ErrInvalidConfig = errors.New("invalid summarizer configuration")
)

// IsPermanent reports whether the error represents a failure that will not
// resolve on retry, such as safety-blocked content or a malformed response.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrContentBlocked) || errors.Is(err, ErrInvalidResponse) ||
		errors.Is(err, ErrInvalidConfig)
}
