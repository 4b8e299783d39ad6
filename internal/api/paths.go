// Package api provides the chat backend client implementation.
package api

// GJSON paths for extracting values from backend replies.
const (
	// PathResponse holds the bot reply text on success
	PathResponse = "response"

	// PathError holds the rejection reason when the backend refuses a request
	PathError = "error"
)

// maxReplyBytes is the largest reply body accepted; longer replies fail with ErrReplyTooLarge
const maxReplyBytes = 1 << 20

// maxErrorBodyBytes caps the body kept on an APIError for diagnostics
const maxErrorBodyBytes = 4096
