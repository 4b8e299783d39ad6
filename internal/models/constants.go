// Package models contains data types and constants for the travel chat client and backend.
package models

// Wire contract
const (
	// EndpointChat is the path the chat client posts messages to
	EndpointChat = "/chat"

	// ContentTypeJSON is sent with every chat request
	ContentTypeJSON = "application/json"

	// DefaultServerURL is where the client looks for the backend when nothing is configured
	DefaultServerURL = "http://127.0.0.1:5000"
)

// FallbackReply is displayed whenever a reply cannot be retrieved
const FallbackReply = "Sorry, I'm having trouble responding right now."

// DefaultHeaders returns the headers sent with chat requests
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": ContentTypeJSON,
		"Accept":       ContentTypeJSON,
		"User-Agent":   "travelchat/" + Version,
	}
}

// Version is the client version reported in the User-Agent header (set at build time)
var Version = "0.1.0"
