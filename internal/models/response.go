package models

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the expected success body of POST /chat
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is returned by the backend when a request is rejected
type ErrorResponse struct {
	Error string `json:"error"`
}
