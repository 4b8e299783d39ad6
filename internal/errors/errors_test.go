package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIError(t *testing.T) {
	err := NewAPIError(400, "/chat", "bad request")

	if err == nil {
		t.Fatal("Expected non-nil error")
	}

	expected := "API error [400] at /chat: bad request"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	noStatus := NewAPIError(0, "/chat", "no status")
	if noStatus.Error() != "API error at /chat: no status" {
		t.Errorf("Error() = %s", noStatus.Error())
	}
}

func TestAPIErrorWithBody(t *testing.T) {
	err := NewAPIErrorWithBody(502, "/chat", "bad gateway", "<html>oops</html>")

	if GetResponseBody(err) != "<html>oops</html>" {
		t.Errorf("GetResponseBody() = %q", GetResponseBody(err))
	}
	if GetHTTPStatus(err) != 502 {
		t.Errorf("GetHTTPStatus() = %d, want 502", GetHTTPStatus(err))
	}
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkErrorWithEndpoint("send message", "http://localhost/chat", cause)

	expected := "network error during send message (http://localhost/chat): connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, cause) {
		t.Error("NetworkError should unwrap to its cause")
	}

	plain := &NetworkError{Operation: "send message", Cause: cause}
	if plain.Error() != "network error during send message: connection refused" {
		t.Errorf("Error() = %s", plain.Error())
	}
}

func TestParseError(t *testing.T) {
	err := NewParseError("invalid JSON", "")

	if err.Error() != "parse error: invalid JSON" {
		t.Errorf("Error() = %s", err.Error())
	}

	if !errors.Is(err, ErrInvalidResponse) {
		t.Error("ParseError should match ErrInvalidResponse")
	}

	withPath := NewParseError("not a string", "response")
	if withPath.Error() != `parse error at "response": not a string` {
		t.Errorf("Error() = %s", withPath.Error())
	}

	if errors.Is(err, ErrMissingResponse) {
		t.Error("ParseError should not match ErrMissingResponse")
	}
}

func TestPredicates(t *testing.T) {
	netErr := fmt.Errorf("wrapped: %w", NewNetworkErrorWithEndpoint("send", "/chat", errors.New("eof")))
	parseErr := fmt.Errorf("wrapped: %w", NewParseError("bad", ""))
	apiErr := fmt.Errorf("wrapped: %w", NewAPIError(500, "/chat", "boom"))
	missing := fmt.Errorf("wrapped: %w", ErrMissingResponse)

	tests := []struct {
		name    string
		err     error
		network bool
		parse   bool
		api     bool
		missing bool
		kind    string
	}{
		{"network", netErr, true, false, false, false, "network"},
		{"parse", parseErr, false, true, false, false, "parse"},
		{"api", apiErr, false, false, true, false, "api"},
		{"missing", missing, false, false, false, true, "missing_response"},
		{"too large", fmt.Errorf("wrapped: %w", ErrReplyTooLarge), false, false, false, false, "too_large"},
		{"other", errors.New("x"), false, false, false, false, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNetworkError(tt.err); got != tt.network {
				t.Errorf("IsNetworkError() = %v, want %v", got, tt.network)
			}
			if got := IsParseError(tt.err); got != tt.parse {
				t.Errorf("IsParseError() = %v, want %v", got, tt.parse)
			}
			if got := IsAPIError(tt.err); got != tt.api {
				t.Errorf("IsAPIError() = %v, want %v", got, tt.api)
			}
			if got := IsMissingResponse(tt.err); got != tt.missing {
				t.Errorf("IsMissingResponse() = %v, want %v", got, tt.missing)
			}
			if got := Kind(tt.err); got != tt.kind {
				t.Errorf("Kind() = %q, want %q", got, tt.kind)
			}
		})
	}

	if Kind(nil) != "" {
		t.Error("Kind(nil) should be empty")
	}
}

func TestGetEndpoint(t *testing.T) {
	if got := GetEndpoint(NewAPIError(500, "/chat", "x")); got != "/chat" {
		t.Errorf("GetEndpoint(APIError) = %q", got)
	}
	if got := GetEndpoint(NewNetworkErrorWithEndpoint("send", "http://h/chat", errors.New("x"))); got != "http://h/chat" {
		t.Errorf("GetEndpoint(NetworkError) = %q", got)
	}
	if got := GetEndpoint(errors.New("x")); got != "" {
		t.Errorf("GetEndpoint(other) = %q", got)
	}
}

func TestGetHTTPStatus_ParseError(t *testing.T) {
	err := &ParseError{Message: "bad", StatusCode: 500}
	if GetHTTPStatus(err) != 500 {
		t.Errorf("GetHTTPStatus() = %d, want 500", GetHTTPStatus(err))
	}
	if GetHTTPStatus(errors.New("x")) != 0 {
		t.Error("GetHTTPStatus of plain error should be 0")
	}
}
