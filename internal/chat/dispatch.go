package chat

import (
	"fmt"
	"strings"
)

// DispatchMode decides what happens when a message is submitted while
// earlier requests are still in flight
type DispatchMode string

const (
	// DispatchConcurrent sends every request immediately; replies appear in
	// the order their requests complete
	DispatchConcurrent DispatchMode = "concurrent"

	// DispatchSerial queues requests so each is sent after the previous reply
	// is rendered; replies appear in submission order
	DispatchSerial DispatchMode = "serial"
)

// ParseDispatchMode converts a config value into a DispatchMode.
// The empty string selects DispatchConcurrent.
func ParseDispatchMode(s string) (DispatchMode, error) {
	switch DispatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", DispatchConcurrent:
		return DispatchConcurrent, nil
	case DispatchSerial:
		return DispatchSerial, nil
	default:
		return "", fmt.Errorf("unknown dispatch mode %q (want %q or %q)", s, DispatchConcurrent, DispatchSerial)
	}
}
