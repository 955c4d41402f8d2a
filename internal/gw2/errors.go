package gw2

import "fmt"

// UpstreamError reports a failed call to the GW2 API: either a transport
// failure (Err set, StatusCode 0) or a non-success HTTP status.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("gw2 api %s (HTTP %d): %s: %v", e.Endpoint, e.StatusCode, e.Message, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("gw2 api %s (HTTP %d): %s", e.Endpoint, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("gw2 api %s: %s: %v", e.Endpoint, e.Message, e.Err)
	default:
		return fmt.Sprintf("gw2 api %s: %s", e.Endpoint, e.Message)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// MaskAPIKey returns a masked version of an API key for logs ("ABC...WXYZ").
func MaskAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}

	if len(apiKey) <= 10 {
		return "***"
	}

	return apiKey[:3] + "..." + apiKey[len(apiKey)-4:]
}
