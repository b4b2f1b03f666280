package providers

import "fmt"

// FetchError is any transport, non-2xx or malformed-response failure from an
// upstream call. It always carries the provider name so pipeline status lines
// can attribute the failure.
type FetchError struct {
	Provider string
	Message  string
	Err      error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch from %s failed: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("fetch from %s failed: %s", e.Provider, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
