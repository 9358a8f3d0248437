package provider

import "fmt"

// FallbackExhaustedError reports that the mock source failed after the store
// yielded nothing usable. No further fallback is attempted.
type FallbackExhaustedError struct {
	Location string
	Err      error
}

func (e *FallbackExhaustedError) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("provider fallback failed: %v", e.Err)
	}
	return fmt.Sprintf("provider fallback for %q failed: %v", e.Location, e.Err)
}

func (e *FallbackExhaustedError) Unwrap() error {
	return e.Err
}

func (e *FallbackExhaustedError) Describe(action string) (string, string) {
	return "Providers unavailable", "We couldn't load service providers right now. Please try again later."
}
