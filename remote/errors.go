package remote

import "fmt"

// StatusError is returned when the remote host answers with a non-2xx status code.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("URL: %s, Status: %s", e.URL, e.Status)
}
