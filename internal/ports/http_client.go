package ports

import "net/http"

// HTTPClient executes requests against the Store API.
// *http.Client satisfies this interface; tests substitute their own.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
