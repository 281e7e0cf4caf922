// Package hubstore forwards processed agent data batches to a Store API.
//
// Example usage:
//
//	store := hubstore.New("http://store:8000", hubstore.WithTimeout(10*time.Second))
//	ok := store.SaveData(ctx, []hubstore.ProcessedAgentData{record})
//	if !ok {
//	    // the batch was not accepted; details are in the logs
//	}
//
// A batch is either a Payload, sent as-is, or a sequence of records. Records
// implementing Serializable are encoded with their own JSON method; other
// records pass through unchanged. Only a 200 OK response counts as success.
package hubstore

import (
	"net/http"
	"time"

	httpAdapter "github.com/bft-labs/hubstore/internal/adapters/http"
	logAdapter "github.com/bft-labs/hubstore/internal/adapters/log"
	"github.com/bft-labs/hubstore/internal/domain"
	"github.com/bft-labs/hubstore/internal/ports"
)

// Re-exported domain and port types.
type (
	ProcessedAgentData = domain.ProcessedAgentData
	AgentData          = domain.AgentData
	Accelerometer      = domain.Accelerometer
	GPS                = domain.GPS
	Payload            = domain.Payload
	RawItem            = domain.RawItem
	Serializable       = domain.Serializable

	// StoreGateway is implemented by anything that can save a batch.
	StoreGateway = ports.StoreGateway

	// HTTPClient is the interface for making HTTP requests.
	// *http.Client satisfies this interface.
	HTTPClient = ports.HTTPClient

	// Logger is the interface for structured logging.
	Logger = ports.Logger

	// LogField represents a structured log field.
	LogField = ports.Field
)

// StoreAPI is the HTTP Store API gateway.
type StoreAPI = httpAdapter.StoreAPIAdapter

// Option configures optional behavior of the gateway.
type Option func(*options)

type options struct {
	httpClient ports.HTTPClient
	logger     ports.Logger
	timeout    time.Duration
}

// WithHTTPClient sets a custom HTTP client. It takes precedence over WithTimeout.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, log output is discarded.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTimeout bounds each request made by the default HTTP client.
// Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// New creates a gateway posting to {baseURL}/processed_agent_data/.
func New(baseURL string, opts ...Option) *StoreAPI {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}
	if o.logger == nil {
		o.logger = logAdapter.NewNopAdapter()
	}
	return httpAdapter.NewStoreAPIAdapter(baseURL, o.httpClient, o.logger)
}
