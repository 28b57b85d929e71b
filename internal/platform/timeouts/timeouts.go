// Package timeouts defines shared timeout constants used across services.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// SessionFetch caps the first-navigation identity lookup against the product API.
const SessionFetch = 10 * time.Second

// APIRequest caps login and logout calls against the product API.
const APIRequest = 5 * time.Second

// ClientIdle is how long a browser client's session store survives without traffic.
const ClientIdle = 30 * time.Minute

// ClientSweep is the interval between idle client sweeps.
const ClientSweep = time.Minute
