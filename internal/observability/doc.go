// Package observability provides logging, metrics, and request context
// propagation for the social feed service.
package observability
