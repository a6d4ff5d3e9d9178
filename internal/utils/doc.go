// Package utils holds small helpers shared by the backend adapters: a JSON
// POST round-trip with span events ([DoPostSync]), string truncation for log
// previews and [Ptr] for optional configuration values.
package utils
