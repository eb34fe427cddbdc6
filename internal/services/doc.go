// Package services defines the collaborator boundary for the craftpress
// pipeline: the provider interfaces implemented by external service clients,
// the sentinel error markers used to classify failures, and context helpers
// that carry asset/stage/run identity into client calls and logs.
package services
