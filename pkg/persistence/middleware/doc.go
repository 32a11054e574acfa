// Package middleware wraps OutcomeStores with masking and encryption at rest.
package middleware
