// Package synthesis defines the contract types for text-to-speech services
// consumed by the workflow orchestrator.
package synthesis

import "github.com/google/uuid"

// Token is an opaque handle for a registered speaking-changed or error
// handler. The registrant owns the token and is responsible for revoking it.
type Token string

// NewToken creates a unique handler token.
func NewToken() Token { return Token(uuid.NewString()) }
