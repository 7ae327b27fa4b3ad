// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): storage, embedding, tokenization, LLM
// access, and the usage log.
package driven
