// Package domain contains the core business entities for vaultchat:
// sources, chunks, retrieval results, conversations, and usage records.
// It has no dependencies on adapters or infrastructure.
package domain
