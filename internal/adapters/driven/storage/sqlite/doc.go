// Package sqlite provides SQLite-backed persistence for the vector
// store and conversation history.
//
// A single database file holds everything: sources and their embedded
// chunks for retrieval, plus conversations, messages, and budget state
// for chat. Schema changes ship as embedded migrations applied on open.
package sqlite
