// Package services implements the application use cases: ingestion,
// retrieval, context assembly, cost tracking, and chat orchestration.
// Services depend only on domain types and driven ports, constructed
// explicitly by the application entry point.
package services
