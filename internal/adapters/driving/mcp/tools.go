package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchInput is the input schema for the search_vault tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the question or topic to find relevant notes for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return (default 5)"`
}

// SearchOutput is the output schema for the search_vault tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved chunk.
type SearchResultOutput struct {
	Source       string  `json:"source"`
	ChunkOrd     int     `json:"chunk_ord"`
	Score        float64 `json:"score"`
	Text         string  `json:"text"`
	ObsidianLink string  `json:"obsidian_link,omitempty"`
}

// ListSourcesOutput is the output schema for the list_sources tool.
type ListSourcesOutput struct {
	Sources []SourceOutput `json:"sources"`
	Count   int            `json:"count"`
}

// SourceOutput represents one ingested source.
type SourceOutput struct {
	Name       string `json:"name"`
	ChunkCount int    `json:"chunk_count"`
	AddedAt    string `json:"added_at"`
}

// IngestNoteInput is the input schema for the ingest_note tool.
type IngestNoteInput struct {
	Name    string `json:"name" jsonschema:"the source name for the note"`
	Content string `json:"content" jsonschema:"the note text to index"`
}

// IngestNoteOutput is the output schema for the ingest_note tool.
type IngestNoteOutput struct {
	Source   string `json:"source"`
	Chunks   int    `json:"chunks"`
	Replaced bool   `json:"replaced"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_vault",
		Description: "Search the knowledge base for chunks relevant to a query",
	}, s.handleSearch)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_sources",
			Description: "List all ingested sources with their chunk counts",
		}, s.handleListSources)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_note",
			Description: "Chunk, embed, and index a note in the knowledge base",
		}, s.handleIngestNote)
	}
}

// handleSearch handles the search_vault tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = s.ports.TopK
	}

	results, err := s.ports.Retrieval.SearchText(ctx, input.Query, topK, s.ports.VaultName)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			Source:       results[i].Source,
			ChunkOrd:     results[i].Ord,
			Score:        results[i].Score,
			Text:         results[i].Text,
			ObsidianLink: results[i].Link,
		}
	}

	return nil, output, nil
}

// handleListSources handles the list_sources tool invocation.
func (s *Server) handleListSources(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListSourcesOutput, error) {
	sources, err := s.ports.Ingest.ListSources(ctx)
	if err != nil {
		return nil, ListSourcesOutput{}, err
	}

	output := ListSourcesOutput{
		Sources: make([]SourceOutput, len(sources)),
		Count:   len(sources),
	}
	for i := range sources {
		output.Sources[i] = SourceOutput{
			Name:       sources[i].Name,
			ChunkCount: sources[i].ChunkCount,
			AddedAt:    sources[i].AddedAt.Format("2006-01-02 15:04"),
		}
	}

	return nil, output, nil
}

// handleIngestNote handles the ingest_note tool invocation.
func (s *Server) handleIngestNote(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestNoteInput,
) (*mcp.CallToolResult, IngestNoteOutput, error) {
	report, err := s.ports.Ingest.IngestText(ctx, input.Name, input.Content)
	if err != nil {
		return nil, IngestNoteOutput{}, err
	}

	return nil, IngestNoteOutput{
		Source:   report.SourceName,
		Chunks:   report.Chunks,
		Replaced: report.Replaced,
	}, nil
}
