package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/musuliman/codesim/internal/version"
	"github.com/musuliman/codesim/pkg/store"
)

// mcpLog logs to stderr; stdout is reserved for MCP JSON-RPC.
var mcpLog = log.New(os.Stderr, "[codesim:mcp] ", log.Ltime)

// MCPServer exposes compare and history tools over MCP stdio.
type MCPServer struct {
	cfg    *Config
	server *mcp.Server
}

// cmdMCP starts the MCP server over stdio.
func cmdMCP(cfg *Config, _ []string) error {
	mcpLog.Printf("codesim MCP server starting")
	mcpLog.Printf("version: %s", version.String())

	s := &MCPServer{cfg: cfg}
	return s.Run()
}

// Run starts the MCP server and registers the tools.
func (s *MCPServer) Run() error {
	srv := mcp.NewServer(
		&mcp.Implementation{
			Name:    "codesim",
			Version: version.Short(),
		},
		nil,
	)
	s.server = srv

	mcp.AddTool(srv, &mcp.Tool{
		Name: "compare",
		Description: `Compare two code submissions for token-level similarity.

Each path may be a directory or a single source file. The result lists the
similarity percentage and the matched token runs.`,
	}, s.handleCompare)

	mcp.AddTool(srv, &mcp.Tool{
		Name: "history_search",
		Description: `Search stored comparison results by submission name.

Prefix and fuzzy matching are built in. Returns the best matches with
similarity and timestamps.`,
	}, s.handleHistorySearch)

	mcpLog.Printf("MCP server ready, listening on stdio")
	return srv.Run(context.Background(), &mcp.StdioTransport{})
}

// CompareInput is the schema for the compare tool.
type CompareInput struct {
	PathA     string `json:"path_a" jsonschema:"First submission path (directory or file)"`
	PathB     string `json:"path_b" jsonschema:"Second submission path (directory or file)"`
	MinMatch  int    `json:"min_match,omitempty" jsonschema:"Minimum token match length (default 9)"`
	Normalize bool   `json:"normalize,omitempty" jsonschema:"Normalize token streams before matching"`
}

func (s *MCPServer) handleCompare(_ context.Context, _ *mcp.CallToolRequest, input CompareInput) (*mcp.CallToolResult, any, error) {
	mcpLog.Printf("tool: compare %q vs %q", input.PathA, input.PathB)

	var flagArgs []string
	if input.MinMatch > 0 {
		flagArgs = append(flagArgs, fmt.Sprintf("--min-match=%d", input.MinMatch))
	}
	if input.Normalize {
		flagArgs = append(flagArgs, "--normalize")
	}

	b, err := newBackend(s.cfg, flagArgs)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}
	a, err := b.loadSubmission(input.PathA)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}
	other, err := b.loadSubmission(input.PathB)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}
	c, err := b.runner.Matcher().Compare(a.Tokens, other.Tokens)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s vs %s: %.1f%% similar, %d match(es)\n",
		c.First, c.Second, c.Similarity()*100, len(c.Matches))
	for _, m := range c.Matches {
		fmt.Fprintf(&sb, "  tokens %d..%d ↔ %d..%d (length %d)\n",
			m.StartInFirst, m.StartInFirst+m.Length-1,
			m.StartInSecond, m.StartInSecond+m.Length-1, m.Length)
	}
	return textResult(sb.String()), nil, nil
}

// HistorySearchInput is the schema for the history_search tool.
type HistorySearchInput struct {
	Query string `json:"query" jsonschema:"Submission name or fragment to search for"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum results (default 10)"`
}

func (s *MCPServer) handleHistorySearch(_ context.Context, _ *mcp.CallToolRequest, input HistorySearchInput) (*mcp.CallToolResult, any, error) {
	mcpLog.Printf("tool: history_search query=%q", input.Query)

	st, err := store.NewBoltStore(storePath(s.cfg))
	if err != nil {
		return errorResult(fmt.Sprintf("open store: %v", err)), nil, nil
	}
	defer st.Close()
	search, err := store.NewSearchStore(searchPath(s.cfg))
	if err != nil {
		return errorResult(fmt.Sprintf("open search index: %v", err)), nil, nil
	}
	defer search.Close()

	hits, err := search.Search(input.Query, input.Limit)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d result(s)\n", len(hits))
	for _, hit := range hits {
		rec, err := st.GetComparison(hit.ID)
		if err != nil {
			continue
		}
		fmt.Fprintf(&sb, "  %s: %s vs %s — %.1f%% (%s)\n",
			rec.ID, rec.First, rec.Second, rec.Similarity*100,
			rec.CreatedAt.Format("2006-01-02 15:04"))
	}
	return textResult(sb.String()), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + message},
		},
		IsError: true,
	}
}
