package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kodestack/chainguard/internal/project"
)

func countWords(data []byte) int {
	return len(strings.Fields(string(data)))
}

func trackChapterDefinition() mcp.Tool {
	return mcp.NewTool("track_chapter",
		mcp.WithDescription("Record a chapter file's current word count, for content mode's running total."),
		mcp.WithString("file", mcp.Required(), mcp.Description("Path to the chapter file.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func trackChapterHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	file := req.GetString("file", "")
	if file == "" {
		return "", false, fmt.Errorf("'file' is required")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", file, err)
	}
	words := countWords(data)

	if st.ChapterFiles == nil {
		st.ChapterFiles = map[string]int{}
	}
	previous := st.ChapterFiles[file]
	st.ChapterFiles[file] = words
	st.WordCount += words - previous

	return fmt.Sprintf("%s: %d words (total %d)", file, words, st.WordCount), true, nil
}

func wordCountDefinition() mcp.Tool {
	return mcp.NewTool("word_count",
		mcp.WithDescription("Report the running word-count total across all tracked chapter files."),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func wordCountHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "total: %d words across %d chapter(s)\n", st.WordCount, len(st.ChapterFiles))
	for file, words := range st.ChapterFiles {
		fmt.Fprintf(&b, "  %s: %d\n", file, words)
	}
	return b.String(), false, nil
}
