package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kodestack/chainguard/internal/kanban"
	"github.com/kodestack/chainguard/internal/project"
)

const defaultBoardID = "default"

func nowStamp() string {
	return time.Now().Format(time.RFC3339)
}

// loadBoard returns the project's board, or an error asking for
// kanban_init when no board has been saved yet.
func loadBoard(deps *Deps, st *project.State) (*kanban.Store, *kanban.Board, error) {
	boardID := st.Kanban.BoardID
	if boardID == "" {
		boardID = defaultBoardID
	}
	store, err := deps.kanbanStore(st.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	board, err := store.Load(boardID)
	if err != nil {
		return nil, nil, err
	}
	if board == nil {
		return nil, nil, fmt.Errorf("no kanban board yet — call kanban_init() first")
	}
	return store, board, nil
}

func kanbanInitDefinition() mcp.Tool {
	return mcp.NewTool("kanban_init",
		mcp.WithDescription("Create this project's Kanban board. A no-op if one already exists."),
		mcp.WithString("name", mcp.Description("Board display name. Defaults to the project name.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func kanbanInitHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	store, err := deps.kanbanStore(st.ProjectID)
	if err != nil {
		return "", false, err
	}
	boardID := defaultBoardID
	existing, err := store.Load(boardID)
	if err != nil {
		return "", false, err
	}
	if existing != nil {
		st.Kanban.BoardID = boardID
		return "kanban board already exists", true, nil
	}

	name := req.GetString("name", st.ProjectName)
	board := kanban.NewBoard(boardID, name, nowStamp())
	if err := store.Save(board); err != nil {
		return "", false, err
	}
	st.Kanban.BoardID = boardID
	return fmt.Sprintf("✓ kanban board %q created", name), true, nil
}

func kanbanDefinition() mcp.Tool {
	return mcp.NewTool("kanban",
		mcp.WithDescription("Report per-column card counts for this project's board."),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func kanbanHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	_, board, err := loadBoard(deps, st)
	if err != nil {
		return "", false, err
	}
	grouped := board.ByColumn()
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d cards)\n", board.Name, len(board.Cards))
	for _, col := range kanban.Columns {
		fmt.Fprintf(&b, "  %s: %d\n", col, len(grouped[col]))
	}
	return b.String(), false, nil
}

func kanbanShowDefinition() mcp.Tool {
	return mcp.NewTool("kanban_show",
		mcp.WithDescription("List every active card on the board, grouped by column."),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func kanbanShowHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	_, board, err := loadBoard(deps, st)
	if err != nil {
		return "", false, err
	}
	grouped := board.ByColumn()
	var b strings.Builder
	for _, col := range kanban.Columns {
		fmt.Fprintf(&b, "== %s ==\n", col)
		cards := grouped[col]
		if len(cards) == 0 {
			b.WriteString("  (empty)\n")
			continue
		}
		for _, c := range cards {
			fmt.Fprintf(&b, "  %s: %s\n", c.ID, c.Title)
		}
	}
	return b.String(), false, nil
}

func kanbanAddDefinition() mcp.Tool {
	return mcp.NewTool("kanban_add",
		mcp.WithDescription("Add a new card to the board, in backlog unless a column is given."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Card title.")),
		mcp.WithString("description", mcp.Description("Card description.")),
		mcp.WithString("column", mcp.Description("backlog|in_progress|review|done. Defaults to backlog.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func kanbanAddHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	title := req.GetString("title", "")
	if title == "" {
		return "", false, fmt.Errorf("'title' is required")
	}
	store, board, err := loadBoard(deps, st)
	if err != nil {
		return "", false, err
	}
	column := kanban.Column(req.GetString("column", ""))
	card, err := board.AddCard(title, req.GetString("description", ""), column, nowStamp())
	if err != nil {
		return "", false, err
	}
	if err := store.Save(board); err != nil {
		return "", false, err
	}
	return fmt.Sprintf("✓ %s created in %s", card.ID, card.Column), true, nil
}

func kanbanMoveDefinition() mcp.Tool {
	return mcp.NewTool("kanban_move",
		mcp.WithDescription("Move a card to a different column (forward or backward)."),
		mcp.WithString("card_id", mcp.Required(), mcp.Description("Card ID, e.g. \"card-3\".")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Target column.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func kanbanMoveHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	cardID := req.GetString("card_id", "")
	to := kanban.Column(req.GetString("to", ""))
	if cardID == "" || to == "" {
		return "", false, fmt.Errorf("'card_id' and 'to' are required")
	}
	store, board, err := loadBoard(deps, st)
	if err != nil {
		return "", false, err
	}
	card, err := board.Move(cardID, to, nowStamp())
	if err != nil {
		return "", false, err
	}
	if err := store.Save(board); err != nil {
		return "", false, err
	}
	return fmt.Sprintf("✓ %s -> %s", card.ID, card.Column), true, nil
}

func kanbanDetailDefinition() mcp.Tool {
	return mcp.NewTool("kanban_detail",
		mcp.WithDescription("Show one card's full detail, including its move history."),
		mcp.WithString("card_id", mcp.Required(), mcp.Description("Card ID.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func kanbanDetailHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	cardID := req.GetString("card_id", "")
	if cardID == "" {
		return "", false, fmt.Errorf("'card_id' is required")
	}
	_, board, err := loadBoard(deps, st)
	if err != nil {
		return "", false, err
	}
	card, err := board.Card(cardID)
	if err != nil {
		return "", false, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", card.ID, card.Title)
	if card.Description != "" {
		fmt.Fprintf(&b, "  %s\n", card.Description)
	}
	fmt.Fprintf(&b, "column: %s  archived: %v\n", card.Column, card.Archived)
	fmt.Fprintf(&b, "created: %s  updated: %s\n", card.CreatedAt, card.UpdatedAt)
	b.WriteString("history:\n")
	for _, h := range card.History {
		from := string(h.From)
		if from == "" {
			from = "(new)"
		}
		fmt.Fprintf(&b, "  %s: %s -> %s\n", h.Timestamp, from, h.To)
	}
	return b.String(), false, nil
}

func kanbanUpdateDefinition() mcp.Tool {
	return mcp.NewTool("kanban_update",
		mcp.WithDescription("Update a card's title and/or description."),
		mcp.WithString("card_id", mcp.Required(), mcp.Description("Card ID.")),
		mcp.WithString("title", mcp.Description("New title. Leave unset to keep the current one.")),
		mcp.WithString("description", mcp.Description("New description. Leave unset to keep the current one.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func kanbanUpdateHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	cardID := req.GetString("card_id", "")
	if cardID == "" {
		return "", false, fmt.Errorf("'card_id' is required")
	}
	store, board, err := loadBoard(deps, st)
	if err != nil {
		return "", false, err
	}
	card, err := board.Update(cardID, req.GetString("title", ""), req.GetString("description", ""), nowStamp())
	if err != nil {
		return "", false, err
	}
	if err := store.Save(board); err != nil {
		return "", false, err
	}
	return fmt.Sprintf("✓ %s updated", card.ID), true, nil
}

func kanbanDeleteDefinition() mcp.Tool {
	return mcp.NewTool("kanban_delete",
		mcp.WithDescription("Permanently remove a card from the board."),
		mcp.WithString("card_id", mcp.Required(), mcp.Description("Card ID.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func kanbanDeleteHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	cardID := req.GetString("card_id", "")
	if cardID == "" {
		return "", false, fmt.Errorf("'card_id' is required")
	}
	store, board, err := loadBoard(deps, st)
	if err != nil {
		return "", false, err
	}
	if err := board.Delete(cardID); err != nil {
		return "", false, err
	}
	if err := store.Save(board); err != nil {
		return "", false, err
	}
	return fmt.Sprintf("✓ %s deleted", cardID), true, nil
}

func kanbanArchiveDefinition() mcp.Tool {
	return mcp.NewTool("kanban_archive",
		mcp.WithDescription("Archive a card: hides it from column listings while keeping its history."),
		mcp.WithString("card_id", mcp.Required(), mcp.Description("Card ID.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func kanbanArchiveHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	cardID := req.GetString("card_id", "")
	if cardID == "" {
		return "", false, fmt.Errorf("'card_id' is required")
	}
	store, board, err := loadBoard(deps, st)
	if err != nil {
		return "", false, err
	}
	card, err := board.Archive(cardID, nowStamp())
	if err != nil {
		return "", false, err
	}
	if err := store.Save(board); err != nil {
		return "", false, err
	}
	return fmt.Sprintf("✓ %s archived", card.ID), true, nil
}

func kanbanHistoryDefinition() mcp.Tool {
	return mcp.NewTool("kanban_history",
		mcp.WithDescription("Show move/lifecycle history for one card, or every card when card_id is omitted."),
		mcp.WithString("card_id", mcp.Description("Card ID. Omit for the whole board's history.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func kanbanHistoryHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	_, board, err := loadBoard(deps, st)
	if err != nil {
		return "", false, err
	}
	entries, err := board.History(req.GetString("card_id", ""))
	if err != nil {
		return "", false, err
	}
	if len(entries) == 0 {
		return "no history recorded", false, nil
	}
	var b strings.Builder
	for _, e := range entries {
		from := string(e.From)
		if from == "" {
			from = "(new)"
		}
		fmt.Fprintf(&b, "%s: %s -> %s\n", e.Timestamp, from, e.To)
	}
	return b.String(), false, nil
}
