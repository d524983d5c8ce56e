package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kodestack/chainguard/internal/dbinspect"
	"github.com/kodestack/chainguard/internal/project"
)

func dbConnectDefinition() mcp.Tool {
	return mcp.NewTool("db_connect",
		mcp.WithDescription("Open the project's database connection, replacing any existing one. Omit every "+
			"connection parameter to reconnect with the credentials saved by an earlier remember=true call."),
		mcp.WithString("host", mcp.Description("Database host. Default \"localhost\".")),
		mcp.WithString("port", mcp.Description("Database port. Defaults to the engine's standard port.")),
		mcp.WithString("user", mcp.Description("Database user.")),
		mcp.WithString("password", mcp.Description("Database password.")),
		mcp.WithString("database", mcp.Description("Database name, or the file path for sqlite.")),
		mcp.WithString("db_type", mcp.Description("mysql|postgres|sqlite. Default \"mysql\".")),
		mcp.WithString("remember", mcp.Description("\"false\" to skip saving these credentials for this project. Default true.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func dbConnectHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	host := req.GetString("host", "")
	user := req.GetString("user", "")
	password := req.GetString("password", "")
	database := req.GetString("database", "")
	dbType := req.GetString("db_type", "")
	portStr := req.GetString("port", "")

	noParams := host == "" && user == "" && password == "" && database == "" && dbType == "" && portStr == ""

	var (
		engine dbinspect.Engine
		dsn    string
	)

	if noParams {
		if st.DBConfig == nil {
			return "", false, fmt.Errorf("no saved credentials for this project — pass host/database/db_type (or others) to connect")
		}
		saved := st.DBConfig
		engine = dbinspect.Engine(saved.Engine)
		pass, err := dbinspect.DeobfuscatePassword(saved.Password)
		if err != nil {
			return "", false, err
		}
		dsn = dbinspect.DSN(engine, saved.Host, saved.Port, saved.User, pass, saved.Database)
	} else {
		if dbType == "" {
			dbType = "mysql"
		}
		engine = dbinspect.Engine(dbType)
		if host == "" {
			host = "localhost"
		}
		if database == "" {
			return "", false, fmt.Errorf("'database' is required")
		}
		port := dbinspect.DefaultPort(engine)
		if portStr != "" {
			p, err := strconv.Atoi(portStr)
			if err != nil {
				return "", false, fmt.Errorf("'port' must be numeric: %w", err)
			}
			port = p
		}
		dsn = dbinspect.DSN(engine, host, port, user, password, database)

		remember := req.GetString("remember", "") == "" || strings.EqualFold(req.GetString("remember", ""), "true")
		if remember {
			st.DBConfig = &project.DBConfig{
				Host:     host,
				Port:     port,
				Database: database,
				Engine:   string(engine),
				User:     user,
				Password: dbinspect.ObfuscatePassword(password),
			}
		} else {
			st.DBConfig = nil
		}
	}

	if err := deps.DB.connect(st.ProjectID, dbinspect.Config{Engine: engine, DSN: dsn}); err != nil {
		return "", false, err
	}
	st.DBSchemaCheckedAt = nil
	if st.DBConfig != nil {
		st.DBConfig.Connected = true
	}
	return fmt.Sprintf("✓ connected (%s)", engine), true, nil
}

func dbSchemaDefinition() mcp.Tool {
	return mcp.NewTool("db_schema",
		mcp.WithDescription("Fetch (and TTL-cache) the connected database's schema as a compact tree. Clears the "+
			"schema-stale flag so the hook allows writes to schema files again."),
		mcp.WithString("force_refresh", mcp.Description("\"true\" to bypass the schema cache.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func dbSchemaHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	insp, ok := deps.DB.get(st.ProjectID)
	if !ok {
		return "", false, fmt.Errorf("no active database connection — call db_connect() first")
	}
	force := strings.EqualFold(req.GetString("force_refresh", ""), "true")
	schema, fromCache, err := insp.GetSchema(ctx, force)
	if err != nil {
		return "", false, err
	}
	now := time.Now()
	st.DBSchemaCheckedAt = &now

	out := dbinspect.FormatSchema(schema)
	if fromCache {
		out = "(cached)\n" + out
	}
	return out, true, nil
}

func dbTableDefinition() mcp.Tool {
	return mcp.NewTool("db_table",
		mcp.WithDescription("Fetch a single table's schema as a compact tree."),
		mcp.WithString("table", mcp.Required(), mcp.Description("Table name.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func dbTableHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	insp, ok := deps.DB.get(st.ProjectID)
	if !ok {
		return "", false, fmt.Errorf("no active database connection — call db_connect() first")
	}
	name := req.GetString("table", "")
	if name == "" {
		return "", false, fmt.Errorf("'table' is required")
	}
	table, err := insp.Table(ctx, name)
	if err != nil {
		return "", false, err
	}
	return dbinspect.FormatTree(*table), false, nil
}

func dbDisconnectDefinition() mcp.Tool {
	return mcp.NewTool("db_disconnect",
		mcp.WithDescription("Close the project's database connection, if any. Saved credentials (if remembered) are kept — use db_forget to delete them."),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func dbDisconnectHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	if err := deps.DB.disconnect(st.ProjectID); err != nil {
		return "", false, err
	}
	if st.DBConfig != nil {
		st.DBConfig.Connected = false
	}
	return "✓ disconnected", true, nil
}

func dbForgetDefinition() mcp.Tool {
	return mcp.NewTool("db_forget",
		mcp.WithDescription("Delete saved DB credentials for this project. Use when the password changed or to remove stored credentials."),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func dbForgetHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	if st.DBConfig == nil {
		return "no saved credentials for this project", true, nil
	}
	st.DBConfig = nil
	return "✓ forgotten", true, nil
}
