package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aaronshaf/churches-sub000/internal/config"
	"github.com/aaronshaf/churches-sub000/internal/mcptools"
	"github.com/aaronshaf/churches-sub000/internal/repository"
	"github.com/aaronshaf/churches-sub000/internal/service"
	"github.com/aaronshaf/churches-sub000/pkg/database"
)

const serverVersion = "0.1.0"

func main() {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// stdout занят протоколом MCP, поэтому логи идут только в stderr.
	logger, err := newStderrLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, database.Config{
		DSN:      cfg.GetDSN(),
		MaxConns: cfg.DBMaxConns,
	}, logger.Named("Database"))
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()

	churchRepo := repository.NewPgChurchRepository(db.Pool, logger.Named("PgChurchRepo"))
	countyRepo := repository.NewPgCountyRepository(db.Pool, logger.Named("PgCountyRepo"))
	affiliationRepo := repository.NewPgAffiliationRepository(db.Pool, logger.Named("PgAffiliationRepo"))
	churchSvc := service.NewChurchService(churchRepo, countyRepo, affiliationRepo, logger)

	s := server.NewMCPServer(
		"Church Directory MCP",
		serverVersion,
		server.WithRecovery(),
		server.WithToolCapabilities(false),
	)

	toolListCounties := mcp.NewTool("list-counties",
		mcp.WithDescription("Lists all counties in the church directory with their URL paths"),
	)
	s.AddTool(toolListCounties, mcptools.ListCountiesHandler(churchSvc))

	toolListChurches := mcp.NewTool("list-churches",
		mcp.WithDescription("Lists publicly visible churches, optionally filtered by county and status"),
		mcp.WithString("county", mcp.Description("County path to filter by (optional)")),
		mcp.WithString("status", mcp.Description("Church status to filter by, e.g. listed or unlisted (optional)")),
	)
	s.AddTool(toolListChurches, mcptools.ListChurchesHandler(churchSvc))

	toolGetChurch := mcp.NewTool("get-church",
		mcp.WithDescription("Returns the full public profile of a single church by its URL path"),
		mcp.WithString("path", mcp.Required(), mcp.Description("The church URL path")),
	)
	s.AddTool(toolGetChurch, mcptools.GetChurchHandler(churchSvc))

	logger.Info("Starting MCP server on stdio")
	if err := server.ServeStdio(s); err != nil {
		logger.Error("MCP server error", zap.Error(err))
	}
}

func newStderrLogger(level string) (*zap.Logger, error) {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl.SetLevel(zap.InfoLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	zapConfig := zap.Config{
		Level:             lvl,
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}

	return zapConfig.Build()
}
