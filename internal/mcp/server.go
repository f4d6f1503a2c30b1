package mcp

import (
	"fmt"

	"github.com/Benggoy/f5-on-DPU-roi-config/internal/backup"
	"github.com/Benggoy/f5-on-DPU-roi-config/internal/config"
	"github.com/Benggoy/f5-on-DPU-roi-config/internal/configstore"
	"github.com/Benggoy/f5-on-DPU-roi-config/internal/logging"

	"github.com/mark3labs/mcp-go/server"
)

// ServerVersion is reported to MCP hosts during initialization.
const ServerVersion = "1.0.0"

const serverInstructions = `This server guards a single ROI calculator JSON config file.
Reads are unrestricted; writes require user_confirmed=true and always create
a timestamped backup first. No other file on the system can be accessed.`

// Server represents an MCP server instance using mcp-go
type Server struct {
	config    *config.Config
	logger    *logging.AppLogger
	store     *configstore.Store
	backups   *backup.Manager
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, logger *logging.AppLogger) *Server {
	return &Server{
		config: cfg,
		logger: logger,
	}
}

// Start initializes components, registers the tools and serves requests on
// stdio until the host disconnects.
func (s *Server) Start() error {
	s.logger.Info("Initializing MCP server", "configFile", s.config.ConfigFile)

	if err := s.initComponents(); err != nil {
		return err
	}

	s.mcpServer = server.NewMCPServer(
		config.APP_NAME,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions),
	)
	s.registerTools()

	s.logger.Info("MCP server created, starting stdio communication")
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the MCP server
func (s *Server) Stop() error {
	s.logger.Info("Stopping MCP server")
	// The mcp-go server handles cleanup when stdio closes
	return nil
}

// initComponents builds the config store and backup manager. Extracted from
// Start so tests can exercise the tool handlers without serving stdio.
func (s *Server) initComponents() error {
	store, err := configstore.NewStore(s.config.ConfigFile, s.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize config store: %w", err)
	}

	backups, err := backup.NewManager(s.config.ConfigFile, s.config.ResolvedBackupDir(), s.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize backup manager: %w", err)
	}

	s.store = store
	s.backups = backups
	return nil
}
