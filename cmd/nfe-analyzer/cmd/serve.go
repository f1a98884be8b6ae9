package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fiscalhub/nfe-analyzer/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for NFe analysis.

The API provides endpoints for:
  - POST /api/v1/analyze       - Analyze an NFe XML document
  - POST /api/v1/upload        - Analyze uploaded XML files (multipart)
  - POST /api/v1/parse         - Parse without classification
  - GET  /api/v1/regime        - Current Simples Nacional regime
  - PUT  /api/v1/regime        - Update the regime config
  - POST /api/v1/simples-rate  - Effective rate for a revenue level
  - GET  /health               - Health check

Examples:
  # Start server on default port
  nfe-analyzer serve

  # Start on custom address with a custom CEST table
  nfe-analyzer serve --address :9090 --reference data/cest.yaml

  # Start in debug mode
  nfe-analyzer serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (default from config)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 0, "HTTP read timeout (default from config)")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 0, "HTTP write timeout (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	serverConfig := &server.Config{
		Address:      cfg.Server.Address,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		Debug:        cfg.Server.Debug || serverDebug,
	}
	if serverAddr != "" {
		serverConfig.Address = serverAddr
	}
	if readTimeout > 0 {
		serverConfig.ReadTimeout = readTimeout
	}
	if writeTimeout > 0 {
		serverConfig.WriteTimeout = writeTimeout
	}

	analyzer, err := newAnalyzer()
	if err != nil {
		return err
	}

	srv := server.NewServer(serverConfig, analyzer, regimeFromFlags(), logger)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	logger.WithField("address", serverConfig.Address).Info("starting server")
	return srv.Run()
}
