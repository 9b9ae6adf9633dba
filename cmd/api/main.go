package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cqle/dba-virtual/backend/internal/config"
	"github.com/cqle/dba-virtual/backend/internal/logging"
)

const (
	appName    = "dba-virtual"
	appVersion = "0.3.0"
)

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "CQLE DBA Virtual backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configFile)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "可选的 YAML 配置文件")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configFile)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移后退出",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(configFile)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "显示版本",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s v%s\n", appName, appVersion)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads .env and configuration, then installs the process logger.
func bootstrap(configFile string) (*config.Config, zerolog.Logger, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(cfg.Log, appName)
	zlog.Logger = logger
	logging.BridgeStdlib(logger)

	if envErr != nil {
		logger.Debug().Err(envErr).Msg("no .env file, using system environment only")
	}
	return cfg, logger, nil
}
