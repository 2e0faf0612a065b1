package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/trackvault/pkg/app"
	"github.com/yeisme/trackvault/pkg/configs"
	ctxPkg "github.com/yeisme/trackvault/pkg/context"
	"github.com/yeisme/trackvault/pkg/internal/jobs"
	"github.com/yeisme/trackvault/pkg/internal/storage"
)

var (
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}

	// 执行一次清理后退出，适合在没有常驻调度器的环境中由外部 cron 调用.
	cleanupCmd = &cobra.Command{
		Use:   "cleanup",
		Short: "remove orphaned upload objects and dangling file records once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.GetConfig()

			mgr, err := storage.New(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("init storage: %w", err)
			}
			defer func() { _ = mgr.Close() }()

			ctx := ctxPkg.WithStorageManager(cmd.Context(), mgr)

			report, err := jobs.RunCleanup(ctx, cfg.Cleanup)
			if err != nil {
				return err
			}

			b, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			return nil
		},
	}
)

func runServe(cmd *cobra.Command) error {
	a, err := app.NewApp(cmd.Context())
	if err != nil {
		return err
	}

	return a.Run(cmd.Context())
}

// registerServeCommands 注册服务与清理命令.
func registerServeCommands() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cleanupCmd)
}
