package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yqhp/hookserver/common/logger"
	"yqhp/hookserver/internal/hook"
	"yqhp/hookserver/internal/hooks/all"
	"yqhp/hookserver/internal/server"
)

// serveCmd 启动 HTTP 服务
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "初始化钩子并启动 HTTP 服务",
	Long: `按组初始化所有启用的钩子后开始监听。

信号处理：
  - SIGHUP          重置所有钩子（先逆序销毁，再顺序重新初始化）
  - SIGINT/SIGTERM  停止监听并逆序销毁钩子`,
	Example: `  # 使用默认配置启动
  hookserver serve

  # 使用配置文件并启用数据库钩子
  hookserver serve --config config.yaml --set database.enabled=true

  # 跳过指定钩子
  hookserver serve --set hooks.disabled=10-storage`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	initLogger(cfg)
	defer logger.Sync()

	log := logger.L()
	log.Info("starting hookserver",
		zap.String("version", Version),
		zap.String("env", cfg.App.Env),
		zap.String("addr", cfg.Server.Addr()))

	reg := server.NewRegistry()
	orch := hook.New(cfg,
		hook.WithLogger(log),
		hook.WithMetrics(hook.NewMetrics(reg)),
	)
	return server.New(cfg, orch, reg).Run(cmd.Context(), all.Builtin())
}
