// Package cmd 提供 hookserver CLI 的命令实现
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"yqhp/hookserver/common/config"
	"yqhp/hookserver/common/logger"
)

// Version 通过 -ldflags "-X yqhp/hookserver/cmd.Version=..." 注入
var Version = "0.1.0"

var (
	// 全局配置
	cfgFile   string
	debug     bool
	overrides []string
)

// rootCmd 是根命令
var rootCmd = &cobra.Command{
	Use:   "hookserver",
	Short: "分阶段钩子生命周期服务",
	Long: `hookserver 按名称前缀分组启动钩子（数据库、缓存、对象存储、定时任务），
同组并发、组间有序，关闭时逆序销毁，并通过 HTTP 暴露状态与指标。`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// 全局 flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "启用调试日志")
	rootCmd.PersistentFlags().StringArrayVar(&overrides, "set", nil, "覆盖配置项，例如 --set server.port=9090")

	// 禁用默认的 completion 命令
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetRootCmd 返回根命令（用于测试）
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// loadConfig applies defaults < file < HS_* env < --set, then validates.
func loadConfig() (*config.Config, error) {
	args, err := config.ParseOverrides(overrides)
	if err != nil {
		return nil, err
	}

	loader := config.NewLoader().WithCmdArgs(args)
	if cfgFile != "" {
		loader = loader.WithConfigPath(cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	if debug {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}
	return cfg, nil
}

func initLogger(cfg *config.Config) {
	logger.Init(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	})
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
