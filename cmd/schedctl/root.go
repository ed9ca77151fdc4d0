package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/config"
	applogger "github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/logger"
)

// cliContext 各子命令共享的全局参数与依赖
type cliContext struct {
	output     string
	configPath string
	logLevel   string
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	cc := &cliContext{}

	rootCmd := &cobra.Command{
		Use:          "schedctl",
		Short:        "Schedulizer 命令行工具",
		Long:         "计算班级/分组人数分配、换算教室可用性时段，并执行数据库迁移。",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cc.output {
			case "text", "json", "yaml":
			default:
				return fmt.Errorf("不支持的输出格式 %q（可选 text|json|yaml）", cc.output)
			}
			logger, err := applogger.NewLogger(&config.LogConfig{Level: cc.logLevel, Format: "console"})
			if err != nil {
				return err
			}
			cc.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cc.logger != nil {
				cc.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cc.output, "output", "o", "text", "输出格式: text|json|yaml")
	rootCmd.PersistentFlags().StringVar(&cc.configPath, "config", "", "配置文件路径（仅 migrate 使用）")
	rootCmd.PersistentFlags().StringVar(&cc.logLevel, "log-level", "warn", "日志级别: debug|info|warn|error")

	rootCmd.AddCommand(distributeCmd(cc))
	rootCmd.AddCommand(sectionsCmd(cc))
	rootCmd.AddCommand(availabilityCmd(cc))
	rootCmd.AddCommand(migrateCmd(cc))

	return rootCmd
}

// render 按 -o 输出结构化结果；text 模式调用 text 回调
func (cc *cliContext) render(w io.Writer, v interface{}, text func(io.Writer)) error {
	switch cc.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		text(w)
		return nil
	}
}
