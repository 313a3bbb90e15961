package cmd

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"yqhp/hookserver/internal/hook"
	"yqhp/hookserver/internal/hooks/all"
)

// hooksCmd 列出启用的钩子，不做初始化
var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "按初始化顺序列出启用的钩子",
	Example: `  hookserver hooks --config config.yaml
  hookserver hooks --set database.enabled=true --set database.driver=sqlite --set database.path=app.db`,
	RunE: runHooks,
}

func init() {
	rootCmd.AddCommand(hooksCmd)
}

func runHooks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := hook.Register(cfg, all.Builtin(), nil)
	if err != nil {
		return err
	}
	printHooks(out(cmd), reg)
	return nil
}

func printHooks(w io.Writer, reg *hook.Registry) {
	if reg.Len() == 0 {
		fmt.Fprintln(w, "no hooks enabled")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Group", "Hook", "Destroy", "Reinitialize", "Info"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, g := range reg.Groups(hook.Ascending) {
		for _, name := range g.Names {
			caps, _ := reg.Capabilities(name)
			table.Append([]string{g.Key, name, yesNo(caps.Destroy), yesNo(caps.Reinitialize), yesNo(caps.Info)})
		}
	}
	table.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
