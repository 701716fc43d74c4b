package main

import (
	"fmt"

	"github.com/RecoveryAshes/LlmsGen/internal/discover"
	"github.com/RecoveryAshes/LlmsGen/internal/resume"
	"github.com/RecoveryAshes/LlmsGen/internal/utils"
	"github.com/spf13/cobra"
)

// resume子命令参数
var (
	resumeSummary  string
	resumeURLFile  string
	resumeSections string
	resumeOutput   string
	resumeDryRun   bool
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "计算剩余待处理URL",
	Long: `从已有摘要文件还原已处理URL集合,对原始来源计算剩余工作集。

输出文件与原始来源同构(平面列表或分节YAML),
可直接作为下次运行的 -f / --sections-file 输入。

示例:
  llmsgen resume --summary output/example.com-summary.txt -f urls.txt -o remaining.txt
  llmsgen resume --summary output/example.com-summary.txt --sections-file sections.yaml -o remaining.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if resumeSummary == "" {
			return fmt.Errorf("必须提供摘要文件路径 (--summary)")
		}
		if resumeURLFile == "" && resumeSections == "" {
			return fmt.Errorf("必须提供原始来源 (-f 或 --sections-file)")
		}
		if resumeURLFile != "" && resumeSections != "" {
			return fmt.Errorf("-f 和 --sections-file 不能同时指定")
		}

		processed, err := resume.ExtractProcessed(resumeSummary)
		if err != nil {
			return err
		}

		if resumeSections != "" {
			sf, err := discover.ReadSectionFile(resumeSections)
			if err != nil {
				return err
			}
			remaining := resume.ResidualSections(sf, processed)

			utils.Infof("📊 续跑计算: 来源%d个URL, 已处理%d个, 剩余%d个 (%d个分节)",
				sf.TotalURLs(), len(processed), remaining.TotalURLs(), len(remaining.Sections))

			if resumeDryRun {
				utils.Info("dry-run模式,不写出文件")
				return nil
			}

			out := resumeOutput
			if out == "" {
				out = resumeSections + ".resume.yaml"
			}
			return resume.WriteSections(out, remaining)
		}

		urls, err := discover.ReadURLFile(resumeURLFile)
		if err != nil {
			return err
		}
		remaining := resume.Residual(urls, processed)

		utils.Infof("📊 续跑计算: 来源%d个URL, 已处理%d个, 剩余%d个",
			len(urls), len(processed), len(remaining))

		if resumeDryRun {
			utils.Info("dry-run模式,不写出文件")
			return nil
		}

		out := resumeOutput
		if out == "" {
			out = resumeURLFile + ".resume.txt"
		}
		return resume.WriteFlat(out, remaining)
	},
}

func init() {
	resumeCmd.Flags().StringVar(&resumeSummary, "summary", "", "已有摘要文件路径 (必需)")
	resumeCmd.Flags().StringVarP(&resumeURLFile, "url-file", "f", "", "原始平面URL文件路径")
	resumeCmd.Flags().StringVar(&resumeSections, "sections-file", "", "原始分节YAML文件路径")
	resumeCmd.Flags().StringVarP(&resumeOutput, "output", "o", "", "剩余URL输出路径 (默认: 来源路径+.resume后缀)")
	resumeCmd.Flags().BoolVar(&resumeDryRun, "dry-run", false, "只计算并打印统计,不写出文件")
}
