package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RecoveryAshes/LlmsGen/internal/discover"
	"github.com/RecoveryAshes/LlmsGen/internal/filter"
	"github.com/RecoveryAshes/LlmsGen/internal/models"
	"github.com/RecoveryAshes/LlmsGen/internal/page"
	"github.com/RecoveryAshes/LlmsGen/internal/utils"
	"github.com/spf13/cobra"
)

// estimate子命令参数
var (
	estimateSitemap string
	estimateSample  int
	estimateExclude string
	estimatePattern []string
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "站点地图成本预估",
	Long: `对站点地图索引做采样估算,不遍历全部子站点地图。

最多遍历--sample个子站点地图,按样本外推URL总数;
提供-p模式时同时给出模式在样本上的命中率预览。

示例:
  llmsgen estimate --sitemap https://example.com/sitemap.xml --sample 3 -p ".*docs.*"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if estimateSitemap == "" {
			return fmt.Errorf("必须提供站点地图URL (--sitemap)")
		}
		if err := models.ValidateURL(estimateSitemap); err != nil {
			return fmt.Errorf("无效的站点地图URL: %w", err)
		}
		if estimateSample < 1 {
			return fmt.Errorf("采样数必须大于0,当前值: %d", estimateSample)
		}
		if len(estimatePattern) > 0 {
			if err := filter.ValidateAll(estimatePattern); err != nil {
				return err
			}
		}

		defaults := models.DefaultGenerateConfig()
		fetcher := page.NewFetcher(defaults.UserAgent, 30*time.Second, defaults.MaxRetries, time.Second)
		sm := discover.NewSitemap(fetcher, estimateExclude)

		est, err := sm.Sample(context.Background(), estimateSitemap, estimateSample)
		if err != nil {
			return fmt.Errorf("站点地图采样失败: %w", err)
		}

		utils.Info("\n==================================================")
		utils.Info("📊 站点地图预估")
		utils.Info("==================================================")
		if est.Exact {
			utils.Infof("URL总数: %d (精确值,根为urlset)", est.EstimatedTotal)
		} else {
			utils.Infof("已采样子站点地图: %d/%d", est.SampledSitemaps, est.TotalSitemaps)
			utils.Infof("样本URL数: %d", len(est.SampleURLs))
			utils.Infof("估算URL总数: %d", est.EstimatedTotal)
		}

		if len(estimatePattern) > 0 && len(est.SampleURLs) > 0 {
			fset, err := filter.FilterMulti(est.SampleURLs, estimatePattern)
			if err != nil {
				return err
			}
			projected := int(fset.FilterRatio * float64(est.EstimatedTotal))
			utils.Infof("模式命中率(样本): %.1f%% (%d/%d)",
				fset.FilterRatio*100, fset.FilterCount, len(est.SampleURLs))
			utils.Infof("预计匹配URL数: %d (模式: %s)", projected, strings.Join(estimatePattern, " | "))
		}
		utils.Info("==================================================")

		return nil
	},
}

func init() {
	estimateCmd.Flags().StringVar(&estimateSitemap, "sitemap", "", "XML站点地图URL (必需)")
	estimateCmd.Flags().IntVar(&estimateSample, "sample", 3, "最多遍历的子站点地图数")
	estimateCmd.Flags().StringVar(&estimateExclude, "exclude-sitemap", "", "子站点地图URL排除子串")
	estimateCmd.Flags().StringSliceVarP(&estimatePattern, "pattern", "p", []string{}, "命中率预览用的正则模式")
}
