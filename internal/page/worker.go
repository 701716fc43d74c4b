package page

import (
	"context"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/RecoveryAshes/LlmsGen/internal/models"
	"github.com/RecoveryAshes/LlmsGen/internal/utils"
)

// Worker 抓取-提取工作器
// 不持有共享可变状态,结果只通过返回值交给协调器
type Worker struct {
	fetcher   *Fetcher
	converter *md.Converter
}

// NewWorker 创建工作器
func NewWorker(fetcher *Fetcher) *Worker {
	return &Worker{
		fetcher:   fetcher,
		converter: NewConverter(),
	}
}

// Process 对单个URL执行完整流水线,返回页面结果
// 不可恢复的失败返回nil而非错误,失败是数据不是异常
// index是URL在过滤截断后序列中的位置,作为输出排序的唯一键
func (w *Worker) Process(ctx context.Context, pageURL string, index int) *models.PageResult {
	raw, err := w.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		utils.Warnf("❌ 页面抓取失败 [%s]: %v", pageURL, err)
		return nil
	}

	normalized := Normalize(raw)
	doc := ParseDocument(normalized, pageURL)

	title := ExtractTitle(doc)
	description := ExtractDescription(doc)

	StripNonContent(doc)
	body := Clean(ConvertBody(w.converter, doc))

	utils.Debugf("页面处理完成 [%d] %s: %s (%d字符)", index, pageURL, title, len(body))

	return &models.PageResult{
		URL:         pageURL,
		Title:       title,
		Description: description,
		Markdown:    body,
		Index:       index,
		FetchedAt:   time.Now(),
	}
}
