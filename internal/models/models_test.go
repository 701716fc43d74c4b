package models

import "testing"

func TestNewFilteredURLSet(t *testing.T) {
	tests := []struct {
		name      string
		original  []string
		filtered  []string
		wantRatio float64
	}{
		{
			name:      "部分保留",
			original:  []string{"a", "b", "c", "d"},
			filtered:  []string{"a", "c"},
			wantRatio: 0.5,
		},
		{
			name:      "全部保留",
			original:  []string{"a", "b"},
			filtered:  []string{"a", "b"},
			wantRatio: 1.0,
		},
		{
			name:      "原始为空时比例为0",
			original:  []string{},
			filtered:  []string{},
			wantRatio: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewFilteredURLSet(tt.original, tt.filtered)
			if got.FilterCount != len(tt.filtered) {
				t.Errorf("FilterCount = %d, 期望 %d", got.FilterCount, len(tt.filtered))
			}
			if got.FilterRatio != tt.wantRatio {
				t.Errorf("FilterRatio = %f, 期望 %f", got.FilterRatio, tt.wantRatio)
			}
			if got.FilterRatio < 0.0 || got.FilterRatio > 1.0 {
				t.Errorf("FilterRatio超出[0,1]: %f", got.FilterRatio)
			}
		})
	}
}

func TestSuccessRate(t *testing.T) {
	tests := []struct {
		name       string
		successful []string
		failed     []string
		want       float64
	}{
		{
			name:       "部分成功",
			successful: []string{"a", "b", "c"},
			failed:     []string{"d"},
			want:       0.75,
		},
		{
			name:       "未尝试任何URL时为0",
			successful: nil,
			failed:     nil,
			want:       0.0,
		},
		{
			name:       "全部失败",
			successful: nil,
			failed:     []string{"a", "b"},
			want:       0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &RunResult{SuccessfulURLs: tt.successful, FailedURLList: tt.failed}
			if got := r.SuccessRate(); got != tt.want {
				t.Errorf("SuccessRate = %f, 期望 %f", got, tt.want)
			}
		})
	}
}

func TestDomainOf(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "普通域名", url: "https://example.com/path", want: "example.com"},
		{name: "去掉www前缀", url: "https://www.example.com", want: "example.com"},
		{name: "端口号转下划线", url: "http://example.com:8080", want: "example.com_8080"},
		{name: "无主机名报错", url: "not-a-url", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DomainOf(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Error("应返回错误")
				}
				return
			}
			if err != nil {
				t.Fatalf("意外错误: %v", err)
			}
			if got != tt.want {
				t.Errorf("DomainOf = %q, 期望 %q", got, tt.want)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "合法https", url: "https://example.com/a", wantErr: false},
		{name: "合法http", url: "http://example.com", wantErr: false},
		{name: "缺少协议", url: "example.com/a", wantErr: true},
		{name: "非http协议", url: "ftp://example.com", wantErr: true},
		{name: "缺少主机名", url: "https://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) = %v, wantErr = %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestGenerateConfigValidate(t *testing.T) {
	t.Run("默认配置合法", func(t *testing.T) {
		config := DefaultGenerateConfig()
		if err := config.Validate(); err != nil {
			t.Errorf("默认配置应通过验证: %v", err)
		}
	})

	t.Run("双输出禁用是配置错误", func(t *testing.T) {
		config := DefaultGenerateConfig()
		config.EmitSummary = false
		config.EmitFullText = false
		if err := config.Validate(); err == nil {
			t.Error("摘要和全文同时禁用应报错")
		}
	})

	t.Run("预算越界报错", func(t *testing.T) {
		config := DefaultGenerateConfig()
		config.MaxURLs = 0
		if err := config.Validate(); err == nil {
			t.Error("URL预算为0应报错")
		}
	})
}
