// Package condense 压缩器单元测试
package condense

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// mockChatModel 返回预设摘要
type mockChatModel struct {
	response string
	err      error
	calls    int
}

func (m *mockChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &schema.Message{Role: schema.Assistant, Content: m.response}, nil
}

func (m *mockChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, nil
}

func (m *mockChatModel) BindTools(tools []*schema.ToolInfo) error {
	return nil
}

// ========== EstimateTokens 测试 ==========

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"short ascii", "abcd", 1},
		{"ascii words", "hello world foo!", 4}, // 14 个非空白字符
		{"cjk counts per rune", "你好世界", 4},
		{"mixed", "hi 你好", 3}, // 2 个 CJK + 2 个 ASCII
		{"whitespace only trims to zero", "   ", 0},
		{"single char rounds up", "a", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateTokens(tt.text); got != tt.want {
				t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

// ========== ShouldCompress 测试 ==========

func TestShouldCompress(t *testing.T) {
	c := NewCondenser(nil)

	short := strings.Repeat("word ", 50)
	if c.ShouldCompress(short) {
		t.Error("short prompt should not require compression")
	}

	long := strings.Repeat("word ", 600) // 600 词，约 600 token
	if !c.ShouldCompress(long) {
		t.Error("long prompt should require compression")
	}
}

func TestShouldCompress_CustomLimits(t *testing.T) {
	// 配置的上限生效，默认上限下放行的文本也会触发压缩
	c := NewCondenser(nil, WithLimits(10, 8))

	text := strings.Repeat("word ", 20) // 约 20 token
	if !c.ShouldCompress(text) {
		t.Error("prompt above the configured ceiling should require compression")
	}

	defaults := NewCondenser(nil, WithLimits(0, 0))
	if defaults.ShouldCompress(text) {
		t.Error("zero limits should keep the defaults")
	}
	if defaults.maxTokens != MaxPromptTokens || defaults.target != SummaryTokens {
		t.Errorf("limits = %d/%d, want defaults %d/%d",
			defaults.maxTokens, defaults.target, MaxPromptTokens, SummaryTokens)
	}
}

// ========== Compress 测试 ==========

func TestCompress_Success(t *testing.T) {
	chatModel := &mockChatModel{response: "condensed question"}
	c := NewCondenser(chatModel)

	got := c.Compress(context.Background(), strings.Repeat("long text ", 200))
	if got != "condensed question" {
		t.Errorf("Compress() = %q, want summary from model", got)
	}
	if chatModel.calls != 1 {
		t.Errorf("chat model called %d times, want 1", chatModel.calls)
	}
}

func TestCompress_ModelFailureReturnsOriginal(t *testing.T) {
	chatModel := &mockChatModel{err: errors.New("model unavailable")}
	c := NewCondenser(chatModel)

	original := "the original question"
	if got := c.Compress(context.Background(), original); got != original {
		t.Errorf("Compress() on model failure = %q, want original text", got)
	}
}

func TestCompress_EmptySummaryReturnsOriginal(t *testing.T) {
	chatModel := &mockChatModel{response: "   "}
	c := NewCondenser(chatModel)

	original := "the original question"
	if got := c.Compress(context.Background(), original); got != original {
		t.Errorf("Compress() on empty summary = %q, want original text", got)
	}
}

func TestCompress_NilModelReturnsOriginal(t *testing.T) {
	c := NewCondenser(nil)

	original := "the original question"
	if got := c.Compress(context.Background(), original); got != original {
		t.Errorf("Compress() with nil model = %q, want original text", got)
	}
}
