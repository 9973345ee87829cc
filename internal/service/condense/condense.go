// Package condense 提供提示词的令牌估算与超长压缩
package condense

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// 超过上限的提示词在检索前先压缩，保证向量化和生成的输入规模可控
const (
	// MaxPromptTokens 直接放行的令牌上限
	MaxPromptTokens = 500
	// SummaryTokens 压缩目标令牌数，留出余量避免压缩结果仍然超限
	SummaryTokens = 450
)

// Condenser 提示词压缩器
type Condenser struct {
	chatModel model.ChatModel
	maxTokens int
	target    int
}

// Option 压缩器可选配置
type Option func(*Condenser)

// WithLimits 覆盖放行上限和压缩目标
func WithLimits(maxTokens, target int) Option {
	return func(c *Condenser) {
		if maxTokens > 0 {
			c.maxTokens = maxTokens
		}
		if target > 0 {
			c.target = target
		}
	}
}

// NewCondenser 创建压缩器
func NewCondenser(chatModel model.ChatModel, opts ...Option) *Condenser {
	c := &Condenser{
		chatModel: chatModel,
		maxTokens: MaxPromptTokens,
		target:    SummaryTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EstimateTokens 估算文本的令牌数
// CJK 字符按 1 令牌计，其余按每 4 个字符 1 令牌近似
func EstimateTokens(text string) int {
	cjk := 0
	other := 0
	for _, r := range text {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r) {
			cjk++
		} else if !unicode.IsSpace(r) {
			other++
		}
	}
	tokens := cjk + (other+3)/4
	if tokens == 0 && len(strings.TrimSpace(text)) > 0 {
		tokens = 1
	}
	return tokens
}

// ShouldCompress 判断文本是否需要压缩
func (c *Condenser) ShouldCompress(text string) bool {
	return EstimateTokens(text) > c.maxTokens
}

// Compress 用模型把超长提示词压缩到目标令牌数以内
// 压缩失败时记录日志并返回原文，宁可超长也不丢请求
func (c *Condenser) Compress(ctx context.Context, text string) string {
	if c.chatModel == nil {
		return text
	}

	messages := []*schema.Message{
		schema.SystemMessage(fmt.Sprintf(
			"Summarize the following question into at most %d tokens while preserving its core intent and all key details. Output only the summarized question.", c.target)),
		schema.UserMessage(text),
	}

	resp, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		log.Printf("Prompt compression failed, using original text: %v", err)
		return text
	}
	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		log.Printf("Prompt compression returned empty summary, using original text")
		return text
	}
	return summary
}
