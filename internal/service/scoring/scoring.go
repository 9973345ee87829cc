// Package scoring 提供答案质量评分引擎
// 纯函数，无 I/O，供反馈处理并发调用
package scoring

// PriorWeight 贝叶斯先验权重 m：答案自身评分数达到该量级前，租户基线占主导
const PriorWeight = 5

// MinReviews 状态裁决所需的最少评分次数
const MinReviews = 5

// 状态裁决阈值
const (
	canonicalThreshold  = 4.0
	quarantineThreshold = 2.0
)

// Decision 状态裁决结果
// delete 不是存储状态：评分充分但平庸的答案直接淘汰
type Decision string

const (
	DecisionCandidate  Decision = "candidate"
	DecisionCanonical  Decision = "canonical"
	DecisionQuarantine Decision = "quarantine"
	DecisionDelete     Decision = "delete"
)

// BayesianScore 计算贝叶斯收缩后的信任分
// 公式: (v/(v+m))·R + (m/(v+m))·C
// 评分少的答案被拉向租户均值 C，避免单次高分直接封顶；v 增大后自身均值 R 占主导
func BayesianScore(reviewCount int, itemAvg, tenantBaseline float64) float64 {
	totalWeight := float64(reviewCount + PriorWeight)
	if totalWeight == 0 {
		return 0
	}

	itemWeight := float64(reviewCount) / totalWeight
	priorWeight := float64(PriorWeight) / totalWeight

	return itemWeight*itemAvg + priorWeight*tenantBaseline
}

// DetermineStatus 根据评分次数和信任分裁决答案状态
// 四分支决策表：证据不足→candidate；高分→canonical；低分→quarantine；平庸→delete
func DetermineStatus(reviewCount int, score float64) Decision {
	if reviewCount < MinReviews {
		return DecisionCandidate
	}
	if score >= canonicalThreshold {
		return DecisionCanonical
	}
	if score <= quarantineThreshold {
		return DecisionQuarantine
	}
	return DecisionDelete
}
