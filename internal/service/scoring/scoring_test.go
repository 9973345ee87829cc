// Package scoring 评分引擎单元测试
package scoring

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// ========== BayesianScore 测试 ==========

func TestBayesianScore_NoReviews(t *testing.T) {
	// v=0 时完全收缩到租户基线
	score := BayesianScore(0, 0, 3.5)

	if !almostEqual(score, 3.5) {
		t.Errorf("BayesianScore(0, 0, 3.5) = %v, want 3.5", score)
	}
}

func TestBayesianScore_EqualWeight(t *testing.T) {
	// v=m=5 时自身均值和基线各占一半
	score := BayesianScore(5, 5.0, 3.0)

	if !almostEqual(score, 4.0) {
		t.Errorf("BayesianScore(5, 5.0, 3.0) = %v, want 4.0", score)
	}
}

func TestBayesianScore_SingleHighRating(t *testing.T) {
	// 单次5分不应直接封顶：(1/6)*5 + (5/6)*3.5 = 3.75
	score := BayesianScore(1, 5.0, 3.5)

	if !almostEqual(score, 3.75) {
		t.Errorf("BayesianScore(1, 5.0, 3.5) = %v, want 3.75", score)
	}
}

func TestBayesianScore_ItemDominatesWithVolume(t *testing.T) {
	// 评分量大时自身均值占主导
	score := BayesianScore(95, 5.0, 3.0)

	want := 0.95*5.0 + 0.05*3.0
	if !almostEqual(score, want) {
		t.Errorf("BayesianScore(95, 5.0, 3.0) = %v, want %v", score, want)
	}
}

func TestBayesianScore_MonotonicInItemAvg(t *testing.T) {
	low := BayesianScore(10, 2.0, 3.5)
	high := BayesianScore(10, 4.0, 3.5)

	if low >= high {
		t.Errorf("score should increase with item average: low=%v high=%v", low, high)
	}
}

func TestBayesianScore_ConvergesToItemAvg(t *testing.T) {
	prev := math.Abs(BayesianScore(1, 5.0, 1.0) - 5.0)
	for _, v := range []int{10, 100, 1000} {
		diff := math.Abs(BayesianScore(v, 5.0, 1.0) - 5.0)
		if diff >= prev {
			t.Errorf("score should converge to item average as v grows: v=%d diff=%v prev=%v", v, diff, prev)
		}
		prev = diff
	}
}

// ========== DetermineStatus 测试 ==========

func TestDetermineStatus_InsufficientEvidence(t *testing.T) {
	// v<5 时无论分数多高都是 candidate
	for v := 0; v < MinReviews; v++ {
		if got := DetermineStatus(v, 5.0); got != DecisionCandidate {
			t.Errorf("DetermineStatus(%d, 5.0) = %v, want candidate", v, got)
		}
		if got := DetermineStatus(v, 1.0); got != DecisionCandidate {
			t.Errorf("DetermineStatus(%d, 1.0) = %v, want candidate", v, got)
		}
	}
}

func TestDetermineStatus_Thresholds(t *testing.T) {
	tests := []struct {
		name  string
		count int
		score float64
		want  Decision
	}{
		{"exactly canonical threshold", 5, 4.0, DecisionCanonical},
		{"above canonical threshold", 10, 4.8, DecisionCanonical},
		{"exactly quarantine threshold", 5, 2.0, DecisionQuarantine},
		{"below quarantine threshold", 10, 1.2, DecisionQuarantine},
		{"mediocre is deleted", 5, 3.0, DecisionDelete},
		{"just above quarantine", 5, 2.01, DecisionDelete},
		{"just below canonical", 5, 3.99, DecisionDelete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineStatus(tt.count, tt.score); got != tt.want {
				t.Errorf("DetermineStatus(%d, %v) = %v, want %v", tt.count, tt.score, got, tt.want)
			}
		})
	}
}

// ========== 端到端序列 测试 ==========

func TestScoringSequence_ConsistentHighRatings(t *testing.T) {
	// 连续5分评价：前4次停留在 candidate，第5次晋升 canonical
	baseline := 3.5
	sum := 0.0

	for v := 1; v <= 5; v++ {
		sum += 5.0
		mean := sum / float64(v)
		score := BayesianScore(v, mean, baseline)
		decision := DetermineStatus(v, score)

		if v < MinReviews {
			if decision != DecisionCandidate {
				t.Errorf("after %d ratings decision = %v, want candidate", v, decision)
			}
			continue
		}

		// v=5: (5/10)*5 + (5/10)*3.5 = 4.25 >= 4.0
		if !almostEqual(score, 4.25) {
			t.Errorf("score after 5 ratings = %v, want 4.25", score)
		}
		if decision != DecisionCanonical {
			t.Errorf("after %d ratings decision = %v, want canonical", v, decision)
		}
	}
}

func TestScoringSequence_ConsistentLowRatings(t *testing.T) {
	// 连续1分评价，基线偏低时第5次进入 quarantine
	baseline := 2.0
	sum := 0.0

	var decision Decision
	for v := 1; v <= 5; v++ {
		sum += 1.0
		score := BayesianScore(v, sum/float64(v), baseline)
		decision = DetermineStatus(v, score)
	}

	// v=5: (5/10)*1 + (5/10)*2 = 1.5 <= 2.0
	if decision != DecisionQuarantine {
		t.Errorf("decision after 5 low ratings = %v, want quarantine", decision)
	}
}
