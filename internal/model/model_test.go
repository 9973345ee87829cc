// Package model 数据模型单元测试
package model

import "testing"

// ========== Answer 测试 ==========

func TestAnswer_MeanRating(t *testing.T) {
	a := &Answer{ReuseCount: 4, RatingSum: 18}
	if got := a.MeanRating(); got != 4.5 {
		t.Errorf("MeanRating() = %v, want 4.5", got)
	}

	empty := &Answer{}
	if got := empty.MeanRating(); got != 0 {
		t.Errorf("MeanRating() without ratings = %v, want 0", got)
	}
}

func TestAnswer_SourceDocIDsRoundTrip(t *testing.T) {
	a := &Answer{}
	if err := a.SetSourceDocIDs([]string{"c1", "c2"}); err != nil {
		t.Fatalf("SetSourceDocIDs() error: %v", err)
	}

	ids := a.GetSourceDocIDs()
	if len(ids) != 2 || ids[0] != "c1" || ids[1] != "c2" {
		t.Errorf("GetSourceDocIDs() = %v, want [c1 c2]", ids)
	}
}

func TestAnswer_EmptyListEncodesEmpty(t *testing.T) {
	a := &Answer{}
	if err := a.SetSourceDocIDs(nil); err != nil {
		t.Fatalf("SetSourceDocIDs(nil) error: %v", err)
	}
	if a.SourceDocIDs != "" {
		t.Errorf("empty list should encode to empty string, got %q", a.SourceDocIDs)
	}
	if got := a.GetSourceDocIDs(); got != nil {
		t.Errorf("GetSourceDocIDs() = %v, want nil", got)
	}
}

// ========== Interaction 测试 ==========

func TestInteraction_HasRating(t *testing.T) {
	i := &Interaction{}
	if i.HasRating() {
		t.Error("HasRating() should be false before feedback")
	}

	rating := 4
	i.Rating = &rating
	if !i.HasRating() {
		t.Error("HasRating() should be true after feedback")
	}
}

func TestInteraction_AnswerIDsRoundTrip(t *testing.T) {
	i := &Interaction{}
	if err := i.SetAnswerIDs([]string{"a1", "a2"}); err != nil {
		t.Fatalf("SetAnswerIDs() error: %v", err)
	}
	ids := i.GetAnswerIDs()
	if len(ids) != 2 || ids[0] != "a1" || ids[1] != "a2" {
		t.Errorf("GetAnswerIDs() = %v, want [a1 a2]", ids)
	}
}

// ========== TenantStats 测试 ==========

func TestTenantStats_Average(t *testing.T) {
	stats := &TenantStats{RatingSum: 21, RatingCount: 6}
	if got := stats.Average(); got != 3.5 {
		t.Errorf("Average() = %v, want 3.5", got)
	}
}

func TestTenantStats_AverageDefaults(t *testing.T) {
	var nilStats *TenantStats
	if got := nilStats.Average(); got != DefaultBaseline {
		t.Errorf("nil stats Average() = %v, want default baseline", got)
	}

	empty := &TenantStats{}
	if got := empty.Average(); got != DefaultBaseline {
		t.Errorf("empty stats Average() = %v, want default baseline", got)
	}
}
