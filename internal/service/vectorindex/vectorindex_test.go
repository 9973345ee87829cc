// Package vectorindex 向量索引单元测试
package vectorindex

import (
	"strings"
	"testing"
)

// ========== BuildKNNQuery 测试 ==========

func TestBuildKNNQuery(t *testing.T) {
	query := BuildKNNQuery("t1", []float64{0.1, 0.2}, 50, 20)

	if query["size"] != 20 {
		t.Errorf("size = %v, want 20", query["size"])
	}

	knn, ok := query["knn"].(map[string]interface{})
	if !ok {
		t.Fatal("query missing knn clause")
	}
	if knn["field"] != FieldEmbedding {
		t.Errorf("knn.field = %v, want %s", knn["field"], FieldEmbedding)
	}
	if knn["k"] != 20 || knn["num_candidates"] != 50 {
		t.Errorf("knn k/num_candidates = %v/%v, want 20/50", knn["k"], knn["num_candidates"])
	}

	// 租户过滤必须存在
	filter, ok := knn["filter"].(map[string]interface{})
	if !ok {
		t.Fatal("knn missing tenant filter")
	}
	term, ok := filter["term"].(map[string]interface{})
	if !ok || term[FieldTenantID] != "t1" {
		t.Errorf("tenant filter = %v, want term on %s=t1", filter, FieldTenantID)
	}

	// 响应不应携带向量
	source, ok := query["_source"].(map[string]interface{})
	if !ok {
		t.Fatal("query missing _source clause")
	}
	excludes, ok := source["excludes"].([]string)
	if !ok || len(excludes) != 1 || excludes[0] != FieldEmbedding {
		t.Errorf("_source.excludes = %v, want [%s]", source["excludes"], FieldEmbedding)
	}
}

// ========== ParseSearchHits 测试 ==========

func TestParseSearchHits(t *testing.T) {
	body := `{
		"hits": {
			"hits": [
				{"_id": "a1", "_score": 0.91, "_source": {"canonical_prompt": "q1", "tenant_id": "t1"}},
				{"_id": "a2", "_score": 0.72, "_source": {"canonical_prompt": "q2", "tenant_id": "t1"}}
			]
		}
	}`

	hits, err := ParseSearchHits(strings.NewReader(body))
	if err != nil {
		t.Fatalf("ParseSearchHits() unexpected error: %v", err)
	}

	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].ID != "a1" || hits[0].Score != 0.91 {
		t.Errorf("hits[0] = %+v, want id=a1 score=0.91", hits[0])
	}
	if prompt, _ := hits[1].Source[FieldPrompt].(string); prompt != "q2" {
		t.Errorf("hits[1] prompt = %q, want q2", prompt)
	}
}

func TestParseSearchHits_Empty(t *testing.T) {
	hits, err := ParseSearchHits(strings.NewReader(`{"hits": {"hits": []}}`))
	if err != nil {
		t.Fatalf("ParseSearchHits() unexpected error: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("got %d hits, want 0", len(hits))
	}
}

func TestParseSearchHits_InvalidJSON(t *testing.T) {
	if _, err := ParseSearchHits(strings.NewReader("not json")); err == nil {
		t.Error("ParseSearchHits() should fail on invalid JSON")
	}
}
