package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/searchlab/retrieval-eval-platform/internal/corpus"
	"github.com/searchlab/retrieval-eval-platform/internal/qrels"
	"github.com/searchlab/retrieval-eval-platform/internal/search"
	"github.com/searchlab/retrieval-eval-platform/pkg/config"
)

func newTestServer(t *testing.T) (*httptest.Server, *Handler) {
	t.Helper()
	cfg := config.SearchConfig{
		DefaultLimit:    10,
		MaxResults:      100,
		MaxDocumentSize: 1 << 20,
		MaxBatchSize:    1000,
	}
	h := New(corpus.NewService(cfg, nil), qrels.NewMemoryStore(), nil, nil, nil, cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/corpus", h.Ingest)
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/evaluate", h.Evaluate)
	mux.HandleFunc("POST /api/v1/judgments", h.SaveJudgment)
	mux.HandleFunc("GET /api/v1/judgments", h.GetJudgment)
	mux.HandleFunc("DELETE /api/v1/judgments", h.DeleteJudgment)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, h
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return out
}

func ingestSampleCorpus(t *testing.T, baseURL string) {
	t.Helper()
	resp := postJSON(t, baseURL+"/api/v1/corpus",
		`{"documents":["the cat sat","the dog ran","cats and dogs"]}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("ingest status = %d, want 201", resp.StatusCode)
	}
}

func TestIngestAndSearch(t *testing.T) {
	srv, _ := newTestServer(t)
	ingestSampleCorpus(t, srv.URL)

	resp, err := http.Get(srv.URL + "/api/v1/search?q=cat")
	if err != nil {
		t.Fatalf("GET search: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search status = %d, want 200", resp.StatusCode)
	}
	result := decodeBody[search.Result](t, resp)
	if result.TotalHits != 2 {
		t.Errorf("TotalHits = %d, want 2", result.TotalHits)
	}
	gotIDs := search.DocIDs(result.Results)
	if len(gotIDs) != 2 || gotIDs[0] != 1 || gotIDs[1] != 3 {
		t.Errorf("doc ids = %v, want [1 3]", gotIDs)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/v1/search")
	if err != nil {
		t.Fatalf("GET search: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSearchLimitClamped(t *testing.T) {
	srv, _ := newTestServer(t)
	ingestSampleCorpus(t, srv.URL)

	resp, err := http.Get(srv.URL + "/api/v1/search?q=cat+dog&limit=1")
	if err != nil {
		t.Fatalf("GET search: %v", err)
	}
	result := decodeBody[search.Result](t, resp)
	if len(result.Results) != 1 {
		t.Errorf("len(Results) = %d, want 1", len(result.Results))
	}
	if result.TotalHits != 3 {
		t.Errorf("TotalHits = %d, want 3", result.TotalHits)
	}
}

func TestIngestRejectsMissingBody(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/v1/corpus", `{}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestEvaluateWithInlineJudgment(t *testing.T) {
	srv, _ := newTestServer(t)
	ingestSampleCorpus(t, srv.URL)

	resp := postJSON(t, srv.URL+"/api/v1/evaluate", `{"query":"cat","relevant":[1]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("evaluate status = %d, want 200", resp.StatusCode)
	}
	out := decodeBody[EvaluateResponse](t, resp)

	// Query "cat" retrieves docs 1 and 3; only doc 1 is judged relevant.
	if len(out.Retrieved) != 2 {
		t.Fatalf("retrieved = %v, want two docs", out.Retrieved)
	}
	if math.Abs(out.Report.PrecisionAt10-0.1) > 1e-9 {
		t.Errorf("P@10 = %v, want 0.1", out.Report.PrecisionAt10)
	}
	if math.Abs(out.Report.Recall-0.5) > 1e-9 {
		t.Errorf("Recall = %v, want 0.5", out.Report.Recall)
	}
	if out.Report.MRR != 1.0 {
		t.Errorf("MRR = %v, want 1.0", out.Report.MRR)
	}
}

func TestEvaluateWithStoredJudgment(t *testing.T) {
	srv, _ := newTestServer(t)
	ingestSampleCorpus(t, srv.URL)

	resp := postJSON(t, srv.URL+"/api/v1/judgments", `{"query":"cat","relevant":[1,3]}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("save judgment status = %d, want 201", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/api/v1/evaluate", `{"query":"cat"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("evaluate status = %d, want 200", resp.StatusCode)
	}
	out := decodeBody[EvaluateResponse](t, resp)
	if out.Report.Recall != 1.0 {
		t.Errorf("Recall = %v, want 1.0 (both retrieved docs judged relevant)", out.Report.Recall)
	}
}

func TestEvaluateEmptyCorpus(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/v1/evaluate", `{"query":"cat","relevant":[1]}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestEvaluateMissingJudgment(t *testing.T) {
	srv, _ := newTestServer(t)
	ingestSampleCorpus(t, srv.URL)

	resp := postJSON(t, srv.URL+"/api/v1/evaluate", `{"query":"unjudged"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestJudgmentLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/judgments", `{"query":"cat","relevant":[1,3,5]}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("save status = %d, want 201", resp.StatusCode)
	}

	getResp, err := http.Get(srv.URL + "/api/v1/judgments?query=cat")
	if err != nil {
		t.Fatalf("GET judgments: %v", err)
	}
	got := decodeBody[JudgmentRequest](t, getResp)
	if len(got.Relevant) != 3 {
		t.Errorf("Relevant = %v, want 3 ids", got.Relevant)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/judgments?query=cat", nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE judgments: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", delResp.StatusCode)
	}

	getResp2, err := http.Get(srv.URL + "/api/v1/judgments?query=cat")
	if err != nil {
		t.Fatalf("GET judgments: %v", err)
	}
	getResp2.Body.Close()
	if getResp2.StatusCode != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", getResp2.StatusCode)
	}
}

func TestSaveJudgmentRejectsInvalidIDs(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/v1/judgments", `{"query":"cat","relevant":[0]}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
