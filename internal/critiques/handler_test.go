package critiques_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"novel-backend/internal/bootstrap"
	"novel-backend/internal/shared/config"
)

func newRouter(t *testing.T, cfg config.Config) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg.Port = "0"
	cfg.Env = "dev"
	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app.Router
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func seedChapter(t *testing.T, router http.Handler, content string) string {
	t.Helper()
	resp := doJSON(t, router, http.MethodPost, "/api/v1/volumes", map[string]string{"title": "第一卷"})
	var vol struct {
		VolumeID string `json:"volumeId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&vol); err != nil {
		t.Fatalf("decode volume: %v", err)
	}
	resp = doJSON(t, router, http.MethodPost, "/api/v1/chapters", map[string]string{
		"volumeId": vol.VolumeID,
		"title":    "雨夜",
		"content":  content,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("seed chapter: %d %s", resp.Code, resp.Body.String())
	}
	var ch struct {
		ChapterID string `json:"chapterId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ch); err != nil {
		t.Fatalf("decode chapter: %v", err)
	}
	return ch.ChapterID
}

type viewPayload struct {
	HasCached bool   `json:"hasCached"`
	Changed   bool   `json:"changed"`
	Reused    bool   `json:"reused"`
	Provider  string `json:"provider"`
	Critique  *struct {
		Scores []struct {
			Category     string `json:"category"`
			Value        int    `json:"value"`
			Tier         string `json:"tier"`
			WidthPercent int    `json:"widthPercent"`
		} `json:"scores"`
		Suggestions []string `json:"suggestions"`
		Summary     struct {
			OverallScore int `json:"overallScore"`
		} `json:"summary"`
	} `json:"critique"`
}

func TestGenerateThenReuse(t *testing.T) {
	router := newRouter(t, config.Config{})
	id := seedChapter(t, router, "林晚推開門，風雪灌進來。")

	resp := doJSON(t, router, http.MethodGet, "/api/v1/chapters/"+id+"/critique", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var view viewPayload
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.HasCached || view.Critique != nil {
		t.Fatalf("expected no stored critique, got %+v", view)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/chapters/"+id+"/critique", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var generated viewPayload
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		t.Fatalf("decode generated: %v", err)
	}
	if generated.Reused || generated.Provider != "mock" || generated.Critique == nil {
		t.Fatalf("unexpected generate response: %+v", generated)
	}
	if len(generated.Critique.Scores) != 5 || generated.Critique.Summary.OverallScore != 7 {
		t.Fatalf("unexpected critique: %+v", generated.Critique)
	}
	first := generated.Critique.Scores[0]
	if first.Category != "pacing" || first.Tier != "good" || first.WidthPercent != 70 {
		t.Fatalf("unexpected first score: %+v", first)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/chapters/"+id+"/critique", map[string]any{"provider": "MOCK"})
	var again viewPayload
	if err := json.NewDecoder(resp.Body).Decode(&again); err != nil {
		t.Fatalf("decode again: %v", err)
	}
	if !again.Reused {
		t.Fatalf("expected stored critique to be reused")
	}
}

func TestGenerateErrors(t *testing.T) {
	router := newRouter(t, config.Config{})
	id := seedChapter(t, router, "內容")

	tests := []struct {
		name     string
		path     string
		headers  []string
		wantCode int
		wantErr  string
	}{
		{name: "unknown chapter", path: "/api/v1/chapters/missing/critique", wantCode: http.StatusNotFound, wantErr: "NOT_FOUND"},
		{name: "unknown provider header", path: "/api/v1/chapters/" + id + "/critique", headers: []string{"X-LLM-Provider", "nope"}, wantCode: http.StatusBadRequest, wantErr: "UNKNOWN_PROVIDER"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, router, http.MethodPost, tt.path, nil, tt.headers...)
			if resp.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, resp.Code)
			}
			if !strings.Contains(resp.Body.String(), tt.wantErr) {
				t.Fatalf("expected %s in %s", tt.wantErr, resp.Body.String())
			}
		})
	}
}

func TestBatchEndpoint(t *testing.T) {
	router := newRouter(t, config.Config{CritiqueBatchConcurrency: 2})
	a := seedChapter(t, router, "第一章內容。")
	b := seedChapter(t, router, "第二章內容。")

	resp := doJSON(t, router, http.MethodPost, "/api/v1/critiques/batch", map[string]any{
		"chapterIds": []string{a, b, "missing"},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var payload struct {
		Items []struct {
			ChapterID string `json:"chapterId"`
			OK        bool   `json:"ok"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode batch: %v", err)
	}
	if len(payload.Items) != 3 || !payload.Items[0].OK || !payload.Items[1].OK || payload.Items[2].OK {
		t.Fatalf("unexpected batch items: %+v", payload.Items)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/critiques/batch", map[string]any{"chapterIds": []string{}})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for empty batch, got %d", resp.Code)
	}
}

func TestParseAndSchemaEndpoints(t *testing.T) {
	router := newRouter(t, config.Config{})

	resp := doJSON(t, router, http.MethodPost, "/api/v1/critiques/parse", map[string]string{
		"text": "═══ 三、鉤子強度 ═══\n鉤子評分（1-10）：3",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var parsed struct {
		Critique struct {
			Scores []struct {
				Category string `json:"category"`
				Tier     string `json:"tier"`
			} `json:"scores"`
			Summary struct {
				OverallScore int `json:"overallScore"`
			} `json:"summary"`
		} `json:"critique"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode parse: %v", err)
	}
	if len(parsed.Critique.Scores) != 1 || parsed.Critique.Scores[0].Tier != "poor" || parsed.Critique.Summary.OverallScore != 3 {
		t.Fatalf("unexpected parse result: %+v", parsed)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/critiques/parse", map[string]string{"text": "   "})
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"critique":null`) {
		t.Fatalf("expected null critique for blank text, got %d %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(t, router, http.MethodGet, "/api/v1/critiques/schema", nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "CritiqueData") {
		t.Fatalf("unexpected schema response: %d", resp.Code)
	}
}

func TestCritiqueRouteIsRateLimited(t *testing.T) {
	router := newRouter(t, config.Config{RateLimitRPS: 0.001, RateLimitBurst: 1})
	id := seedChapter(t, router, "內容")

	first := doJSON(t, router, http.MethodPost, "/api/v1/chapters/"+id+"/critique", nil)
	if first.Code != http.StatusOK {
		t.Fatalf("expected first call to pass, got %d", first.Code)
	}
	second := doJSON(t, router, http.MethodPost, "/api/v1/chapters/"+id+"/critique", nil)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	view := doJSON(t, router, http.MethodGet, "/api/v1/chapters/"+id+"/critique", nil)
	if view.Code != http.StatusOK {
		t.Fatalf("reads should not be limited, got %d", view.Code)
	}
}
