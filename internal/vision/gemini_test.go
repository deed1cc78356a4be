package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func fakeOracle(t *testing.T, replyText string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query: %s", r.URL.RawQuery)
		}

		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) == 0 || len(req.Contents[0].Parts) == 0 {
			t.Error("request carries no parts")
		}

		resp := geminiResponse{}
		resp.Candidates = append(resp.Candidates, struct {
			Content geminiContent `json:"content"`
		}{Content: geminiContent{Parts: []geminiPart{{Text: replyText}}}})
		json.NewEncoder(w).Encode(resp)
	}))
}

func testClient(server *httptest.Server) *GeminiClient {
	return NewGeminiClientAt(server.URL, "test-key", "gemini-1.5-flash", 5*time.Second)
}

func TestGeminiAnalyzeParsesReply(t *testing.T) {
	reply := "Here is the analysis:\n```json\n" + `{
  "medium": "Photography",
  "people": {"number": 2, "gender": "Mixed group"},
  "environment": "Outdoor",
  "colors": ["Blue", "Green"],
  "style": "Realistic",
  "mood": "Peaceful",
  "scene": "Two hikers on a ridge at dawn."
}` + "\n```"

	server := fakeOracle(t, reply)
	defer server.Close()

	m, err := testClient(server).Analyze(context.Background(), []byte("not-a-real-jpeg"), "image/jpeg")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if m.Medium != "Photography" || m.Style != "Realistic" {
		t.Fatalf("metadata = %+v", m)
	}
	if m.People == nil || m.People.Number == nil || *m.People.Number != 2 {
		t.Fatalf("people = %+v", m.People)
	}
	if len(m.Colors) != 2 {
		t.Fatalf("colors = %v", m.Colors)
	}
}

func TestGeminiAnalyzeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	if _, err := testClient(server).Analyze(context.Background(), []byte("x"), "image/png"); err == nil {
		t.Fatal("expected an error from a failing oracle")
	}
}

func TestGeminiAnalyzeNoJSONInReply(t *testing.T) {
	server := fakeOracle(t, "I cannot analyze this image.")
	defer server.Close()

	if _, err := testClient(server).Analyze(context.Background(), []byte("x"), "image/png"); err == nil {
		t.Fatal("expected an error when the reply holds no JSON")
	}
}

func TestGeminiExtractCriteria(t *testing.T) {
	reply := `{"style": "Vintage", "colors": ["Red"], "keywords": ["lighthouse"]}`
	server := fakeOracle(t, reply)
	defer server.Close()

	c, err := testClient(server).ExtractCriteria(context.Background(), "vintage red lighthouse photos")
	if err != nil {
		t.Fatalf("ExtractCriteria: %v", err)
	}
	if c.Style != "Vintage" || len(c.Colors) != 1 || len(c.Keywords) != 1 {
		t.Fatalf("criteria = %+v", c)
	}
}

func TestGeminiExtractCriteriaDegradesOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c, err := testClient(server).ExtractCriteria(context.Background(), "anything")
	if err != nil {
		t.Fatalf("extraction failures must degrade, not error: %v", err)
	}
	filters, query := c.Filters()
	if len(filters) != 0 || query != "" {
		t.Fatalf("degraded criteria not empty: filters=%v query=%q", filters, query)
	}
}
