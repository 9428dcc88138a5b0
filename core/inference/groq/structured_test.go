package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
)

type timerIntent struct {
	Action  string `json:"action"`
	Minutes int    `json:"minutes"`
}

func TestProcessStructuredConstrainsAndParsesResponse(t *testing.T) {
	var gotBody requestBody

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"action\":\"set_timer\",\"minutes\":10}"}}]}`))
	}))
	defer server.Close()

	client, err := NewClient(WithAPIKey("test-key"), WithURL(server.URL))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	result, err := ProcessStructured(context.Background(), client, "set a timer for ten minutes", timerIntent{})
	if err != nil {
		t.Fatalf("expected structured completion, got error: %v", err)
	}
	if result.Action != "set_timer" || result.Minutes != 10 {
		t.Fatalf("unexpected parsed intent: %+v", result)
	}

	if gotBody.ResponseFormat == nil || gotBody.ResponseFormat.Type != "json_schema" {
		t.Fatalf("expected json_schema response format, got %+v", gotBody.ResponseFormat)
	}
	schemaFormat := gotBody.ResponseFormat.JSONSchema
	if schemaFormat == nil {
		t.Fatalf("expected a schema in the response format")
	}
	if schemaFormat.Name != "timerIntent" {
		t.Fatalf("expected schema named after the output type, got %q", schemaFormat.Name)
	}
	if !schemaFormat.Strict {
		t.Fatalf("expected strict schema enforcement")
	}
	if schemaFormat.Schema.Type != "object" {
		t.Fatalf("expected reflected object schema, got type %q", schemaFormat.Schema.Type)
	}
	if !slices.Contains(schemaFormat.Schema.Required, "action") {
		t.Fatalf("expected action to be required, got %v", schemaFormat.Schema.Required)
	}
}

func TestProcessStructuredUnwrapsFencedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"` + "```" + `\n{\"action\":\"set_timer\",\"minutes\":5}\n` + "```" + `"}}]}`))
	}))
	defer server.Close()

	client, err := NewClient(WithAPIKey("test-key"), WithURL(server.URL))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	result, err := ProcessStructured(context.Background(), client, "set a timer for five minutes", timerIntent{})
	if err != nil {
		t.Fatalf("expected fenced payload to parse, got error: %v", err)
	}
	if result.Action != "set_timer" || result.Minutes != 5 {
		t.Fatalf("unexpected parsed intent: %+v", result)
	}
}

func TestProcessStructuredReportsMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"not json at all"}}]}`))
	}))
	defer server.Close()

	client, err := NewClient(WithAPIKey("test-key"), WithURL(server.URL))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if _, err := ProcessStructured(context.Background(), client, "hello", timerIntent{}); err == nil {
		t.Fatalf("expected malformed payload to be rejected")
	}
}
