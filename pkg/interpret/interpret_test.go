package interpret

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/gmplayout/pkg/cache"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  Constraints
		err   bool
	}{
		{
			name:  "plain json",
			reply: `{"facility_type":"Sterile","batch_size":50,"jurisdiction":"EU"}`,
			want:  Constraints{FacilityType: "sterile", BatchSize: 50, Jurisdiction: "EU"},
		},
		{
			name:  "fenced",
			reply: "```json\n{\"room_types\":[\" QC-Lab \",\"dispensing\"]}\n```",
			want:  Constraints{RoomTypes: []string{"qc-lab", "dispensing"}},
		},
		{name: "not json", reply: "a sterile plant please", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.reply)
			if (err != nil) != tt.err {
				t.Fatalf("Parse() error = %v, want error %v", err, tt.err)
			}
			if !tt.err && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConstraintsEmpty(t *testing.T) {
	if !(Constraints{}).Empty() {
		t.Error("zero constraints should be empty")
	}
	if (Constraints{Style: "grid"}).Empty() {
		t.Error("constraints with a style are not empty")
	}
}

func TestCachedInterpretsOnce(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	var calls int
	inner := Func(func(ctx context.Context, d string) (Constraints, error) {
		calls++
		return Constraints{FacilityType: "oral-solid"}, nil
	})
	c := NewCached(inner, fc, nil, "test-model")

	for range 3 {
		got, err := c.Interpret(context.Background(), "tablet plant")
		if err != nil {
			t.Fatal(err)
		}
		if got.FacilityType != "oral-solid" {
			t.Errorf("FacilityType = %q", got.FacilityType)
		}
	}
	if calls != 1 {
		t.Errorf("inner called %d times, want 1", calls)
	}
}

func TestCachedPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	c := NewCached(Func(func(context.Context, string) (Constraints, error) {
		return Constraints{}, boom
	}), nil, nil, "m")
	if _, err := c.Interpret(context.Background(), "x"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func chatServer(t *testing.T, status int, content string, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "rejected", "type": "invalid_request_error"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
}

func TestOpenAIInterpret(t *testing.T) {
	var hits int32
	srv := chatServer(t, http.StatusOK, `{"facility_type":"qc","jurisdiction":"US"}`, &hits)
	defer srv.Close()

	o, err := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1", RoomTypes: []string{"qc-lab"}})
	if err != nil {
		t.Fatal(err)
	}
	if o.Model() != DefaultModel {
		t.Errorf("Model() = %q, want %q", o.Model(), DefaultModel)
	}
	got, err := o.Interpret(context.Background(), "a small QC lab for FDA")
	if err != nil {
		t.Fatal(err)
	}
	want := Constraints{FacilityType: "qc", Jurisdiction: "US"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Interpret() = %+v, want %+v", got, want)
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1", hits)
	}
}

func TestOpenAIClientErrorNotRetried(t *testing.T) {
	var hits int32
	srv := chatServer(t, http.StatusBadRequest, "", &hits)
	defer srv.Close()

	o, err := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.Interpret(context.Background(), "anything"); err == nil {
		t.Fatal("expected error")
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1", hits)
	}
}

func TestOpenAIRejectsEmpty(t *testing.T) {
	if _, err := NewOpenAI(OpenAIConfig{}); err == nil {
		t.Error("missing API key should fail")
	}
	o, _ := NewOpenAI(OpenAIConfig{APIKey: "sk-test"})
	if _, err := o.Interpret(context.Background(), "  "); !errors.Is(err, ErrEmptyDescription) {
		t.Errorf("err = %v, want ErrEmptyDescription", err)
	}
}
