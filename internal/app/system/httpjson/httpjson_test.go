package httpjson_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/gatherhub/internal/app/system/httpjson"
)

func TestOK(t *testing.T) {
	w := httptest.NewRecorder()
	httpjson.OK(w, "fetched", map[string]string{"name": "Weekend Hikers"})

	if w.Code != 200 {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type: got %q", ct)
	}

	var env httpjson.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !env.Success || env.Message != "fetched" {
		t.Errorf("envelope: %+v", env)
	}
	if m, ok := env.Result.(map[string]any); !ok || m["name"] != "Weekend Hikers" {
		t.Errorf("result: %+v", env.Result)
	}
}

func TestFail(t *testing.T) {
	w := httptest.NewRecorder()
	httpjson.Fail(w, 404, "groupNotFound")

	if w.Code != 404 {
		t.Fatalf("status: got %d, want 404", w.Code)
	}
	var env httpjson.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Success || env.Message != "groupNotFound" || env.Result != nil {
		t.Errorf("envelope: %+v", env)
	}
}

func TestDecode(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Board Game Night","member_limit":6}`))
	w := httptest.NewRecorder()

	var in struct {
		Name        string `json:"name"`
		MemberLimit int    `json:"member_limit"`
	}
	if err := httpjson.Decode(w, r, &in); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if in.Name != "Board Game Night" || in.MemberLimit != 6 {
		t.Errorf("decoded: %+v", in)
	}
}

func TestDecode_BadJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":`))
	w := httptest.NewRecorder()

	var in struct{}
	if err := httpjson.Decode(w, r, &in); err == nil {
		t.Error("expected error for truncated JSON")
	}
}
