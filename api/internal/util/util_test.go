package util

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func TestDecodeBase64MaybeDataURL(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString(pngHeader)

	got, mime, err := DecodeBase64MaybeDataURL(MakeDataURL("image/png", b64))
	if err != nil {
		t.Fatal(err)
	}
	if mime != "image/png" || !bytes.Equal(got, pngHeader) {
		t.Errorf("data URL: got mime %q bytes %v", mime, got)
	}

	got, mime, err = DecodeBase64MaybeDataURL(b64)
	if err != nil {
		t.Fatal(err)
	}
	if mime != "" || !bytes.Equal(got, pngHeader) {
		t.Errorf("bare payload: got mime %q bytes %v", mime, got)
	}

	if _, _, err := DecodeBase64MaybeDataURL("data:image/png;base64,"); err != ErrEmptyPayload {
		t.Errorf("expected ErrEmptyPayload, got %v", err)
	}
	if _, _, err := DecodeBase64MaybeDataURL("%%%"); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestPickMIME(t *testing.T) {
	if got := PickMIME("image/webp", "image/png", pngHeader); got != "image/webp" {
		t.Errorf("explicit should win, got %q", got)
	}
	if got := PickMIME("", "image/gif", pngHeader); got != "image/gif" {
		t.Errorf("hint should win over sniffing, got %q", got)
	}
	if got := PickMIME("", "", pngHeader); got != "image/png" {
		t.Errorf("expected sniffed image/png, got %q", got)
	}
}

func TestExtractJSONObject(t *testing.T) {
	in := "Sure! ```json\n{\"a\": {\"b\": 1}}\n``` hope it helps"
	if got := ExtractJSONObject(in); got != `{"a": {"b": 1}}` {
		t.Errorf("unexpected %q", got)
	}
	if got := StripCodeFences("```json\n{}\n```"); got != "{}" {
		t.Errorf("unexpected %q", got)
	}
}

func TestStrictSchema(t *testing.T) {
	m, err := StrictSchema(`{"properties":{"a":{"type":"string"},"b":{"type":"array","items":{"properties":{"c":{"type":"string"}}}}}}`)
	if err != nil {
		t.Fatal(err)
	}
	if m["type"] != "object" || m["additionalProperties"] != false {
		t.Errorf("root not strict: %v", m)
	}
	if req, _ := m["required"].([]any); len(req) != 2 {
		t.Errorf("expected 2 required fields, got %v", m["required"])
	}
	items := m["properties"].(map[string]any)["b"].(map[string]any)["items"].(map[string]any)
	if items["additionalProperties"] != false {
		t.Errorf("nested items not strict: %v", items)
	}
}

func TestLoadPromptFile(t *testing.T) {
	if got, _ := LoadPromptFile("", "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
	p := filepath.Join(t.TempDir(), "tutor.txt")
	if err := os.WriteFile(p, []byte("  custom prompt \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got, err := LoadPromptFile(p, "fallback"); err != nil || got != "custom prompt" {
		t.Errorf("got %q, %v", got, err)
	}
	if _, err := LoadPromptFile(filepath.Join(t.TempDir(), "missing.txt"), "x"); err == nil {
		t.Error("expected error for missing file")
	}
}
