package registry

import (
	"testing"

	"homework-tutor/api/internal/config"
)

func TestFromConfigRegistersConfiguredEngines(t *testing.T) {
	cfg := &config.Config{
		DefaultLLM:   "zhipu",
		OpenAIAPIKey: "sk-test",
		OpenAIModel:  "gpt-4o-mini",
		ZhipuAPIKey:  "zk-test",
		ZhipuModel:   "glm-4v-flash",
		OllamaURL:    "http://127.0.0.1:11434",
		OllamaModel:  "llava",
	}
	engs, err := FromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	got := engs.Describe()
	want := map[string]string{"gpt": "gpt-4o-mini", "zhipu": "glm-4v-flash", "ollama": "llava"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("engine %s: expected %q, got %q", k, v, got[k])
		}
	}
	if e, err := engs.GetEngine(""); err != nil || e.Name() != "zhipu" {
		t.Errorf("expected zhipu default, got %v %v", e, err)
	}
	if e, err := engs.GetEngine("glm"); err != nil || e.Name() != "zhipu" {
		t.Errorf("alias glm not registered: %v %v", e, err)
	}
}

func TestFromConfigFailsWithoutEngines(t *testing.T) {
	if _, err := FromConfig(&config.Config{DefaultLLM: "gemini"}); err == nil {
		t.Error("expected error when nothing is configured")
	}
}

func TestFromConfigBadOllamaURL(t *testing.T) {
	if _, err := FromConfig(&config.Config{OllamaURL: "::nope", OllamaModel: "llava"}); err == nil {
		t.Error("expected error for a bad ollama url")
	}
}
