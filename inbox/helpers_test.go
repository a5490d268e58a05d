package inbox

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// threadJSON builds a thread file body with mine messages from me followed by others messages
// from other.
func threadJSON(t *testing.T, title, me string, mine int, other string, others int) []byte {
	t.Helper()

	type msg struct {
		SenderName  string `json:"sender_name"`
		TimestampMs uint64 `json:"timestamp_ms"`
		Content     string `json:"content,omitempty"`
	}
	msgs := make([]msg, 0, mine+others)
	for i := 0; i < mine; i++ {
		msgs = append(msgs, msg{SenderName: me, TimestampMs: uint64(1_600_000_000_000 + i), Content: "hi"})
	}
	for i := 0; i < others; i++ {
		msgs = append(msgs, msg{SenderName: other, TimestampMs: uint64(1_600_000_500_000 + i)})
	}

	b, err := json.Marshal(map[string]any{
		"participants":         []map[string]string{{"name": me}, {"name": other}},
		"messages":             msgs,
		"title":                title,
		"is_still_participant": true,
		"thread_type":          "Regular",
		"thread_path":          "inbox/" + title,
	})
	if err != nil {
		t.Fatalf("marshal thread: %v", err)
	}
	return b
}

func writeThread(t *testing.T, root, folder, name string, body []byte) string {
	t.Helper()

	dir := filepath.Join(root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, body, 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
