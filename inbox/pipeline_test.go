package inbox

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

const me = DefaultMeIdentity

func TestRun_ChartsOnlyActiveThreads(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeThread(t, root, "alice_1", "message_1.json", threadJSON(t, "Alice", me, 600, "Alice", 500))
	writeThread(t, root, "bob_2", "message_1.json", threadJSON(t, "Bob", me, 400, "Bob", 500))

	out := t.TempDir()
	chart := filepath.Join(out, "chart.svg")
	report := filepath.Join(out, "report.json")

	res, err := Run(context.Background(), Options{
		MeIdentity:  me,
		MinMessages: DefaultMinMessages,
		InputRoot:   root,
		OutputPath:  chart,
		ReportPath:  report,
		Logger:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Conversations != 2 || res.ThreadsScanned != 2 || res.ThreadsCharted != 1 {
		t.Fatalf("res=%+v, want 2 conversations, 2 threads, 1 charted", res)
	}

	svg, err := os.ReadFile(chart)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if !strings.Contains(string(svg), "Alice") {
		t.Fatalf("chart missing Alice")
	}
	if strings.Contains(string(svg), "Bob") {
		t.Fatalf("chart contains Bob, whose 900 messages are below the threshold")
	}

	rep := readReport(t, report)
	if len(rep.Threads) != 2 {
		t.Fatalf("len(Threads)=%d, want 2", len(rep.Threads))
	}
	byTitle := map[string]ReportEntry{}
	for _, e := range rep.Threads {
		byTitle[e.Title] = e
	}
	alice := byTitle["Alice"]
	if !alice.Charted || alice.Total != 1100 || alice.SentByMe != 600 || alice.SentByOthers != 500 {
		t.Fatalf("Alice=%+v, want charted total 1100 (600/500)", alice)
	}
	bob := byTitle["Bob"]
	if bob.Charted || bob.Total != 900 {
		t.Fatalf("Bob=%+v, want uncharted total 900", bob)
	}
	if alice.FirstMessage == "" || alice.ParticipantCount != 2 {
		t.Fatalf("Alice=%+v, want first message time and 2 participants", alice)
	}
}

func TestRun_EmptyRootRendersEmptyChart(t *testing.T) {
	t.Parallel()

	chart := filepath.Join(t.TempDir(), "chart.svg")
	res, err := Run(context.Background(), Options{
		MeIdentity:  me,
		MinMessages: DefaultMinMessages,
		InputRoot:   t.TempDir(),
		OutputPath:  chart,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ThreadsCharted != 0 {
		t.Fatalf("ThreadsCharted=%d, want 0", res.ThreadsCharted)
	}
	if !fileExists(chart) {
		t.Fatalf("expected chart at %s", chart)
	}
}

func TestRun_MalformedFileAbortsWithoutOutput(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeThread(t, root, "alice_1", "message_1.json", threadJSON(t, "Alice", me, 600, "Alice", 500))
	bad := writeThread(t, root, "zed_9", "message_1.json", []byte(`{"participants": [`))

	chart := filepath.Join(t.TempDir(), "chart.svg")
	_, err := Run(context.Background(), Options{
		MeIdentity:  me,
		MinMessages: DefaultMinMessages,
		InputRoot:   root,
		OutputPath:  chart,
	})
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !strings.Contains(err.Error(), bad) {
		t.Fatalf("error %q does not name %s", err.Error(), bad)
	}
	if fileExists(chart) {
		t.Fatalf("chart written despite failure")
	}
}

func TestRun_ReportFailureLeavesNoChart(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeThread(t, root, "alice_1", "message_1.json", threadJSON(t, "Alice", me, 600, "Alice", 500))

	out := t.TempDir()
	blocker := filepath.Join(out, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	chart := filepath.Join(out, "chart.svg")
	report := filepath.Join(blocker, "report.json")

	_, err := Run(context.Background(), Options{
		MeIdentity:  me,
		MinMessages: DefaultMinMessages,
		InputRoot:   root,
		OutputPath:  chart,
		ReportPath:  report,
	})
	if err == nil || !strings.Contains(err.Error(), report) {
		t.Fatalf("err=%v, want error naming %s", err, report)
	}
	if fileExists(chart) {
		t.Fatalf("chart written despite report failure")
	}
}

func TestRun_MissingRootFails(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "missing")
	chart := filepath.Join(t.TempDir(), "chart.svg")
	_, err := Run(context.Background(), Options{MeIdentity: me, InputRoot: root, OutputPath: chart})
	if err == nil || !strings.Contains(err.Error(), root) {
		t.Fatalf("err=%v, want error naming %s", err, root)
	}
	if fileExists(chart) {
		t.Fatalf("chart written despite failure")
	}
}

func TestRun_DuplicateTitlesLastWins(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	// Same title in two folders; traversal is by folder name, so "b_group" comes last.
	writeThread(t, root, "a_group", "message_1.json", threadJSON(t, "Group", me, 1000, "Ann", 1000))
	writeThread(t, root, "b_group", "message_1.json", threadJSON(t, "Group", me, 1, "Ann", 1200))

	out := t.TempDir()
	report := filepath.Join(out, "report.json")
	res, err := Run(context.Background(), Options{
		MeIdentity:  me,
		MinMessages: DefaultMinMessages,
		InputRoot:   root,
		OutputPath:  filepath.Join(out, "chart.svg"),
		ReportPath:  report,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ThreadsCharted != 1 {
		t.Fatalf("ThreadsCharted=%d, want 1", res.ThreadsCharted)
	}

	rep := readReport(t, report)
	for _, e := range rep.Threads {
		wantCharted := strings.Contains(e.File, "b_group")
		if e.Charted != wantCharted {
			t.Fatalf("entry %s charted=%v, want %v", e.File, e.Charted, wantCharted)
		}
	}
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeThread(t, root, "alice_1", "message_1.json", threadJSON(t, "Alice", me, 600, "Alice", 500))
	writeThread(t, root, "alice_1", "message_2.json", threadJSON(t, "Alice (old)", me, 900, "Alice", 900))
	writeThread(t, root, "carol_3", "message_1.json", threadJSON(t, "Carol", me, 2000, "Carol", 1))

	out := t.TempDir()
	var reports [][]byte
	for i := 0; i < 2; i++ {
		report := filepath.Join(out, "report.json")
		if _, err := Run(context.Background(), Options{
			MeIdentity:  me,
			MinMessages: DefaultMinMessages,
			InputRoot:   root,
			OutputPath:  filepath.Join(out, "chart.svg"),
			ReportPath:  report,
		}); err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}
		b, err := os.ReadFile(report)
		if err != nil {
			t.Fatalf("read report: %v", err)
		}
		reports = append(reports, b)
	}
	if !bytes.Equal(reports[0], reports[1]) {
		t.Fatalf("reports differ between identical runs")
	}
}

func TestRun_RequiresPaths(t *testing.T) {
	t.Parallel()

	if _, err := Run(context.Background(), Options{OutputPath: "c.svg"}); err == nil {
		t.Fatalf("expected error for empty InputRoot")
	}
	if _, err := Run(context.Background(), Options{InputRoot: "in"}); err == nil {
		t.Fatalf("expected error for empty OutputPath")
	}
}

func readReport(t *testing.T, path string) Report {
	t.Helper()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var r Report
	if err := json.Unmarshal(b, &r); err != nil {
		t.Fatalf("unmarshal %s: %v", path, err)
	}
	return r
}
