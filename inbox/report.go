package inbox

import "time"

// Report is the optional JSON companion to the chart: every scanned thread, charted or not.
type Report struct {
	MeIdentity  string        `json:"me_identity"`
	MinMessages uint64        `json:"min_messages"`
	InputRoot   string        `json:"input_root"`
	ChartPath   string        `json:"chart_path"`
	Threads     []ReportEntry `json:"threads"`
}

type ReportEntry struct {
	ThreadStats
	File         string `json:"file"`
	Total        uint64 `json:"total"`
	FirstMessage string `json:"first_message,omitempty"`
	LastMessage  string `json:"last_message,omitempty"`
	Charted      bool   `json:"charted"`
}

// BuildReport pairs each stats entry with the file it came from. A thread is marked charted
// only if it passed the threshold and was not replaced by a later thread with the same title.
func BuildReport(opts Options, stats []ThreadStats, files []string) Report {
	lastByTitle := make(map[string]int, len(stats))
	for i, st := range stats {
		if Passes(st, opts.MinMessages) {
			lastByTitle[st.Title] = i
		}
	}

	entries := make([]ReportEntry, 0, len(stats))
	for i, st := range stats {
		e := ReportEntry{
			ThreadStats:  st,
			Total:        st.Total(),
			FirstMessage: unixMillisISO8601(st.FirstMessageMs),
			LastMessage:  unixMillisISO8601(st.LastMessageMs),
		}
		if i < len(files) {
			e.File = files[i]
		}
		if j, ok := lastByTitle[st.Title]; ok && j == i {
			e.Charted = true
		}
		entries = append(entries, e)
	}

	return Report{
		MeIdentity:  opts.MeIdentity,
		MinMessages: opts.MinMessages,
		InputRoot:   opts.InputRoot,
		ChartPath:   opts.OutputPath,
		Threads:     entries,
	}
}

// Zero is treated as unset so empty threads don't report 1970 timestamps.
func unixMillisISO8601(ms uint64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(int64(ms)).UTC().Format(time.RFC3339)
}
