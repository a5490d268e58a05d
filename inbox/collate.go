package inbox

import "sort"

// Counts is the charted message split for one thread title.
type Counts struct {
	SentByMe     uint64
	SentByOthers uint64
}

func (c Counts) Total() uint64 {
	return c.SentByMe + c.SentByOthers
}

// CollatedCounts maps thread title to its counts. Only threads above the activity threshold
// are present.
type CollatedCounts map[string]Counts

// Titles returns the titles in sorted order.
func (c CollatedCounts) Titles() []string {
	titles := make([]string, 0, len(c))
	for t := range c {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}

// Passes reports whether a thread with these stats is active enough to be charted.
func Passes(st ThreadStats, minMessages uint64) bool {
	return st.Total() > minMessages
}

// Collate keeps the stats whose total strictly exceeds minMessages and keys them by title.
// Threads sharing a title are not merged: the one later in stats wins.
func Collate(stats []ThreadStats, minMessages uint64) CollatedCounts {
	out := make(CollatedCounts)
	for _, st := range stats {
		if !Passes(st, minMessages) {
			continue
		}
		out[st.Title] = Counts{SentByMe: st.SentByMe, SentByOthers: st.SentByOthers}
	}
	return out
}
