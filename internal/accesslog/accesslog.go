// Package accesslog aggregates access-log rows per local day and path.  It
// counts requests, averages latency and keeps the busiest paths of each day.
package accesslog

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidOptions is wrapped by every Options validation failure.
var ErrInvalidOptions = errors.New("invalid options")

const (
	headerPrefix = "timestamp,"
	dateLayout   = "2006-01-02"
)

// zones maps the supported zone names to fixed UTC offsets.
var zones = map[string]*time.Location{
	"jst": time.FixedZone("JST", 9*60*60),
	"ict": time.FixedZone("ICT", 7*60*60),
}

// Row is one parsed access-log line.
type Row struct {
	Timestamp time.Time
	UserID    string
	Path      string
	Status    int
	LatencyMs float64
}

// Options controls Aggregate.  From and To are inclusive UTC dates in
// YYYY-MM-DD form; TZ selects the zone used to bucket rows into days.
type Options struct {
	From string
	To   string
	TZ   string
	Top  int
}

// Entry is one ranked (date, path) bucket.
type Entry struct {
	Date       string `json:"date"`
	Path       string `json:"path"`
	Count      int    `json:"count"`
	AvgLatency int64  `json:"avgLatency"`
}

// ParseLines converts raw CSV lines into rows.  A leading header line is
// skipped, and so is any row with missing columns, a non-numeric status or
// latency, or a timestamp that is not RFC 3339.
func ParseLines(lines []string) []Row {
	if len(lines) > 0 && strings.HasPrefix(lines[0], headerPrefix) {
		lines = lines[1:]
	}
	out := make([]Row, 0, len(lines))
	for _, line := range lines {
		cols := strings.Split(line, ",")
		if len(cols) < 5 {
			continue
		}
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}
		if cols[0] == "" || cols[1] == "" || cols[2] == "" || cols[3] == "" || cols[4] == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, cols[0])
		if err != nil {
			continue
		}
		status, err := strconv.Atoi(cols[3])
		if err != nil {
			continue
		}
		latency, err := strconv.ParseFloat(cols[4], 64)
		if err != nil {
			continue
		}
		out = append(out, Row{
			Timestamp: ts,
			UserID:    cols[1],
			Path:      cols[2],
			Status:    status,
			LatencyMs: latency,
		})
	}
	return out
}

// Aggregate filters rows to the [From, To] window, groups them by local date
// and path, keeps the Top paths per date and sorts the result by date
// ascending, count descending and path ascending.
func Aggregate(lines []string, opt Options) ([]Entry, error) {
	from, to, loc, err := opt.resolve()
	if err != nil {
		return nil, err
	}
	rows := filterByDate(ParseLines(lines), from, to)
	entries := rankTop(groupByDatePath(rows, loc), opt.Top)
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Path < b.Path
	})
	return entries, nil
}

func (o Options) resolve() (from, to time.Time, loc *time.Location, err error) {
	loc, ok := zones[strings.ToLower(strings.TrimSpace(o.TZ))]
	if !ok {
		return from, to, nil, fmt.Errorf("%w: unknown tz %q", ErrInvalidOptions, o.TZ)
	}
	if o.Top < 0 {
		return from, to, nil, fmt.Errorf("%w: negative top %d", ErrInvalidOptions, o.Top)
	}
	from, err = time.Parse(dateLayout, o.From)
	if err != nil {
		return from, to, nil, fmt.Errorf("%w: from: %v", ErrInvalidOptions, err)
	}
	to, err = time.Parse(dateLayout, o.To)
	if err != nil {
		return from, to, nil, fmt.Errorf("%w: to: %v", ErrInvalidOptions, err)
	}
	// To covers the whole day.
	to = to.Add(24*time.Hour - time.Millisecond)
	return from, to, loc, nil
}

func filterByDate(rows []Row, from, to time.Time) []Row {
	out := rows[:0]
	for _, r := range rows {
		if !r.Timestamp.Before(from) && !r.Timestamp.After(to) {
			out = append(out, r)
		}
	}
	return out
}

type bucketKey struct {
	date string
	path string
}

type bucket struct {
	sum float64
	cnt int
}

func groupByDatePath(rows []Row, loc *time.Location) []Entry {
	buckets := map[bucketKey]*bucket{}
	order := []bucketKey{}
	for _, r := range rows {
		k := bucketKey{date: r.Timestamp.In(loc).Format(dateLayout), path: r.Path}
		b, ok := buckets[k]
		if !ok {
			b = &bucket{}
			buckets[k] = b
			order = append(order, k)
		}
		b.sum += r.LatencyMs
		b.cnt++
	}
	out := make([]Entry, 0, len(order))
	for _, k := range order {
		b := buckets[k]
		out = append(out, Entry{
			Date:       k.date,
			Path:       k.path,
			Count:      b.cnt,
			AvgLatency: int64(math.Floor(b.sum/float64(b.cnt) + 0.5)),
		})
	}
	return out
}

func rankTop(items []Entry, top int) []Entry {
	byDate := map[string][]Entry{}
	dates := []string{}
	for _, it := range items {
		if _, ok := byDate[it.Date]; !ok {
			dates = append(dates, it.Date)
		}
		byDate[it.Date] = append(byDate[it.Date], it)
	}
	ranked := make([]Entry, 0, len(items))
	for _, d := range dates {
		group := byDate[d]
		sort.Slice(group, func(i, j int) bool {
			if group[i].Count != group[j].Count {
				return group[i].Count > group[j].Count
			}
			return group[i].Path < group[j].Path
		})
		if top < len(group) {
			group = group[:top]
		}
		ranked = append(ranked, group...)
	}
	return ranked
}
