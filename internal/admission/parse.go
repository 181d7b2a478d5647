package admission

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidInput is wrapped by every parse failure.  Callers only ever show
// the localized invalid-input token; the wrapped detail is meant for logs.
var ErrInvalidInput = errors.New("invalid input")

// LineError reports the first malformed line of a batch.
type LineError struct {
	Line int   // 1-based index among non-blank lines
	Err  error // cause, wraps ErrInvalidInput
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

const fieldCount = 5

var (
	clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	seatPattern  = regexp.MustCompile(`(?i)^([A-L])-(\d{1,2})$`)
)

// ParseLine turns one "Age,Rating,HH:MM,HH:MM,Row-Col" line into a Ticket.
func ParseLine(line string) (Ticket, error) {
	parts := strings.Split(line, ",")
	if len(parts) != fieldCount {
		return Ticket{}, fmt.Errorf("%w: want %d fields, got %d", ErrInvalidInput, fieldCount, len(parts))
	}
	for i := range parts {
		parts[i] = trim(parts[i])
	}
	ageRaw, ratingRaw, startRaw, durRaw, seatRaw := parts[0], parts[1], parts[2], parts[3], parts[4]

	age := Age(ageRaw)
	if !age.valid() {
		return Ticket{}, fmt.Errorf("%w: unknown age %q", ErrInvalidInput, ageRaw)
	}
	rating := Rating(ratingRaw)
	if !rating.valid() {
		return Ticket{}, fmt.Errorf("%w: unknown rating %q", ErrInvalidInput, ratingRaw)
	}

	start := clockPattern.FindStringSubmatch(startRaw)
	dur := clockPattern.FindStringSubmatch(durRaw)
	seat := seatPattern.FindStringSubmatch(seatRaw)
	if start == nil || dur == nil || seat == nil {
		return Ticket{}, fmt.Errorf("%w: malformed time or seat in %q", ErrInvalidInput, line)
	}

	t := Ticket{
		Age:             age,
		Rating:          rating,
		StartHour:       atoi(start[1]),
		StartMinute:     atoi(start[2]),
		DurationHours:   atoi(dur[1]),
		DurationMinutes: atoi(dur[2]),
		Row:             strings.ToUpper(seat[1]),
		Column:          atoi(seat[2]),
	}

	if t.StartHour > 23 || t.StartMinute > 59 {
		return Ticket{}, fmt.Errorf("%w: start %q out of range", ErrInvalidInput, startRaw)
	}
	if t.DurationMinutes > 59 {
		return Ticket{}, fmt.Errorf("%w: duration %q out of range", ErrInvalidInput, durRaw)
	}
	if t.Column < 1 || t.Column > 24 {
		return Ticket{}, fmt.Errorf("%w: seat column %d out of range", ErrInvalidInput, t.Column)
	}
	return t, nil
}

// ParseLines parses every non-blank line of input in order.  It stops at the
// first malformed line and returns a *LineError; later lines are not looked at.
func ParseLines(input string) ([]Ticket, error) {
	lines := SplitLines(input)
	tickets := make([]Ticket, 0, len(lines))
	for i, line := range lines {
		t, err := ParseLine(line)
		if err != nil {
			return nil, &LineError{Line: i + 1, Err: err}
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

// SplitLines splits on LF or CRLF, trims each line and drops blank ones.
// Trimming also removes byte order marks, so BOM-prefixed files parse.
func SplitLines(input string) []string {
	raw := strings.Split(input, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		l = trim(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// trim strips white space and U+FEFF from both ends.
func trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// atoi is only fed regexp-validated digit runs.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func itoa(n int) string { return strconv.Itoa(n) }
