// Package admission decides whether a batch of movie-ticket purchase requests
// for a single screening can be admitted.  It parses raw request lines into
// tickets, evaluates each ticket against the age-rating, seat and companion
// rules and renders the batch result.  Nothing in this package performs I/O.
package admission

// Age is the ticket category chosen by the buyer.
type Age string

const (
	AgeAdult Age = "Adult"
	AgeYoung Age = "Young"
	AgeChild Age = "Child"
)

// prices holds the fixed price per age in yen.
var prices = map[Age]int{
	AgeAdult: 1800,
	AgeYoung: 1200,
	AgeChild: 800,
}

// Price returns the ticket price for the age in yen.  Unknown ages cost 0.
func (a Age) Price() int {
	return prices[a]
}

func (a Age) valid() bool {
	_, ok := prices[a]
	return ok
}

// Rating is the film classification of the screening.
type Rating string

const (
	RatingG    Rating = "G"
	RatingPG12 Rating = "PG-12"
	RatingR18  Rating = "R18+"
)

func (r Rating) valid() bool {
	switch r {
	case RatingG, RatingPG12, RatingR18:
		return true
	}
	return false
}

// Ticket is one parsed purchase request.  Row is always an uppercase letter
// between A and L and Column lies in 1..24.
type Ticket struct {
	Age             Age    // buyer category
	Rating          Rating // film rating as written on the request
	StartHour       int    // 0-23
	StartMinute     int    // 0-59
	DurationHours   int    // >= 0
	DurationMinutes int    // 0-59
	Row             string // seat row, "A".."L"
	Column          int    // seat column, 1..24
}

// StartMinutes returns the screening start as minutes since midnight.
func (t Ticket) StartMinutes() int {
	return t.StartHour*60 + t.StartMinute
}

// EndMinutes returns the screening end as minutes since midnight.  Screenings
// crossing midnight are not folded back into the day.
func (t Ticket) EndMinutes() int {
	return t.StartMinutes() + t.DurationHours*60 + t.DurationMinutes
}

// Seat returns the seat label in "<row>-<col>" form.
func (t Ticket) Seat() string {
	return t.Row + "-" + itoa(t.Column)
}
