package admission

// Reason identifies why a ticket was rejected.  The numeric value doubles as
// the display priority: lower values are shown first.
type Reason int

const (
	ReasonCompanionRequired Reason = iota
	ReasonAgeLimit
	ReasonSeatLimit
)

// String returns the stable machine token of the reason.
func (r Reason) String() string {
	switch r {
	case ReasonCompanionRequired:
		return "companion-required"
	case ReasonAgeLimit:
		return "age-limit"
	case ReasonSeatLimit:
		return "seat-limit"
	}
	return "unknown"
}

// MarshalText lets reasons appear as their tokens in JSON.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

const (
	childCurfew = 16 * 60 // latest end time for a Child without an Adult
	youngCurfew = 18 * 60 // latest end time for a Young without an Adult
)

// SetFacts are the batch-level values every rule sees.  They are computed
// once per batch by FactsOf.
type SetFacts struct {
	HasAdult   bool
	HasChild   bool
	Rating     Rating // rating of the first ticket
	EndMinutes int    // end time of the first ticket
}

// FactsOf derives the set facts.  The first ticket's rating and timing stand
// for the whole batch; later tickets are not checked against them.
func FactsOf(tickets []Ticket) SetFacts {
	var f SetFacts
	if len(tickets) == 0 {
		return f
	}
	f.Rating = tickets[0].Rating
	f.EndMinutes = tickets[0].EndMinutes()
	for _, t := range tickets {
		switch t.Age {
		case AgeAdult:
			f.HasAdult = true
		case AgeChild:
			f.HasChild = true
		}
	}
	return f
}

// CheckAgeRating reports whether age may watch a film with the given rating.
// A Child may watch PG-12 only when an Adult is in the same batch.
func CheckAgeRating(age Age, rating Rating, hasAdult bool) bool {
	switch rating {
	case RatingPG12:
		return age != AgeChild || hasAdult
	case RatingR18:
		return age == AgeAdult
	}
	return true
}

// CheckSeat reports whether age may sit in row.  Rows J to L are closed to
// Child tickets.
func CheckSeat(age Age, row string) bool {
	if age != AgeChild {
		return true
	}
	switch row {
	case "J", "K", "L":
		return false
	}
	return true
}

// CheckCompanion applies the end-time curfews.  An Adult in the batch lifts
// every curfew.  Otherwise a Child ending after 16:00 fails the whole batch,
// Young tickets included, and a Young ending after 18:00 fails on its own.
// Ending exactly at the curfew is allowed.
func CheckCompanion(age Age, endMinutes int, hasAdult, hasChild bool) bool {
	if hasAdult {
		return true
	}
	if hasChild && endMinutes > childCurfew {
		return false
	}
	if age == AgeYoung && endMinutes > youngCurfew {
		return false
	}
	// Already covered by the group branch while hasChild tracks Child tickets.
	if age == AgeChild && endMinutes > childCurfew {
		return false
	}
	return true
}

// Rule is a single admission check paired with the reason it reports.
type Rule struct {
	Reason Reason
	Pass   func(t Ticket, f SetFacts) bool
}

// DefaultRules are the cinema's admission rules.  Their order does not
// affect the reported reason order.
var DefaultRules = []Rule{
	{Reason: ReasonSeatLimit, Pass: func(t Ticket, _ SetFacts) bool {
		return CheckSeat(t.Age, t.Row)
	}},
	{Reason: ReasonAgeLimit, Pass: func(t Ticket, f SetFacts) bool {
		return CheckAgeRating(t.Age, f.Rating, f.HasAdult)
	}},
	{Reason: ReasonCompanionRequired, Pass: func(t Ticket, f SetFacts) bool {
		return CheckCompanion(t.Age, f.EndMinutes, f.HasAdult, f.HasChild)
	}},
}
