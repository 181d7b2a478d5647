package admission

import (
	"slices"
	"strings"
)

// Result is the verdict for one ticket.  A ticket is admitted iff Reasons is
// empty; Price is set either way.
type Result struct {
	Ticket  Ticket
	Price   int
	Reasons []Reason
}

// Admitted reports whether the ticket passed every rule.
func (r Result) Admitted() bool { return len(r.Reasons) == 0 }

// Outcome is the evaluation of a whole batch, in input order.
type Outcome struct {
	Facts   SetFacts
	Results []Result
}

// Admitted reports whether every ticket in the batch passed.  An empty batch
// counts as admitted.
func (o Outcome) Admitted() bool {
	for _, r := range o.Results {
		if !r.Admitted() {
			return false
		}
	}
	return true
}

// Rejected returns the number of tickets with at least one reason.
func (o Outcome) Rejected() int {
	n := 0
	for _, r := range o.Results {
		if !r.Admitted() {
			n++
		}
	}
	return n
}

// Evaluate runs DefaultRules over the batch.
func Evaluate(tickets []Ticket) Outcome {
	return EvaluateWith(tickets, DefaultRules)
}

// EvaluateWith runs rules over the batch.  Set facts are computed once and
// handed to every rule.
func EvaluateWith(tickets []Ticket, rules []Rule) Outcome {
	facts := FactsOf(tickets)
	out := Outcome{Facts: facts, Results: make([]Result, 0, len(tickets))}
	for _, t := range tickets {
		var reasons []Reason
		for _, rule := range rules {
			if !rule.Pass(t, facts) {
				reasons = append(reasons, rule.Reason)
			}
		}
		out.Results = append(out.Results, Result{
			Ticket:  t,
			Price:   t.Age.Price(),
			Reasons: orderReasons(reasons),
		})
	}
	return out
}

// orderReasons sorts by display priority and drops repeats.
func orderReasons(reasons []Reason) []Reason {
	if len(reasons) == 0 {
		return nil
	}
	slices.Sort(reasons)
	return slices.Compact(reasons)
}

// Lines renders one line per ticket: the price for admitted tickets, the
// comma-joined reasons otherwise.
func (o Outcome) Lines(c Catalog) []string {
	lines := make([]string, 0, len(o.Results))
	for _, r := range o.Results {
		lines = append(lines, c.Line(r))
	}
	return lines
}

// Render builds the batch output.  When any ticket is rejected only the
// rejected lines are written; price lines appear only for a fully admitted
// batch.
func (o Outcome) Render(c Catalog) string {
	admitted := o.Admitted()
	lines := make([]string, 0, len(o.Results))
	for _, r := range o.Results {
		if !admitted && r.Admitted() {
			continue
		}
		lines = append(lines, c.Line(r))
	}
	return strings.Join(lines, "\n")
}

// Solve parses input, evaluates it and renders the result with c.  Any
// malformed line turns the whole output into the catalog's invalid token.
func Solve(input string, c Catalog) string {
	tickets, err := ParseLines(input)
	if err != nil {
		return c.Invalid
	}
	return Evaluate(tickets).Render(c)
}
