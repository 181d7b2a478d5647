package admission

import (
	"strconv"
	"strings"
)

// Catalog holds the user-facing texts of one locale.
type Catalog struct {
	Name    string
	Invalid string
	Reasons map[Reason]string
}

// English is the default catalog; its reason texts are the reason tokens.
var English = Catalog{
	Name:    "en",
	Invalid: "invalid input",
	Reasons: map[Reason]string{
		ReasonCompanionRequired: ReasonCompanionRequired.String(),
		ReasonAgeLimit:          ReasonAgeLimit.String(),
		ReasonSeatLimit:         ReasonSeatLimit.String(),
	},
}

// Japanese carries the box-office wording.
var Japanese = Catalog{
	Name:    "ja",
	Invalid: "不正な入力です",
	Reasons: map[Reason]string{
		ReasonCompanionRequired: "対象の映画の入場には大人の同伴が必要です",
		ReasonAgeLimit:          "対象の映画は年齢制限により閲覧できません",
		ReasonSeatLimit:         "対象のチケットではその座席をご利用いただけません",
	},
}

// CatalogFor resolves a locale name such as "ja" or "en-US".  Unknown names
// fall back to English.
func CatalogFor(name string) Catalog {
	name = strings.ToLower(strings.TrimSpace(name))
	if i := strings.IndexAny(name, "-_"); i > 0 {
		name = name[:i]
	}
	if name == Japanese.Name {
		return Japanese
	}
	return English
}

// Price formats a yen amount.
func (c Catalog) Price(yen int) string {
	return strconv.Itoa(yen) + "円"
}

// Reason returns the localized text, falling back to the token.
func (c Catalog) Reason(r Reason) string {
	if s, ok := c.Reasons[r]; ok {
		return s
	}
	return r.String()
}

// Line renders a single ticket result.
func (c Catalog) Line(r Result) string {
	if r.Admitted() {
		return c.Price(r.Price)
	}
	texts := make([]string, len(r.Reasons))
	for i, reason := range r.Reasons {
		texts[i] = c.Reason(reason)
	}
	return strings.Join(texts, ",")
}
