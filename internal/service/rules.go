package service

import (
	"regexp"
	"strings"

	"statement-parser/internal/models"
)

// rule is one candidate pattern for a field. Rules of a field are tried in
// order and the first one that matches anywhere in the text wins.
type rule struct {
	name    string
	re      *regexp.Regexp
	capture func(re *regexp.Regexp, sub []string) string
}

// fieldRules is the ordered rule table of one field.
type fieldRules struct {
	field string
	rules []rule
}

// Date fragments. Numeric dates come first inside the alternation so that
// "15/10/2025" is never read as a day followed by a stray number. The
// separator of a numeric date must repeat: "15-10-2025" but not "15-10/2025".
const (
	monthName   = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?`
	ordinal     = `(?:st|nd|rd|th)?`
	isoDate     = `\d{4}-\d{1,2}-\d{1,2}`
	slashDate   = `\d{1,2}/\d{1,2}/(?:\d{4}|\d{2})`
	dotDate     = `\d{1,2}\.\d{1,2}\.(?:\d{4}|\d{2})`
	dashDate    = `\d{1,2}-\d{1,2}-(?:\d{4}|\d{2})`
	dayMonthYr  = `\d{1,2}` + ordinal + `[\s\-]+` + monthName + `[\s,\-]+\d{4}`
	monthDayYr  = monthName + `\s+\d{1,2}` + ordinal + `,?\s+\d{4}`
	datePattern = `(?:` + isoDate + `|` + slashDate + `|` + dotDate + `|` + dashDate + `|` + dayMonthYr + `|` + monthDayYr + `)`

	rangeSep = `\s*(?:to|-|–|—)\s*`

	currencyMarker = `(?P<currency>rs\.?|inr|₹|\$|usd|€|eur|£|gbp)?`
	amountNumber   = `(?P<value>\d+(?:,\d+)*(?:\.\d+)?)`
)

// labelSep is what may sit between a label and its value: colons, dashes, spaces, newlines.
const labelSep = `[\s:\-]*`

func group(name string) func(*regexp.Regexp, []string) string {
	return func(re *regexp.Regexp, sub []string) string {
		return namedGroup(re, sub, name)
	}
}

func dateRange(re *regexp.Regexp, sub []string) string {
	start := namedGroup(re, sub, "start")
	end := namedGroup(re, sub, "end")
	if start == "" || end == "" {
		return ""
	}
	return start + " - " + end
}

func namedGroup(re *regexp.Regexp, sub []string, name string) string {
	idx := re.SubexpIndex(name)
	if idx < 0 || idx >= len(sub) {
		return ""
	}
	return sub[idx]
}

func ci(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + pattern)
}

func amountRule(name, label string) rule {
	return rule{
		name:    name,
		re:      ci(label + labelSep + `\(?` + currencyMarker + `\)?` + labelSep + amountNumber),
		capture: group("value"),
	}
}

// bareLast4 is the weakest card rule: any standalone 4-digit token, which
// also hits years and reference numbers. Strict mode drops it.
var bareLast4 = rule{
	name:    "bare_4_digits",
	re:      ci(`\b(?P<value>\d{4})\b`),
	capture: group("value"),
}

var cardLast4Rules = []rule{
	{
		name:    "masked_digits",
		re:      ci(`(?:[x*•●#]{2,}[\s\-]*)+(?P<value>\d{4})\b`),
		capture: group("value"),
	},
	{
		name:    "ending_in",
		re:      ci(`\bend(?:ing|s)\s+(?:in|with)` + labelSep + `(?P<value>\d{4})\b`),
		capture: group("value"),
	},
	{
		name:    "card_number_label",
		re:      ci(`\b(?:card|account)\s+(?:no|num|number)\.?` + labelSep + `(?:[\dx*•]{4}[\s\-]?){0,3}(?P<value>\d{4})\b`),
		capture: group("value"),
	},
}

var billingCycleRules = []rule{
	{
		name: "labeled_range",
		re: ci(`\b(?:billing\s+(?:cycle|period)|statement\s+period)` + labelSep +
			`(?P<start>` + datePattern + `)` + rangeSep + `(?P<end>` + datePattern + `)`),
		capture: dateRange,
	},
}

var dueDateRules = []rule{
	{
		name:    "due_date_label",
		re:      ci(`\bdue\s+date` + labelSep + `(?P<value>` + datePattern + `)`),
		capture: group("value"),
	},
	{
		name:    "pay_by_label",
		re:      ci(`\bpay\s+by` + labelSep + `(?P<value>` + datePattern + `)`),
		capture: group("value"),
	},
}

var totalAmountRules = []rule{
	amountRule("total_amount_due", `\btotal\s+amount\s+due`),
	amountRule("total_due", `\btotal\s+(?:dues?|outstanding)`),
	amountRule("new_balance", `\bnew\s+balance`),
}

var minimumPaymentRules = []rule{
	amountRule("minimum_amount_due", `\bminimum\s+amount\s+due`),
	amountRule("minimum_payment", `\bminimum\s+payment(?:\s+due)?`),
	amountRule("min_due", `\bmin(?:imum)?\.?\s+(?:amt\.?\s+|amount\s+)?due`),
}

// firstMatch runs the rules in order and returns the trimmed capture of the
// first rule that matches, plus the submatches it came from.
func firstMatch(rules []rule, text string) (value string, sub []string, matched *rule) {
	for i := range rules {
		r := &rules[i]
		sub := r.re.FindStringSubmatch(text)
		if sub == nil {
			continue
		}
		value := collapseSpaces(r.capture(r.re, sub))
		if value == "" {
			continue
		}
		return value, sub, r
	}
	return "", nil, nil
}

// collapseSpaces trims the value and folds inner whitespace runs (including
// line breaks left by the PDF layout) into single spaces.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func defaultFieldTables(strictCardLast4 bool) []fieldRules {
	cardRules := cardLast4Rules
	if !strictCardLast4 {
		cardRules = append(append([]rule{}, cardLast4Rules...), bareLast4)
	}
	return []fieldRules{
		{field: models.FieldCardLast4, rules: cardRules},
		{field: models.FieldBillingCycle, rules: billingCycleRules},
		{field: models.FieldDueDate, rules: dueDateRules},
		{field: models.FieldTotalAmount, rules: totalAmountRules},
		{field: models.FieldMinimumPayment, rules: minimumPaymentRules},
	}
}
