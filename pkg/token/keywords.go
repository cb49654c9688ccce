package token

import (
	"sort"
	"strings"
)

// soqlKeywords is the set of reserved SOQL keywords, lowercased. Field and
// object API names are matched case-insensitively everywhere, so the lexer
// normalizes before lookup and preserves the original casing in Token.Text.
var soqlKeywords = map[string]bool{
	"select": true, "from": true, "where": true, "with": true,
	"group": true, "by": true, "having": true, "order": true,
	"limit": true, "offset": true, "asc": true, "desc": true,
	"nulls": true, "first": true, "last": true,
	"and": true, "or": true, "not": true, "in": true, "like": true,
	"includes": true, "excludes": true,
	"typeof": true, "when": true, "then": true, "else": true, "end": true,
	"using": true, "scope": true,
	"for": true, "update": true, "view": true, "reference": true,
	"tracking": true, "viewstat": true,
	"rollup": true, "cube": true,
	"data": true, "category": true,
	"at": true, "above": true, "below": true, "above_or_below": true,
	"security_enforced": true, "user_mode": true, "system_mode": true,
	"true": true, "false": true, "null": true,
}

// soqlFunctions is the set of SOQL function names, lowercased. It covers
// aggregates, date grouping functions, and the formatting/localization
// helpers usable in a SELECT list.
var soqlFunctions = map[string]bool{
	"count": true, "count_distinct": true, "sum": true, "avg": true,
	"min": true, "max": true, "grouping": true,
	"calendar_month": true, "calendar_quarter": true, "calendar_year": true,
	"day_in_month": true, "day_in_week": true, "day_in_year": true,
	"day_only": true, "hour_in_day": true,
	"week_in_month": true, "week_in_year": true,
	"fiscal_month": true, "fiscal_quarter": true, "fiscal_year": true,
	"format": true, "tolabel": true, "convertcurrency": true,
	"converttimezone": true, "distance": true, "geolocation": true,
	"fields": true,
}

// soqlDateLiterals is the set of named date literal values usable in WHERE
// clauses (TODAY, LAST_WEEK, ...). The parameterized forms take a :n suffix.
var soqlDateLiterals = map[string]bool{
	"today": true, "yesterday": true, "tomorrow": true,
	"this_week": true, "last_week": true, "next_week": true,
	"this_month": true, "last_month": true, "next_month": true,
	"this_quarter": true, "last_quarter": true, "next_quarter": true,
	"this_year": true, "last_year": true, "next_year": true,
	"this_fiscal_quarter": true, "last_fiscal_quarter": true, "next_fiscal_quarter": true,
	"this_fiscal_year": true, "last_fiscal_year": true, "next_fiscal_year": true,
	"last_90_days": true, "next_90_days": true,
	"last_n_days": true, "next_n_days": true, "n_days_ago": true,
	"last_n_weeks": true, "next_n_weeks": true, "n_weeks_ago": true,
	"last_n_months": true, "next_n_months": true, "n_months_ago": true,
	"last_n_quarters": true, "next_n_quarters": true, "n_quarters_ago": true,
	"last_n_years": true, "next_n_years": true, "n_years_ago": true,
	"last_n_fiscal_quarters": true, "next_n_fiscal_quarters": true, "n_fiscal_quarters_ago": true,
	"last_n_fiscal_years": true, "next_n_fiscal_years": true, "n_fiscal_years_ago": true,
}

// IsKeyword reports whether word is a reserved SOQL keyword.
func IsKeyword(word string) bool {
	return soqlKeywords[strings.ToLower(word)]
}

// IsFunction reports whether word names a SOQL function.
func IsFunction(word string) bool {
	return soqlFunctions[strings.ToLower(word)]
}

// IsDateLiteral reports whether word is a named date literal like TODAY or
// LAST_N_DAYS (without the :n suffix).
func IsDateLiteral(word string) bool {
	return soqlDateLiterals[strings.ToLower(word)]
}

// Keywords returns all reserved keywords in canonical uppercase form,
// sorted alphabetically.
func Keywords() []string {
	return upperSorted(soqlKeywords)
}

// Functions returns all function names in canonical uppercase form,
// sorted alphabetically.
func Functions() []string {
	return upperSorted(soqlFunctions)
}

// DateLiterals returns all named date literals in canonical uppercase form,
// sorted alphabetically.
func DateLiterals() []string {
	return upperSorted(soqlDateLiterals)
}

func upperSorted(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for w := range set {
		out = append(out, strings.ToUpper(w))
	}
	sort.Strings(out)
	return out
}
