package complete

import "github.com/queryforce/soqlkit/pkg/parse"

// keywordCandidatesAt returns the keyword labels that could legally open
// the next grammatical element at anchor within q. The anchor is the start
// of the token being typed, so a half-typed keyword anchors at the position
// where the finished keyword would stand.
func keywordCandidatesAt(q *parse.Query, anchor int) []string {
	switch {
	case anchor <= q.SelectKeyword.Start || anchor < q.SelectKeyword.End:
		return []string{"SELECT"}

	case q.ListSpan.Covers(anchor) && anchor >= q.ListSpan.Start:
		// Inside the field list the only keywords are the polymorphic
		// block opener, plus FROM while the query still lacks one.
		if q.FromKeyword.Len() == 0 {
			return []string{"FROM", "TYPEOF"}
		}
		return []string{"TYPEOF"}
	}

	if c := clauseAt(q, anchor); c != nil {
		return clauseBodyCandidates(q, c, anchor)
	}

	// After the FROM target with no clause yet, or inside the alias slot.
	return clauseOpenerCandidates(q, anchor)
}

// clauseSlots lists the trailing clauses in canonical SOQL order.
func clauseSlots(q *parse.Query) []struct {
	label  string
	clause *parse.Clause
} {
	return []struct {
		label  string
		clause *parse.Clause
	}{
		{"USING SCOPE", q.Using},
		{"WHERE", q.Where},
		{"WITH", q.With},
		{"GROUP BY", q.GroupBy},
		{"HAVING", q.Having},
		{"ORDER BY", q.OrderBy},
		{"LIMIT", q.Limit},
		{"OFFSET", q.Offset},
		{"FOR", q.For},
		{"UPDATE TRACKING", q.Update},
	}
}

// clauseOpenerCandidates lists the clauses that may open at anchor: not
// already present (unless anchor is the clause being typed) and not
// canonically ordered before a clause that already ends earlier.
func clauseOpenerCandidates(q *parse.Query, anchor int) []string {
	slots := clauseSlots(q)

	minIdx := 0
	for i, s := range slots {
		if s.clause != nil && s.clause.Span.Start < anchor {
			minIdx = i + 1
		}
	}

	var out []string
	for i, s := range slots {
		if i < minIdx {
			continue
		}
		if s.clause != nil && s.clause.Span.Start != anchor {
			continue
		}
		out = append(out, s.label)
	}
	return out
}

// clauseBodyCandidates returns keywords valid inside the body of clause c.
func clauseBodyCandidates(q *parse.Query, c *parse.Clause, anchor int) []string {
	if anchor < c.Body.Start {
		// Still on the clause keyword itself: complete the keyword.
		return clauseOpenerCandidates(q, c.Span.Start)
	}

	empty := c.Body.Len() == 0 || anchor <= c.Body.Start

	switch c.Keyword {
	case "WHERE", "HAVING":
		if empty {
			return []string{"NOT"}
		}
		return append([]string{
			"AND", "OR", "NOT", "IN", "LIKE", "INCLUDES", "EXCLUDES",
			"TRUE", "FALSE", "NULL",
		}, clauseOpenerCandidates(q, anchor)...)

	case "GROUP BY":
		if empty {
			return []string{"ROLLUP", "CUBE"}
		}
		return clauseOpenerCandidates(q, anchor)

	case "ORDER BY":
		if empty {
			return nil
		}
		return append([]string{
			"ASC", "DESC", "NULLS FIRST", "NULLS LAST",
		}, clauseOpenerCandidates(q, anchor)...)

	case "WITH":
		if empty {
			return []string{"DATA CATEGORY", "SECURITY_ENFORCED", "USER_MODE", "SYSTEM_MODE"}
		}
		return append([]string{"AT", "ABOVE", "BELOW", "ABOVE_OR_BELOW", "AND"},
			clauseOpenerCandidates(q, anchor)...)

	case "USING SCOPE", "USING":
		// Scope literals are suggested separately; no keywords here.
		if !empty {
			return clauseOpenerCandidates(q, anchor)
		}
		return nil

	case "LIMIT", "OFFSET":
		// A number is expected.
		if !empty {
			return clauseOpenerCandidates(q, anchor)
		}
		return nil

	case "FOR":
		return []string{"VIEW", "REFERENCE", "UPDATE"}

	case "UPDATE", "UPDATE TRACKING":
		return []string{"TRACKING", "VIEWSTAT"}
	}

	return clauseOpenerCandidates(q, anchor)
}

// isScopeBody reports whether anchor sits in a USING SCOPE body, where the
// fixed filterScope literals apply.
func isScopeBody(q *parse.Query, anchor int) bool {
	c := clauseAt(q, anchor)
	return c != nil && (c.Keyword == "USING SCOPE" || c.Keyword == "USING") && anchor >= c.Body.Start
}
