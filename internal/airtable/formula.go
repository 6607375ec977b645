package airtable

import (
	"fmt"
	"regexp"
	"strings"
)

// Formula construction is deliberately parameterized: callers never
// concatenate raw user input into a filter. Values pass through one
// escaper and field names through one allowlist, so a stray quote in an
// email address or game name cannot change the shape of the query.

// fieldNamePattern is the allowlist for field references. Every field
// name in the schema is a compile-time constant, so a miss here is a
// programming error, not bad input.
var fieldNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 _#-]*$`)

func mustField(name string) string {
	if !fieldNamePattern.MatchString(name) {
		panic(fmt.Sprintf("airtable: invalid field name %q", name))
	}
	return "{" + name + "}"
}

// escapeValue makes a string safe inside a double-quoted formula literal.
// Only the backslash and the double quote are meaningful there.
func escapeValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return v
}

// Equals matches records whose field equals value exactly.
func Equals(field, value string) string {
	return fmt.Sprintf(`%s = "%s"`, mustField(field), escapeValue(value))
}

// NormalizedEquals matches a text field case-insensitively with interior
// spaces removed, mirroring how emails are normalized before lookup.
func NormalizedEquals(field, value string) string {
	return fmt.Sprintf(`LOWER(SUBSTITUTE(%s, " ", "")) = "%s"`, mustField(field), escapeValue(value))
}

// ArrayJoinEquals matches a linked or multi-value field rendered as a
// single joined string, which is how single-link fields compare.
func ArrayJoinEquals(field, value string) string {
	return fmt.Sprintf(`ARRAYJOIN(%s) = "%s"`, mustField(field), escapeValue(value))
}

// And combines clauses; with fewer than two it collapses sensibly.
func And(clauses ...string) string {
	return combine("AND", clauses)
}

// Or combines clauses; with fewer than two it collapses sensibly.
func Or(clauses ...string) string {
	return combine("OR", clauses)
}

func combine(op string, clauses []string) string {
	switch len(clauses) {
	case 0:
		return ""
	case 1:
		return clauses[0]
	default:
		return op + "(" + strings.Join(clauses, ", ") + ")"
	}
}

// RecordIDIn matches any record whose id is in the list.
func RecordIDIn(ids []string) string {
	clauses := make([]string, 0, len(ids))
	for _, id := range ids {
		clauses = append(clauses, fmt.Sprintf(`RECORD_ID() = "%s"`, escapeValue(id)))
	}
	return Or(clauses...)
}

// CreatedWithinMinutes matches records created in the last n minutes.
func CreatedWithinMinutes(n int) string {
	return fmt.Sprintf(`IS_AFTER(CREATED_TIME(), DATEADD(NOW(), -%d, 'minutes'))`, n)
}
