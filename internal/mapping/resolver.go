// Package mapping proposes and reconciles field-to-slot mappings between
// a template's content schema and a design target's fillable slots.
package mapping

import (
	"strings"

	"github.com/crafthq/designbind/internal/catalog"
	"github.com/crafthq/designbind/internal/schema"
)

// FieldMap maps a template field name to a design slot ID. A missing
// key means the field is unmapped; empty-string values are never stored.
type FieldMap map[string]string

// Normalize canonicalizes a field or slot name for matching: lowercase,
// underscores become spaces, runs of whitespace collapse, surrounding
// whitespace is trimmed.
func Normalize(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// Propose builds the best-effort mapping for the given fields and slots,
// preserving prior confirmed choices.
//
// Auto-matching walks fields in schema order and picks the first slot
// whose normalized name is, in priority order: equal to the field name,
// a superstring of it, a substring of it, or its acronym counterpart
// (so "cta" finds "Call To Action"). A slot is consumed by at most one
// auto-match. Entries from existing take precedence over any auto-match
// but are dropped when their field left the schema or their slot is
// absent from the fresh slot list.
//
// Propose is a pure function of its inputs and never mutates them.
func Propose(fields schema.Schema, slots []catalog.DesignSlot, existing FieldMap) FieldMap {
	result := autoMatch(fields, slots)

	slotIDs := make(map[string]bool, len(slots))
	for _, s := range slots {
		slotIDs[s.ID] = true
	}

	// Confirmed human choices win over fresh auto-matches. Entries for
	// removed fields or vanished slots are pruned rather than kept stale.
	for field, slotID := range existing {
		if slotID == "" || !fields.Has(field) || !slotIDs[slotID] {
			continue
		}
		result[field] = slotID
	}
	return result
}

// autoMatch assigns each field the first qualifying unconsumed slot.
func autoMatch(fields schema.Schema, slots []catalog.DesignSlot) FieldMap {
	result := make(FieldMap, len(fields))
	used := make(map[string]bool, len(slots))

	normalized := make([]string, len(slots))
	for i, s := range slots {
		normalized[i] = Normalize(s.Name)
	}

	for _, f := range fields {
		fieldName := Normalize(f.Name)
		if fieldName == "" {
			continue
		}
		if id, ok := findMatch(fieldName, slots, normalized, used); ok {
			result[f.Name] = id
			used[id] = true
		}
	}
	return result
}

// findMatch searches slots in provider order, one match tier at a time,
// so an exact match anywhere in the list beats an earlier partial one.
func findMatch(fieldName string, slots []catalog.DesignSlot, normalized []string, used map[string]bool) (string, bool) {
	match := func(ok func(slotName string) bool) (string, bool) {
		for i, s := range slots {
			if used[s.ID] || normalized[i] == "" {
				continue
			}
			if ok(normalized[i]) {
				return s.ID, true
			}
		}
		return "", false
	}

	if id, ok := match(func(n string) bool { return n == fieldName }); ok {
		return id, true
	}
	if id, ok := match(func(n string) bool { return strings.Contains(n, fieldName) }); ok {
		return id, true
	}
	if id, ok := match(func(n string) bool { return strings.Contains(fieldName, n) }); ok {
		return id, true
	}
	return match(func(n string) bool {
		return initials(n) == fieldName || initials(fieldName) == n
	})
}

// initials reduces a multi-word name to its acronym ("call to action"
// -> "cta"). Single words return "" so they cannot acronym-match.
func initials(name string) string {
	words := strings.Fields(name)
	if len(words) < 2 {
		return ""
	}
	var b strings.Builder
	for _, w := range words {
		b.WriteByte(w[0])
	}
	return b.String()
}
