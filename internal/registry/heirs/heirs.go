// Package heirs recovers beneficiary references from legacy transaction notes.
//
// Before transactions carried a typed payload, an inheritance-with-division
// encoded its beneficiaries as one line per heir:
//
//	Heir 1: Awa Ndiaye (ID: 11)
//
// Parse is a best-effort scrape of that convention, kept only for records
// predating the payload column. New code never encodes data in notes.
package heirs

import (
	"strconv"
	"strings"
)

// Marker is the literal token preceding the citizen identifier on a heir line.
const Marker = "(ID:"

// Parse extracts the ordered list of heir citizen IDs from notes. Lines
// without the marker are ignored; lines where the marker is malformed (no
// closing parenthesis, non-numeric content) are skipped rather than aborting
// the whole parse. The result may be empty.
func Parse(notes string) []int64 {
	var ids []int64
	for _, line := range strings.Split(notes, "\n") {
		start := strings.Index(line, Marker)
		if start < 0 {
			continue
		}
		rest := line[start+len(Marker):]
		end := strings.Index(rest, ")")
		if end < 0 {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(rest[:end]), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// FormatLine renders the display line for one heir. Derived text only; the
// typed payload is the source of truth.
func FormatLine(position int, name string, citizenID int64) string {
	return "Heir " + strconv.Itoa(position) + ": " + name + " (ID: " + strconv.FormatInt(citizenID, 10) + ")"
}
