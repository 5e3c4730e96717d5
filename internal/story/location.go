package story

import "strings"

// ParseLocations splits a cluster title into place names.
//
// The title is split on "," and "&"; each piece is trimmed and loses any
// " - " suffix, so "London - Regent's Park" yields "London". Empty pieces are
// dropped and order is preserved.
func ParseLocations(title string) []string {
	pieces := strings.FieldsFunc(title, func(r rune) bool {
		return r == ',' || r == '&'
	})

	locations := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if i := strings.Index(piece, " - "); i >= 0 {
			piece = strings.TrimSpace(piece[:i])
		}
		if piece != "" {
			locations = append(locations, piece)
		}
	}
	return locations
}
