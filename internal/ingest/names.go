package ingest

import (
	"strings"
)

const (
	youthMarker   = "(Jgd.)"
	byeTeam       = "Spielfrei"
	noEntry       = "KEIN EINTRAG"
	emptyPlayer   = "---"
	inactiveEntry = "Spieler ist nicht"
)

// ReorderName turns "Last, First Middle" into "First Middle Last". Names
// without a comma are returned trimmed.
func ReorderName(name string) string {
	parts := strings.Split(name, ",")
	if len(parts) < 2 {
		return strings.TrimSpace(name)
	}
	rest := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		if p = strings.TrimSpace(p); p != "" {
			rest = append(rest, p)
		}
	}
	return strings.TrimSpace(strings.Join(rest, " ") + " " + strings.TrimSpace(parts[0]))
}

// NormalizeTeamName drops the youth marker and surrounding whitespace.
func NormalizeTeamName(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(name, youthMarker, ""))
}

// SplitTeamName splits "Club Name A" into the club and its rank letter.
func SplitTeamName(name string) (club, rank string, ok bool) {
	name = NormalizeTeamName(name)
	if len(name) < 3 || name[len(name)-2] != ' ' {
		return "", "", false
	}
	return strings.TrimSpace(name[:len(name)-2]), name[len(name)-1:], true
}

// TeamName is the inverse of SplitTeamName.
func TeamName(club, rank string) string {
	return club + " " + rank
}

// splitDoubles splits a "Last, First/Last, First" side into two names.
func splitDoubles(side string) (string, string, bool) {
	parts := strings.Split(side, "/")
	if len(parts) != 2 {
		return "", "", false
	}
	a, b := ReorderName(parts[0]), ReorderName(parts[1])
	if a == "" || b == "" {
		return "", "", false
	}
	return a, b, true
}

func isBye(team string) bool {
	return strings.Contains(team, byeTeam)
}

func skipPlayerName(name string) bool {
	return name == "" || name == emptyPlayer || strings.Contains(name, noEntry) || strings.Contains(name, inactiveEntry)
}
