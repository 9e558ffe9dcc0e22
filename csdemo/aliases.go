package csdemo

// friendlyNameAliases maps a user-facing prop name to the canonical internal
// send-table prop name it resolves to. Applied once, at ParserConfig
// construction time, never during decode — a caller asking for
// "health" sees the same column as one who asked for "m_iHealth"
// directly.
// Synthesized props (velocity_*, is_alive, X/Y/Z, ...) are not aliases:
// they resolve through their own collector mechanisms and keep their
// user-facing names.
var friendlyNameAliases = map[string]string{
	"ping":            "m_iPing",
	"health":          "m_iHealth",
	"armor":           "m_ArmorValue",
	"flash_duration":  "m_flFlashDuration",
	"balance":         "m_iAccount",
	"kills_this_round": "m_iNumRoundKills",
	"move_type":       "m_MoveType",
	"team_rounds_total": "m_iScore",
	"is_auto_muted":   "m_bHasCommunicationAbuseMute",
	"crosshair_code":  "m_szCrosshairCodes",
}

// ResolveFriendlyName returns the canonical prop name for a user-facing
// alias, or name unchanged if it isn't aliased.
func ResolveFriendlyName(name string) string {
	if canonical, ok := friendlyNameAliases[name]; ok {
		return canonical
	}
	return name
}
