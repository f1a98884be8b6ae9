package model

import "strings"

// AlertCode identifies a fiscal classification rule that fired for a line.
// Alerts are kept as tagged values instead of free text so that callers can
// filter them structurally; the legacy pipe-joined string is only a rendering.
type AlertCode string

const (
	// AlertSTOwed fires on interstate purchases of ST goods with no
	// withholding declared at source.
	AlertSTOwed AlertCode = "st_owed"

	// AlertSTSettled fires when the line carries a declared ICMS-ST value,
	// meaning the liability was already collected upstream.
	AlertSTSettled AlertCode = "st_settled"

	// AlertDIFAL fires on interstate purchases outside the ST regime.
	AlertDIFAL AlertCode = "difal"

	// AlertMissingCEST fires when an ST-applicable line has no CEST code
	// even after reference-table resolution.
	AlertMissingCEST AlertCode = "missing_cest"
)

// alertSeparator joins rendered alert messages on a line.
const alertSeparator = " | "

var alertMessages = map[AlertCode]string{
	AlertSTOwed:      "ST a recolher (compra interestadual sem retenção)",
	AlertSTSettled:   "ST já recolhida na origem",
	AlertDIFAL:       "DIFAL - Simples Nacional (uso/consumo ou revenda sem ST)",
	AlertMissingCEST: "CEST não informado",
}

// Message returns the human-readable message for the alert code.
func (c AlertCode) Message() string {
	if m, ok := alertMessages[c]; ok {
		return m
	}
	return string(c)
}

// AlertList is an ordered set of alert codes in rule-firing order.
type AlertList []AlertCode

// Has reports whether the list contains the given code.
func (l AlertList) Has(code AlertCode) bool {
	for _, c := range l {
		if c == code {
			return true
		}
	}
	return false
}

// Without returns a copy of the list with the given code filtered out.
func (l AlertList) Without(code AlertCode) AlertList {
	var out AlertList
	for _, c := range l {
		if c != code {
			out = append(out, c)
		}
	}
	return out
}

// Join renders the alerts as a single pipe-separated message string.
// Returns the empty string when no alerts fired.
func (l AlertList) Join() string {
	if len(l) == 0 {
		return ""
	}
	msgs := make([]string, len(l))
	for i, c := range l {
		msgs[i] = c.Message()
	}
	return strings.Join(msgs, alertSeparator)
}
