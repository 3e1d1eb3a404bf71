package parser

import (
	"regexp"
	"strings"
)

var multiSpaceRE = regexp.MustCompile(`\s+`)

func normaliseInput(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}
	var b strings.Builder
	lastSpace := false
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '?' {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '-' || r == '_' || r == '/' || r == '\'' {
			if !lastSpace {
				b.WriteByte(' ')
			}
			lastSpace = true
		}
	}
	return strings.TrimSpace(multiSpaceRE.ReplaceAllString(b.String(), " "))
}

func tokenise(normalised string) []string {
	if strings.TrimSpace(normalised) == "" {
		return nil
	}
	return strings.Fields(normalised)
}

// fillers are dropped before matching so "please build a shelter" works.
var fillers = map[string]bool{
	"a": true, "an": true, "the": true, "please": true, "some": true,
	"to": true, "my": true, "i": true, "want": true, "lets": true, "let": true,
}

func dropFillers(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !fillers[t] {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return tokens
	}
	return out
}

// argAliases maps loose words onto the canonical argument values.
var argAliases = map[string]string{
	"gatherer":   "gatherers",
	"lumberjack": "gatherers",
	"woodcutter": "gatherers",
	"wood":       "gatherers",
	"miner":      "miners",
	"stone":      "miners",
	"hunter":     "hunters",
	"smith":      "blacksmiths",
	"blacksmith": "blacksmiths",
	"farmer":     "farmers",
	"sword":      "iron sword",
	"blade":      "runeblade",
}
