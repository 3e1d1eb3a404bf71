package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/talgya/darkhollow/internal/engine"
)

type Parser struct {
	registry *Registry
}

func New() *Parser {
	return &Parser{registry: DefaultRegistry()}
}

func (p *Parser) RegisterCommand(c CommandDef) {
	p.registry.RegisterCommand(c)
}

// Parse maps raw input to an intent. A non-nil Clarify means the input was
// not resolved and the front end should ask again.
func (p *Parser) Parse(ctx Context, raw string) Intent {
	intent := Intent{
		Raw:        raw,
		Normalised: normaliseInput(raw),
		Kind:       Unknown,
	}
	if intent.Normalised == "" {
		intent.Clarify = &ClarifyQuestion{Prompt: "Enter a command."}
		return intent
	}

	tokens := dropFillers(tokenise(intent.Normalised))
	allowed := allowedKeys(ctx)
	best, alts := p.registry.matchCommand(tokens, allowed)
	if allowed != nil && (best.Key == "" || best.Score < 0.5) {
		// Fall back to everything so the game can say why it is unavailable.
		best, alts = p.registry.matchCommand(tokens, nil)
	}
	if best.Key == "" || best.Score < 0.5 {
		intent.Clarify = &ClarifyQuestion{
			Prompt:  "I couldn't map that to a command.",
			Options: suggest(ctx, intent.Normalised, 5),
		}
		return intent
	}

	if len(alts) > 0 && (best.Score-alts[0].Score) < 0.05 && alts[0].Score > 0.65 {
		intent.Clarify = &ClarifyQuestion{
			Prompt:  "Did you mean:",
			Options: []string{displayKey(best.Key), displayKey(alts[0].Key)},
		}
		intent.Confidence = clampScore(best.Score)
		return intent
	}

	def, _ := p.registry.command(best.Key)
	intent.Confidence = clampScore(best.Score)
	if def.Meta != "" {
		intent.Kind = Meta
		intent.Meta = def.Meta
		return intent
	}

	intent.Kind = Command
	intent.Command = engine.Command{Name: def.Name}
	if !def.TakesArg {
		return intent
	}

	rest := tokens
	if best.Consumed <= len(tokens) {
		rest = tokens[best.Consumed:]
	}
	name, arg, clarify, argScore := resolveArg(ctx, def.Name, rest)
	if clarify != nil {
		intent.Clarify = clarify
		intent.Confidence = 0.45
		return intent
	}
	intent.Command = engine.Command{Name: name, Arg: arg}
	intent.Confidence = clampScore((intent.Confidence * 0.75) + (argScore * 0.25))
	return intent
}

// Line renders the intent in the canonical form "command [arg]".
func (i Intent) Line() string {
	switch i.Kind {
	case Meta:
		return i.Meta
	case Command:
		if i.Command.Arg == "" {
			return string(i.Command.Name)
		}
		return string(i.Command.Name) + " " + i.Command.Arg
	default:
		return ""
	}
}

func allowedKeys(ctx Context) map[string]bool {
	if len(ctx.Available) == 0 {
		return nil
	}
	allowed := map[string]bool{
		MetaHelp: true, MetaStatus: true, MetaSave: true, MetaLoad: true, MetaQuit: true,
	}
	for _, c := range ctx.Available {
		allowed[string(c)] = true
	}
	return allowed
}

// argSiblings lets "craft spear" land on the weapon recipe table.
var argSiblings = map[engine.CommandName]engine.CommandName{
	engine.CmdCraftTool:   engine.CmdCraftWeapon,
	engine.CmdCraftWeapon: engine.CmdCraftTool,
}

func resolveArg(ctx Context, name engine.CommandName, rest []string) (engine.CommandName, string, *ClarifyQuestion, float64) {
	choices := choicesFor(ctx, name)
	phrase := strings.Join(rest, " ")
	if a, ok := argAliases[phrase]; ok {
		phrase = a
	}

	if phrase == "" {
		if len(choices) == 1 {
			return name, choices[0], nil, 0.8
		}
		return name, "", &ClarifyQuestion{
			Prompt:  fmt.Sprintf("%s what?", capitalize(displayKey(string(name)))),
			Options: choices,
		}, 0
	}

	matched, confidence, tie := bestMatches(phrase, choices)
	if len(matched) == 0 {
		if sib, ok := argSiblings[name]; ok {
			if m, c, t := bestMatches(phrase, choicesFor(ctx, sib)); len(m) > 0 {
				name, matched, confidence, tie = sib, m, c, t
			}
		}
	}
	if tie {
		return name, "", &ClarifyQuestion{Prompt: "Did you mean:", Options: matched}, 0
	}
	if len(matched) == 0 {
		return name, "", &ClarifyQuestion{
			Prompt:  fmt.Sprintf("Nothing called %q. Try one of:", phrase),
			Options: choices,
		}, 0
	}
	return name, matched[0], nil, confidence
}

func choicesFor(ctx Context, name engine.CommandName) []string {
	if c, ok := ctx.Choices[name]; ok {
		return c
	}
	return defaultChoices(name)
}

func defaultChoices(name engine.CommandName) []string {
	var out []string
	switch name {
	case engine.CmdCraftTool:
		for k := range engine.ToolRecipes {
			out = append(out, k)
		}
	case engine.CmdCraftWeapon:
		for k := range engine.WeaponRecipes {
			out = append(out, k)
		}
	case engine.CmdAssignWorker, engine.CmdRemoveWorker:
		for _, r := range engine.AllRoles {
			if r != engine.RoleIdle {
				out = append(out, string(r))
			}
		}
	}
	sort.Strings(out)
	return out
}

// bestMatches returns the original spelling of the closest candidates. A
// near tie returns the two contenders.
func bestMatches(token string, all []string) ([]string, float64, bool) {
	type scored struct {
		val   string
		score float64
	}
	results := make([]scored, 0, len(all))
	for _, orig := range all {
		cand := normaliseInput(orig)
		if cand == "" {
			continue
		}
		score := 0.0
		switch {
		case token == cand:
			score = 1.0
		case strings.HasPrefix(cand, token) && len(token) >= 2:
			score = 0.9
		default:
			dist := levenshtein.ComputeDistance(token, cand)
			if dist > levenshteinLimit(len(cand)) {
				continue
			}
			score = 0.72 - (0.08 * float64(dist))
		}
		results = append(results, scored{val: orig, score: clampScore(score)})
	}
	if len(results) == 0 {
		return nil, 0, false
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score == results[j].score {
			return results[i].val < results[j].val
		}
		return results[i].score > results[j].score
	})

	best := results[0]
	tie := len(results) > 1 && (best.score-results[1].score) < 0.05 && results[1].score > 0.6
	if tie {
		return []string{best.val, results[1].val}, best.score, true
	}
	return []string{best.val}, best.score, false
}

// suggest ranks the available commands by edit distance to the input.
func suggest(ctx Context, normalised string, n int) []string {
	pool := ctx.Available
	if len(pool) == 0 {
		return nil
	}
	type ranked struct {
		name string
		dist int
	}
	rs := make([]ranked, 0, len(pool))
	for _, c := range pool {
		d := displayKey(string(c))
		rs = append(rs, ranked{d, levenshtein.ComputeDistance(normalised, d)})
	}
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].dist < rs[j].dist })
	out := make([]string, 0, n)
	for _, r := range rs {
		if len(out) == n {
			break
		}
		out = append(out, r.name)
	}
	return out
}

func displayKey(key string) string { return strings.ReplaceAll(key, "_", " ") }

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
