package parser

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/talgya/darkhollow/internal/engine"
)

type commandPhrase struct {
	key    string
	alias  string
	tokens []string
	isName bool
}

type Registry struct {
	commands map[string]CommandDef
	phrases  []commandPhrase
}

func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]CommandDef),
	}
}

func (r *Registry) RegisterCommand(c CommandDef) {
	key := c.key()
	if key == "" {
		return
	}
	r.commands[key] = c

	canonical := normaliseInput(key)
	r.phrases = append(r.phrases, commandPhrase{
		key:    key,
		alias:  canonical,
		tokens: tokenise(canonical),
		isName: true,
	})
	for _, a := range c.Aliases {
		n := normaliseInput(a)
		if n == "" {
			continue
		}
		r.phrases = append(r.phrases, commandPhrase{
			key:    key,
			alias:  n,
			tokens: tokenise(n),
		})
	}
}

func (r *Registry) command(key string) (CommandDef, bool) {
	cmd, ok := r.commands[key]
	return cmd, ok
}

type commandCandidate struct {
	Key      string
	Alias    string
	Consumed int
	Score    float64
	Source   string
}

// matchCommand scores every phrase against the leading tokens. allowed, if
// non-nil, restricts the candidates to those keys.
func (r *Registry) matchCommand(tokens []string, allowed map[string]bool) (commandCandidate, []commandCandidate) {
	if len(tokens) == 0 {
		return commandCandidate{}, nil
	}
	cands := make([]commandCandidate, 0, len(r.phrases))
	for _, phrase := range r.phrases {
		if len(phrase.tokens) == 0 || (allowed != nil && !allowed[phrase.key]) {
			continue
		}
		consumed := min(len(tokens), len(phrase.tokens))
		prefix := strings.Join(tokens[:consumed], " ")

		if consumed == len(phrase.tokens) && prefix == phrase.alias {
			score := 1.0
			source := "exact"
			if !phrase.isName {
				score = 0.97
				source = "alias"
			}
			// Longer phrases win over their own leading word.
			score += 0.001 * float64(consumed)
			cands = append(cands, commandCandidate{phrase.key, phrase.alias, consumed, score, source})
			continue
		}

		if len(phrase.tokens) == 1 && len(tokens[0]) >= 3 && strings.HasPrefix(phrase.alias, tokens[0]) {
			cands = append(cands, commandCandidate{phrase.key, phrase.alias, 1, 0.9, "prefix"})
			continue
		}

		cut := consumed
		compare := prefix
		if len(phrase.tokens) > 1 && len(tokens) >= len(phrase.tokens) {
			cut = len(phrase.tokens)
			compare = strings.Join(tokens[:cut], " ")
		}
		if cut == 0 || len(compare) < 3 {
			continue
		}
		dist := levenshtein.ComputeDistance(compare, phrase.alias)
		if dist > levenshteinLimit(len(phrase.alias)) {
			continue
		}
		score := 0.72 - (0.08 * float64(dist))
		if !phrase.isName {
			score += 0.03
		}
		cands = append(cands, commandCandidate{phrase.key, phrase.alias, cut, score, "lev"})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score == cands[j].Score {
			if cands[i].Consumed == cands[j].Consumed {
				return cands[i].Key < cands[j].Key
			}
			return cands[i].Consumed > cands[j].Consumed
		}
		return cands[i].Score > cands[j].Score
	})

	if len(cands) == 0 {
		return commandCandidate{}, nil
	}
	best := cands[0]
	full := best.Source == "exact" || best.Source == "alias"
	alts := make([]commandCandidate, 0, 4)
	seen := map[string]bool{best.Key: true}
	for _, c := range cands[1:] {
		if seen[c.Key] {
			continue
		}
		// A whole-phrase match is never ambiguous with a shorter leading word.
		if full && c.Consumed < best.Consumed {
			continue
		}
		seen[c.Key] = true
		alts = append(alts, c)
		if len(alts) >= 4 {
			break
		}
	}
	return best, alts
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// DefaultRegistry knows every player command and the front-end meta verbs.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	commands := []CommandDef{
		{Meta: MetaHelp, Aliases: []string{"h", "?", "commands"}},
		{Meta: MetaStatus, Aliases: []string{"stats", "look", "l", "inventory", "inv"}},
		{Meta: MetaSave},
		{Meta: MetaLoad},
		{Meta: MetaQuit, Aliases: []string{"q", "exit"}},

		{Name: engine.CmdStart, Aliases: []string{"begin", "wake", "wake up"}},
		{Name: engine.CmdGatherWood, Aliases: []string{"wood", "chop", "chop wood", "gather", "collect wood"}},
		{Name: engine.CmdMineStone, Aliases: []string{"stone", "mine", "quarry", "dig"}},
		{Name: engine.CmdMineIron, Aliases: []string{"iron", "dig iron"}},
		{Name: engine.CmdHunt, Aliases: []string{"go hunting", "hunting"}},
		{Name: engine.CmdHarvestCrops, Aliases: []string{"harvest", "crops", "reap"}},
		{Name: engine.CmdBuildShelter, Aliases: []string{"shelter", "build", "hut"}},
		{Name: engine.CmdBuildBlacksmith, Aliases: []string{"blacksmith", "smithy", "build forge"}},
		{Name: engine.CmdBuildFarm, Aliases: []string{"farm"}},
		{Name: engine.CmdRepairShelter, Aliases: []string{"repair", "fix", "patch"}},
		{Name: engine.CmdHireWorker, Aliases: []string{"hire", "recruit"}},
		{Name: engine.CmdResearchMagic, Aliases: []string{"magic", "research", "study"}},
		{Name: engine.CmdOpenCrafting, Aliases: []string{"crafting", "workbench"}},
		{Name: engine.CmdManageWorkers, Aliases: []string{"workers", "manage"}},
		{Name: engine.CmdExplore, Aliases: []string{"scout", "wander"}},
		{Name: engine.CmdContinueQuest, Aliases: []string{"quest", "continue"}},
		{Name: engine.CmdRestart, Aliases: []string{"new game", "again"}},

		{Name: engine.CmdCraftTool, Aliases: []string{"craft", "make", "tool"}, TakesArg: true},
		{Name: engine.CmdCraftWeapon, Aliases: []string{"weapon", "make weapon"}, TakesArg: true},
		{Name: engine.CmdAssignWorker, Aliases: []string{"assign", "add", "put"}, TakesArg: true},
		{Name: engine.CmdRemoveWorker, Aliases: []string{"remove", "unassign", "dismiss"}, TakesArg: true},

		{Name: engine.CmdSearchRuins, Aliases: []string{"search", "ruins"}},
		{Name: engine.CmdVentureForest, Aliases: []string{"forest", "venture"}},
		{Name: engine.CmdAttack, Aliases: []string{"fight", "strike", "hit"}},
		{Name: engine.CmdEnter, Aliases: []string{"go in", "visit"}},
		{Name: engine.CmdBuyArtifact, Aliases: []string{"buy orb", "orb", "artifact"}},
		{Name: engine.CmdBuyWeapon, Aliases: []string{"buy runeblade", "buy blade"}},
		{Name: engine.CmdDecline, Aliases: []string{"no", "no thanks", "leave"}},
		{Name: engine.CmdSeekWisdom, Aliases: []string{"wisdom", "seek"}},
		{Name: engine.CmdAcceptChallenge, Aliases: []string{"challenge", "accept"}},
		{Name: engine.CmdBack, Aliases: []string{"return", "menu", "camp"}},
	}
	for _, cmd := range commands {
		r.RegisterCommand(cmd)
	}
	return r
}
