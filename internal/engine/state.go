// Package engine is the state-update and progression core of Dark Hollow.
// A Game owns one GameState and mutates it only through named commands;
// rendering, input, storage and scheduling belong to the callers.
package engine

import (
	"fmt"
	"sort"
)

// Resource is a stockpiled material.
type Resource string

const (
	Wood  Resource = "wood"
	Stone Resource = "stone"
	Iron  Resource = "iron"
	Food  Resource = "food"
	Gold  Resource = "gold"
)

// AllResources lists every resource in display order.
var AllResources = []Resource{Wood, Stone, Iron, Food, Gold}

// Role is a worker assignment.
type Role string

const (
	RoleIdle       Role = "idle"
	RoleGatherer   Role = "gatherers"
	RoleMiner      Role = "miners"
	RoleHunter     Role = "hunters"
	RoleBlacksmith Role = "blacksmiths"
	RoleFarmer     Role = "farmers"
)

// AllRoles lists every role in display order.
var AllRoles = []Role{RoleIdle, RoleGatherer, RoleMiner, RoleHunter, RoleBlacksmith, RoleFarmer}

// evictionOrder is the order workers leave when housing is lost.
var evictionOrder = []Role{RoleIdle, RoleGatherer, RoleMiner, RoleHunter, RoleFarmer, RoleBlacksmith}

// Flag is a boolean story milestone.
type Flag string

const (
	FlagBuiltShelter         Flag = "builtShelter"
	FlagLearnedMagic         Flag = "learnedMagic"
	FlagMagicUnlocked        Flag = "magicUnlocked"
	FlagSeekWisdom           Flag = "seekWisdom"
	FlagAcceptChallenge      Flag = "acceptChallenge"
	FlagFinalBattleTriggered Flag = "finalBattleTriggered"
	FlagGameCompleted        Flag = "gameCompleted"
)

// Screen selects which command subset is valid. The zero value is the root menu.
type Screen string

const (
	ScreenNone          Screen = ""
	ScreenCrafting      Screen = "crafting"
	ScreenManageWorkers Screen = "manageWorkers"
	ScreenQuest         Screen = "quest"
	ScreenCombat        Screen = "combat"
	ScreenExplore       Screen = "explore"
	ScreenMerchant      Screen = "merchant"
	ScreenMystic        Screen = "mystic"
)

func (s Screen) String() string {
	if s == ScreenNone {
		return "none"
	}
	return string(s)
}

// Shelter tuning.
const (
	WorkersPerShelter = 3
	MaxDurability     = 100
	StormDamage       = 50
)

// Buildings tracks everything the player has constructed.
type Buildings struct {
	Shelters          int            `json:"shelters"`
	MaxWorkers        int            `json:"max_workers"`
	ShelterDurability map[string]int `json:"shelter_durability"`
	NextShelterID     int            `json:"next_shelter_id"`
	Blacksmith        bool           `json:"blacksmith"`
	Farm              bool           `json:"farm"`
}

// Inventory holds owned items by category. Absence means zero.
type Inventory struct {
	Tools     map[string]int `json:"tools"`
	Weapons   map[string]int `json:"weapons"`
	Artifacts map[string]int `json:"artifacts"`
}

// CombatState is the duel in progress while on the combat screen.
type CombatState struct {
	PlayerHealth int    `json:"player_health"`
	EnemyHealth  int    `json:"enemy_health"`
	ReturnTo     Screen `json:"return_to"`
}

// GameState is the complete, serializable state of one game.
type GameState struct {
	Stage         int                  `json:"stage"`
	Time          uint64               `json:"time"`
	Resources     map[Resource]float64 `json:"resources"`
	Workers       map[Role]int         `json:"workers"`
	Buildings     Buildings            `json:"buildings"`
	Inventory     Inventory            `json:"inventory"`
	Quests        []string             `json:"quests"`
	Flags         map[Flag]bool        `json:"flags"`
	CurrentScreen Screen               `json:"current_screen"`

	Efficiency  int          `json:"efficiency"` // bonus units per gather/mine
	Combat      *CombatState `json:"combat,omitempty"`
	Location    Location     `json:"location,omitempty"` // pending explore target
	Weather     string       `json:"weather"`
	WeatherSeed int64        `json:"weather_seed"`
}

// NewState returns the all-zero starting state.
func NewState() *GameState {
	s := &GameState{
		Resources: make(map[Resource]float64, len(AllResources)),
		Workers:   make(map[Role]int, len(AllRoles)),
		Buildings: Buildings{ShelterDurability: make(map[string]int)},
		Inventory: Inventory{
			Tools:     make(map[string]int),
			Weapons:   make(map[string]int),
			Artifacts: make(map[string]int),
		},
		Quests: []string{},
		Flags:  make(map[Flag]bool),
	}
	for _, r := range AllResources {
		s.Resources[r] = 0
	}
	for _, r := range AllRoles {
		s.Workers[r] = 0
	}
	return s
}

// Clone returns a deep copy.
func (s *GameState) Clone() *GameState {
	c := *s
	c.Resources = make(map[Resource]float64, len(s.Resources))
	for k, v := range s.Resources {
		c.Resources[k] = v
	}
	c.Workers = make(map[Role]int, len(s.Workers))
	for k, v := range s.Workers {
		c.Workers[k] = v
	}
	c.Buildings.ShelterDurability = make(map[string]int, len(s.Buildings.ShelterDurability))
	for k, v := range s.Buildings.ShelterDurability {
		c.Buildings.ShelterDurability[k] = v
	}
	c.Inventory = Inventory{
		Tools:     copyCounts(s.Inventory.Tools),
		Weapons:   copyCounts(s.Inventory.Weapons),
		Artifacts: copyCounts(s.Inventory.Artifacts),
	}
	c.Quests = append([]string{}, s.Quests...)
	c.Flags = make(map[Flag]bool, len(s.Flags))
	for k, v := range s.Flags {
		c.Flags[k] = v
	}
	if s.Combat != nil {
		cs := *s.Combat
		c.Combat = &cs
	}
	return &c
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// normalize fills any nil maps, as happens after decoding a sparse save.
func (s *GameState) normalize() {
	if s.Resources == nil {
		s.Resources = make(map[Resource]float64)
	}
	for _, r := range AllResources {
		if _, ok := s.Resources[r]; !ok {
			s.Resources[r] = 0
		}
	}
	if s.Workers == nil {
		s.Workers = make(map[Role]int)
	}
	for _, r := range AllRoles {
		if _, ok := s.Workers[r]; !ok {
			s.Workers[r] = 0
		}
	}
	if s.Buildings.ShelterDurability == nil {
		s.Buildings.ShelterDurability = make(map[string]int)
	}
	if s.Inventory.Tools == nil {
		s.Inventory.Tools = make(map[string]int)
	}
	if s.Inventory.Weapons == nil {
		s.Inventory.Weapons = make(map[string]int)
	}
	if s.Inventory.Artifacts == nil {
		s.Inventory.Artifacts = make(map[string]int)
	}
	if s.Quests == nil {
		s.Quests = []string{}
	}
	if s.Flags == nil {
		s.Flags = make(map[Flag]bool)
	}
}

// Validate reports the first broken invariant, if any.
func (s *GameState) Validate() error {
	for r, v := range s.Resources {
		if v < 0 {
			return fmt.Errorf("%w: %s is negative (%v)", ErrInvalidState, r, v)
		}
	}
	for r, n := range s.Workers {
		if n < 0 {
			return fmt.Errorf("%w: %s is negative (%d)", ErrInvalidState, r, n)
		}
	}
	b := s.Buildings
	if b.Shelters != len(b.ShelterDurability) {
		return fmt.Errorf("%w: %d shelters but %d durability entries", ErrInvalidState, b.Shelters, len(b.ShelterDurability))
	}
	if b.MaxWorkers != WorkersPerShelter*b.Shelters {
		return fmt.Errorf("%w: max workers %d for %d shelters", ErrInvalidState, b.MaxWorkers, b.Shelters)
	}
	for id, d := range b.ShelterDurability {
		if d <= 0 || d > MaxDurability {
			return fmt.Errorf("%w: shelter %s durability %d", ErrInvalidState, id, d)
		}
	}
	if total := s.TotalWorkers(); total > b.MaxWorkers {
		return fmt.Errorf("%w: %d workers exceed capacity %d", ErrInvalidState, total, b.MaxWorkers)
	}
	if s.Efficiency < 0 {
		return fmt.Errorf("%w: efficiency is negative (%d)", ErrInvalidState, s.Efficiency)
	}
	for category, items := range map[string]map[string]int{
		"tools": s.Inventory.Tools, "weapons": s.Inventory.Weapons, "artifacts": s.Inventory.Artifacts,
	} {
		for item, n := range items {
			if n < 1 {
				return fmt.Errorf("%w: %s %q count %d", ErrInvalidState, category, item, n)
			}
		}
	}
	if !knownScreen(s.CurrentScreen) {
		return fmt.Errorf("%w: unknown screen %q", ErrInvalidState, s.CurrentScreen)
	}
	switch s.CurrentScreen {
	case ScreenCombat:
		if s.Combat == nil {
			return fmt.Errorf("%w: combat screen without a duel", ErrInvalidState)
		}
		if r := s.Combat.ReturnTo; r != ScreenNone && r != ScreenQuest {
			return fmt.Errorf("%w: combat returns to %q", ErrInvalidState, r)
		}
	case ScreenExplore:
		if _, ok := locationEffects[s.Location]; !ok {
			return fmt.Errorf("%w: exploring unknown location %q", ErrInvalidState, s.Location)
		}
	}
	return nil
}

func knownScreen(sc Screen) bool {
	switch sc {
	case ScreenNone, ScreenCrafting, ScreenManageWorkers, ScreenQuest,
		ScreenCombat, ScreenExplore, ScreenMerchant, ScreenMystic:
		return true
	}
	return false
}

// TotalWorkers counts every worker, idle included.
func (s *GameState) TotalWorkers() int {
	total := 0
	for _, n := range s.Workers {
		total += n
	}
	return total
}

// AssignedWorkers counts workers with a production role.
func (s *GameState) AssignedWorkers() int {
	return s.TotalWorkers() - s.Workers[RoleIdle]
}

// HasQuest reports whether name is an active quest.
func (s *GameState) HasQuest(name string) bool {
	for _, q := range s.Quests {
		if q == name {
			return true
		}
	}
	return false
}

func (s *GameState) addQuest(name string) {
	if !s.HasQuest(name) {
		s.Quests = append(s.Quests, name)
	}
}

func (s *GameState) removeQuest(name string) {
	kept := s.Quests[:0]
	for _, q := range s.Quests {
		if q != name {
			kept = append(kept, q)
		}
	}
	s.Quests = kept
}

// ShelterIDs returns shelter identifiers in a stable order.
func (s *GameState) ShelterIDs() []string {
	ids := make([]string, 0, len(s.Buildings.ShelterDurability))
	for id := range s.Buildings.ShelterDurability {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, nj := shelterNumber(ids[i]), shelterNumber(ids[j])
		if ni != nj {
			return ni < nj
		}
		return ids[i] < ids[j]
	})
	return ids
}

func shelterID(n int) string { return fmt.Sprintf("shelter-%d", n) }

func shelterNumber(id string) int {
	var n int
	if _, err := fmt.Sscanf(id, "shelter-%d", &n); err != nil {
		return -1
	}
	return n
}
