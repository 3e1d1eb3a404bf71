package engine

import (
	"fmt"
	"sort"
)

// Variant selects the optional roles and buildings of a game and how much
// narration it keeps.
type Variant struct {
	Name       string `yaml:"name" json:"name"`
	Roles      []Role `yaml:"roles" json:"roles"`
	Blacksmith bool   `yaml:"blacksmith" json:"blacksmith"`
	Farm       bool   `yaml:"farm" json:"farm"`
	LogLimit   int    `yaml:"log_limit" json:"log_limit"` // 0 keeps everything
}

// DefaultVariant is used when no variant is named.
const DefaultVariant = "homestead"

// BuiltinVariants returns the stock variants keyed by name.
func BuiltinVariants() map[string]Variant {
	return map[string]Variant{
		"classic": {
			Name:  "classic",
			Roles: []Role{RoleIdle, RoleGatherer, RoleMiner, RoleHunter},
		},
		"forge": {
			Name:       "forge",
			Roles:      []Role{RoleIdle, RoleGatherer, RoleMiner, RoleHunter, RoleBlacksmith},
			Blacksmith: true,
		},
		"homestead": {
			Name:       "homestead",
			Roles:      append([]Role{}, AllRoles...),
			Blacksmith: true,
			Farm:       true,
			LogLimit:   50,
		},
	}
}

// HasRole reports whether r can be staffed. Idle is always allowed.
func (v Variant) HasRole(r Role) bool {
	if r == RoleIdle {
		return true
	}
	for _, x := range v.Roles {
		if x == r {
			return true
		}
	}
	return false
}

// ProductionRoles returns the enabled roles other than idle, in display order.
func (v Variant) ProductionRoles() []Role {
	var out []Role
	for _, r := range AllRoles {
		if r != RoleIdle && v.HasRole(r) {
			out = append(out, r)
		}
	}
	return out
}

// Check validates a variant loaded from configuration.
func (v Variant) Check() error {
	if v.Name == "" {
		return fmt.Errorf("variant has no name")
	}
	if v.LogLimit < 0 {
		return fmt.Errorf("variant %s: negative log_limit", v.Name)
	}
	known := make(map[Role]bool, len(AllRoles))
	for _, r := range AllRoles {
		known[r] = true
	}
	for _, r := range v.Roles {
		if !known[r] {
			return fmt.Errorf("variant %s: unknown role %q", v.Name, r)
		}
	}
	if v.HasRole(RoleBlacksmith) && !v.Blacksmith {
		return fmt.Errorf("variant %s: blacksmiths need the blacksmith building", v.Name)
	}
	if v.HasRole(RoleFarmer) && !v.Farm {
		return fmt.Errorf("variant %s: farmers need the farm", v.Name)
	}
	return nil
}

// VariantNames lists the keys of m in sorted order.
func VariantNames(m map[string]Variant) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
