package engine

import "testing"

func TestBuiltinVariantsAreValid(t *testing.T) {
	vs := BuiltinVariants()
	for _, name := range VariantNames(vs) {
		if err := vs[name].Check(); err != nil {
			t.Fatalf("builtin %s: %v", name, err)
		}
	}
	if _, ok := vs[DefaultVariant]; !ok {
		t.Fatalf("default variant %q missing", DefaultVariant)
	}
	if names := VariantNames(vs); len(names) != 3 || names[0] != "classic" {
		t.Fatalf("names = %v", names)
	}
}

func TestVariantCheck(t *testing.T) {
	bad := []Variant{
		{},
		{Name: "x", LogLimit: -1},
		{Name: "x", Roles: []Role{"knights"}},
		{Name: "x", Roles: []Role{RoleBlacksmith}},
		{Name: "x", Roles: []Role{RoleFarmer}, Blacksmith: true},
	}
	for _, v := range bad {
		if err := v.Check(); err == nil {
			t.Fatalf("expected %+v to be rejected", v)
		}
	}
}

func TestClockCadence(t *testing.T) {
	c := NewClock(0)
	c.EventEvery = 3
	c.SaveEvery = 4
	var ticks, events, saves int
	c.OnTick = func(uint64) { ticks++ }
	c.OnEvent = func(uint64) { events++ }
	c.OnSave = func(uint64) { saves++ }

	for i := 0; i < 12; i++ {
		c.Step()
	}
	if ticks != 12 || events != 4 || saves != 3 || c.Tick() != 12 {
		t.Fatalf("ticks %d events %d saves %d clock %d", ticks, events, saves, c.Tick())
	}
	if c.Interval <= 0 || c.Speed() != 1 {
		t.Fatalf("defaults: %v %v", c.Interval, c.Speed())
	}
	c.SetSpeed(0)
	if c.Speed() != 0 {
		t.Fatalf("speed not set")
	}
}
