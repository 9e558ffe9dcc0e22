package csdemo

import "testing"

func TestShouldSuppressEvent(t *testing.T) {
	if !ShouldSuppressEvent("server_cvar") {
		t.Error("server_cvar should be suppressed")
	}
	if ShouldSuppressEvent("player_death") {
		t.Error("player_death should not be suppressed")
	}
}

func TestIsDeferredEvent(t *testing.T) {
	if !IsDeferredEvent("inferno_startburn") {
		t.Error("inferno_startburn should be deferred")
	}
	if IsDeferredEvent("player_death") {
		t.Error("player_death should not be deferred")
	}
}

func TestEnrichmentPrefix(t *testing.T) {
	cases := map[string]string{
		"userid":   "user_",
		"attacker": "attacker_",
		"assister": "assister_",
	}
	for key, want := range cases {
		got, ok := EnrichmentPrefix(key)
		if !ok {
			t.Errorf("EnrichmentPrefix(%q): expected ok=true", key)
		}
		if got != want {
			t.Errorf("EnrichmentPrefix(%q) = %q, want %q", key, got, want)
		}
	}

	if _, ok := EnrichmentPrefix("weapon"); ok {
		t.Error("EnrichmentPrefix(\"weapon\") should report ok=false")
	}
}

func TestGameEventRegistryRegisterLookup(t *testing.T) {
	r := NewGameEventRegistry()
	if _, ok := r.Lookup(12); ok {
		t.Fatal("empty registry should not find id 12")
	}

	d := &GameEventDescriptor{EventID: 12, Name: "player_death"}
	r.Register(d)

	got, ok := r.Lookup(12)
	if !ok || got.Name != "player_death" {
		t.Fatalf("Lookup(12) = %+v, %v", got, ok)
	}
}
