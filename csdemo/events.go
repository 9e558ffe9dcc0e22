package csdemo

// GameEventKeyType is the wire type tag for one game-event key value.
type GameEventKeyType int

const (
	EventKeyString GameEventKeyType = 1
	EventKeyFloat  GameEventKeyType = 2
	EventKeyLong   GameEventKeyType = 3
	EventKeyShort  GameEventKeyType = 4
	EventKeyByte   GameEventKeyType = 5
	EventKeyBool   GameEventKeyType = 6
	EventKeyUint64 GameEventKeyType = 7
	EventKeyLocal  GameEventKeyType = 8
	EventKeyWptr   GameEventKeyType = 9
)

// GameEventKeyDescriptor names and types one positional key of an event
// descriptor.
type GameEventKeyDescriptor struct {
	Name string
	Type GameEventKeyType
}

// GameEventDescriptor is one entry of the one-shot event-list message.
type GameEventDescriptor struct {
	EventID uint32
	Name    string
	Keys    []GameEventKeyDescriptor
}

// GameEvent is one decoded, enriched occurrence of a named event.
type GameEvent struct {
	Name   string
	Tick   int32
	Fields map[string]Variant
}

// removedEvents are suppressed from the default event stream; some of them
// are instead synthesized via dedicated user-message handlers.
var removedEvents = map[string]bool{
	"server_cvar": true,
}

// deferredEvents must be emitted after the tick's entity updates finish,
// because their enrichment depends on post-update entity state.
var deferredEvents = map[string]bool{
	"inferno_startburn": true,
	"decoy_started":     true,
	"inferno_expire":    true,
}

// GameEventRegistry holds the descriptor table parsed from
// GE_Source1LegacyGameEventList, keyed by event id.
type GameEventRegistry struct {
	descriptors map[uint32]*GameEventDescriptor
}

// NewGameEventRegistry returns an empty registry.
func NewGameEventRegistry() *GameEventRegistry {
	return &GameEventRegistry{descriptors: make(map[uint32]*GameEventDescriptor)}
}

// Register records one event descriptor.
func (r *GameEventRegistry) Register(d *GameEventDescriptor) {
	r.descriptors[d.EventID] = d
}

// Lookup returns the descriptor for eventID, if known.
func (r *GameEventRegistry) Lookup(eventID uint32) (*GameEventDescriptor, bool) {
	d, ok := r.descriptors[eventID]
	return d, ok
}

// ShouldSuppressEvent reports whether name is in REMOVED_EVENTS and must
// never reach the default output stream.
func ShouldSuppressEvent(name string) bool {
	return removedEvents[name]
}

// IsDeferredEvent reports whether name must be flushed after the current
// tick's entity updates rather than inline with GameEvent decode.
func IsDeferredEvent(name string) bool {
	return deferredEvents[name]
}

// enrichmentPrefixes maps a userid-like key name to the field prefix its
// enrichment values get, per the userid/attacker/assister convention.
var enrichmentPrefixes = map[string]string{
	"userid":   "user_",
	"attacker": "attacker_",
	"assister": "assister_",
}

// EnrichmentPrefix returns the prefix enrichment values for keyName should
// carry, and whether keyName triggers player enrichment at all.
func EnrichmentPrefix(keyName string) (string, bool) {
	p, ok := enrichmentPrefixes[keyName]
	return p, ok
}
