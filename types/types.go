// Package types defines the shared data model for the NeonCore engine.
// Beyond plain definitions it only carries the accessors that keep
// character invariants (lucky pool bounds, hit point floors) in one place.
package types

// Skill is a trained ability governed by one core stat.
type Skill struct {
	Stat string `yaml:"stat" json:"stat"`
	Rank int    `yaml:"rank" json:"rank"`
}

// Weapon is a carried or equipped weapon. Damage uses NdM notation ("4d6").
type Weapon struct {
	Name   string `yaml:"name" json:"name"`
	Damage string `yaml:"damage,omitempty" json:"damage,omitempty"`
	ROF    int    `yaml:"rof,omitempty" json:"rof,omitempty"`
	Ammo   int    `yaml:"ammo,omitempty" json:"ammo,omitempty"`
}

// Big5 holds personality scores in the 0..100 range.
type Big5 struct {
	Openness          int `yaml:"openness" json:"openness"`
	Conscientiousness int `yaml:"conscientiousness" json:"conscientiousness"`
	Extraversion      int `yaml:"extraversion" json:"extraversion"`
	Agreeableness     int `yaml:"agreeableness" json:"agreeableness"`
	Neuroticism       int `yaml:"neuroticism" json:"neuroticism"`
}

// Soul is a character's evolving inner state.
type Soul struct {
	Big5         Big5     `yaml:"big5" json:"big5"`
	Traits       []string `yaml:"traits,omitempty" json:"traits,omitempty"`
	Memories     []string `yaml:"memories,omitempty" json:"memories,omitempty"`
	RecentEvents []string `yaml:"recent_events,omitempty" json:"recent_events,omitempty"`
	Stress       int      `yaml:"stress" json:"stress"`
}

// Background is the lifepath summary shown by "whoami bio".
type Background struct {
	Region      string `yaml:"region" json:"region"`
	Personality string `yaml:"personality" json:"personality"`
	Style       string `yaml:"style" json:"style"`
	Value       string `yaml:"value" json:"value"`
	LifeGoal    string `yaml:"life_goal" json:"life_goal"`
}

// Character is a named actor: the player, a story NPC, or a spawned enemy.
// Combat and Defence are maps so that an absent key ("hp" never set) is
// distinguishable from a zero value.
type Character struct {
	ID          string           `yaml:"id,omitempty" json:"id"`
	Handle      string           `yaml:"handle" json:"handle"`
	Role        string           `yaml:"role" json:"role"`
	Stats       map[string]int   `yaml:"stats" json:"stats"`
	Skills      map[string]Skill `yaml:"skills" json:"skills"`
	Combat      map[string]int   `yaml:"combat" json:"combat"`
	Defence     map[string]int   `yaml:"defence" json:"defence"`
	Weapons     []Weapon         `yaml:"weapons" json:"weapons"`
	RoleAbility string           `yaml:"role_ability" json:"role_ability"`
	Cyberware   []string         `yaml:"cyberware" json:"cyberware"`
	Gear        []string         `yaml:"gear" json:"gear"`
	Inventory   []string         `yaml:"inventory" json:"inventory"`
	Art         string           `yaml:"art" json:"-"`
	Background  Background       `yaml:"background" json:"background"`
	Soul        Soul             `yaml:"soul" json:"soul"`
	LuckyPool   int              `yaml:"-" json:"lucky_pool"`

	// DialogueContext marks what the character is currently reasoning about,
	// e.g. "analyzing_lazlo_call". Empty when idle.
	DialogueContext string `yaml:"-" json:"-"`
	Unconscious     bool   `yaml:"-" json:"-"`
	Prone           bool   `yaml:"-" json:"-"`
}

// NPC is a character placed in the world.
type NPC struct {
	Character `yaml:",inline"`

	Key           string            `yaml:"key"`
	Aliases       []string          `yaml:"aliases"`
	Location      string            `yaml:"location"`
	Description   string            `yaml:"description"`
	Context       string            `yaml:"context"`
	StatsBlock    string            `yaml:"stats_block"`
	Lines         []string          `yaml:"lines"`
	Relationships map[string]string `yaml:"relationships"`
}

// Location is a node of the world graph.
type Location struct {
	ID              string
	Name            string
	Description     string
	Art             string
	Exits           map[string]string // direction → location ID
	NPCs            []string          // NPC keys that may be encountered here
	Items           []string
	EncounterChance float64
}

// GameState is the dispatcher's single authoritative mode.
type GameState string

const (
	StateChooseCharacter GameState = "choose_character"
	StateCharacterChosen GameState = "character_chosen"
	StateExploring       GameState = "exploring"
	StateConversation    GameState = "conversation"
	StateGrappling       GameState = "grappling"
	StateDead            GameState = "dead"
)
