package component

import (
	"github.com/yohamta/donburi"
)

type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeVictory
	OutcomeDefeat
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	}
	return "pending"
}

// Encounter is the arena-wide state read by the hosting scene.
type Encounter struct {
	SessionID string
	BossID    string
	Outcome   Outcome
	// Arena size in pixels.
	Width, Height float64
}

var EncounterComponent = donburi.NewComponentType[Encounter]()
