// Package combat holds the battle data model and the pure damage rules: the
// type effectiveness chart and the seedable damage calculator.
package combat

import "fmt"

// Category classifies how a move computes damage.
type Category string

const (
	CategoryPhysical Category = "physical"
	CategorySpecial  Category = "special"
	CategoryStatus   Category = "status"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryPhysical, CategorySpecial, CategoryStatus:
		return true
	default:
		return false
	}
}

// Stat names a combat stat that status effects can modify.
type Stat string

const (
	StatNone           Stat = ""
	StatAttack         Stat = "attack"
	StatDefense        Stat = "defense"
	StatSpecialAttack  Stat = "special_attack"
	StatSpecialDefense Stat = "special_defense"
	StatSpeed          Stat = "speed"
)

// Modifiers are multiplicative stat adjustments. A zero field means 1.0 so
// the zero value is neutral.
type Modifiers struct {
	Attack         float64
	Defense        float64
	SpecialAttack  float64
	SpecialDefense float64
	Speed          float64
}

// Of returns the multiplier for stat.
func (m Modifiers) Of(stat Stat) float64 {
	var v float64
	switch stat {
	case StatAttack:
		v = m.Attack
	case StatDefense:
		v = m.Defense
	case StatSpecialAttack:
		v = m.SpecialAttack
	case StatSpecialDefense:
		v = m.SpecialDefense
	case StatSpeed:
		v = m.Speed
	default:
		return 1
	}
	if v == 0 {
		return 1
	}
	return v
}

// Scale multiplies m by other stat by stat.
func (m Modifiers) Scale(other Modifiers) Modifiers {
	return Modifiers{
		Attack:         m.Of(StatAttack) * other.Of(StatAttack),
		Defense:        m.Of(StatDefense) * other.Of(StatDefense),
		SpecialAttack:  m.Of(StatSpecialAttack) * other.Of(StatSpecialAttack),
		SpecialDefense: m.Of(StatSpecialDefense) * other.Of(StatSpecialDefense),
		Speed:          m.Of(StatSpeed) * other.Of(StatSpeed),
	}
}

// Spirit is a battling creature instance. The roster that owns spirits lives
// outside the core; the core mutates HP and resource points in place.
type Spirit struct {
	ID              int
	SpeciesID       string
	Name            string
	TypeTag         string
	Level           int
	CurrentHP       int
	MaxHP           int
	Attack          int
	Defense         int
	SpecialAttack   int
	SpecialDefense  int
	Speed           int
	ResourcePoints  int
	CritChanceBonus float64
	Modifiers       Modifiers
}

func (s *Spirit) String() string {
	if s == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s#%d", s.Name, s.ID)
}

// Fainted reports whether the spirit has no HP left.
func (s *Spirit) Fainted() bool {
	return s == nil || s.CurrentHP <= 0
}

// HPRatio returns CurrentHP/MaxHP, or 1 when MaxHP is not positive.
func (s *Spirit) HPRatio() float64 {
	if s.MaxHP <= 0 {
		return 1
	}
	return float64(s.CurrentHP) / float64(s.MaxHP)
}

// ApplyDamage subtracts amount from CurrentHP, flooring at zero, and returns
// the HP actually removed.
func (s *Spirit) ApplyDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > s.CurrentHP {
		amount = s.CurrentHP
	}
	s.CurrentHP -= amount
	return amount
}

// Heal restores up to amount HP without exceeding MaxHP and returns the HP
// actually restored.
func (s *Spirit) Heal(amount int) int {
	if amount <= 0 || s.CurrentHP >= s.MaxHP {
		return 0
	}
	if s.CurrentHP+amount > s.MaxHP {
		amount = s.MaxHP - s.CurrentHP
	}
	s.CurrentHP += amount
	return amount
}

// CanAfford reports whether the spirit holds enough resource points for move.
func (s *Spirit) CanAfford(move Move) bool {
	return s.ResourcePoints >= move.Cost
}

// SpendResource deducts cost, flooring at zero. Affordability is checked by
// the action-selection layer, not here.
func (s *Spirit) SpendResource(cost int) {
	if cost <= 0 {
		return
	}
	s.ResourcePoints -= cost
	if s.ResourcePoints < 0 {
		s.ResourcePoints = 0
	}
}

// Move is immutable reference data resolved by id at resolution time.
type Move struct {
	ID             string
	Name           string
	Category       Category
	Power          int
	Accuracy       float64
	Cost           int
	TypeTag        string
	StatusEffectID string
	Priority       int
}

// DealsDamage reports whether the move goes through the damage formula.
func (m Move) DealsDamage() bool {
	return m.Category != CategoryStatus && m.Power > 0
}
