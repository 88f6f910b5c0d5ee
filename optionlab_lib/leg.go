package optionlab

// OptionLeg is one position of a strategy. Every field is optional so that a
// partially filled strategy can still be evaluated: legs that are not Valid are
// skipped by the aggregation and curve functions. Fields are copied on construction
// and only exposed through accessors, so a leg never changes after it is built.
type OptionLeg struct {
	strike   *float64
	premium  *float64
	optType  *OptionType
	position *Position
	quantity float64
}

// NewLeg builds a complete leg with quantity 1.
func NewLeg(strike, premium float64, typ OptionType, pos Position) OptionLeg {
	return LegFromFields(&strike, &premium, &typ, &pos)
}

// LegFromFields builds a leg from optional inputs; nil means the field was not provided.
func LegFromFields(strike, premium *float64, typ *OptionType, pos *Position) OptionLeg {
	return OptionLeg{
		strike:   copyPtr(strike),
		premium:  copyPtr(premium),
		optType:  copyPtr(typ),
		position: copyPtr(pos),
		quantity: 1,
	}
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// WithQuantity returns a copy of the leg holding q contracts. Non-positive
// quantities make the leg invalid.
func (l OptionLeg) WithQuantity(q float64) OptionLeg {
	l.quantity = q
	return l
}

func (l OptionLeg) Strike() (float64, bool) {
	if l.strike == nil {
		return 0, false
	}
	return *l.strike, true
}

func (l OptionLeg) Premium() (float64, bool) {
	if l.premium == nil {
		return 0, false
	}
	return *l.premium, true
}

func (l OptionLeg) Type() (OptionType, bool) {
	if l.optType == nil {
		return "", false
	}
	return *l.optType, true
}

func (l OptionLeg) Position() (Position, bool) {
	if l.position == nil {
		return 0, false
	}
	return *l.position, true
}

func (l OptionLeg) Quantity() float64 {
	return l.quantity
}

// Valid reports whether every required field is present and well formed.
func (l OptionLeg) Valid() bool {
	if l.strike == nil || l.premium == nil || l.optType == nil || l.position == nil {
		return false
	}
	return l.optType.Valid() && l.position.Valid() && l.quantity > 0
}

// Weight is the signed contract count: position times quantity.
func (l OptionLeg) Weight() float64 {
	if l.position == nil {
		return 0
	}
	return float64(*l.position) * l.quantity
}

// checkLeg validates the numeric fields of a leg that passed Valid.
func checkLeg(op string, l OptionLeg) error {
	if !finite(*l.strike) || *l.strike <= 0 {
		return domainError(op, "strike", *l.strike, "must be positive and finite")
	}
	if !finite(*l.premium) {
		return domainError(op, "premium", *l.premium, "must be finite")
	}
	if !finite(l.quantity) {
		return domainError(op, "quantity", l.quantity, "must be finite")
	}
	return nil
}
