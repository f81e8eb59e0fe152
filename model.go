package geostat

import (
	"fmt"
	"math"
)

// ModelType names a theoretical variogram model family.
type ModelType string

const (
	Spherical   ModelType = "spherical"
	Exponential ModelType = "exponential"
	Gaussian    ModelType = "gaussian"
	Power       ModelType = "power"
	Nugget      ModelType = "nugget"
	HoleEffect  ModelType = "hole_effect"
	Nested      ModelType = "nested"
)

// Structure describes one component of a nested model by name. Fields that
// do not apply to the named kind are ignored.
type Structure struct {
	Type     ModelType
	Nugget   float64
	Sill     float64
	RangeA   float64
	Slope    float64
	Exponent float64
}

// Model is a validated theoretical variogram. Construct through NewModel,
// NewPowerModel, NewNuggetModel, or NewNestedModel; the zero value is not
// usable. Predict(0) is 0 for every kind.
type Model struct {
	Type ModelType

	// Bounded families (spherical, exponential, gaussian, hole_effect).
	// Sill is the total sill including the nugget.
	Nugget float64
	Sill   float64
	RangeA float64

	// Power model.
	Slope    float64
	Exponent float64

	// Nested components.
	Structures []Model

	// RMSE of a weighted least-squares fit, 0 for manual models.
	RMSE float64
}

// NewModel constructs a bounded variogram model of the given kind.
// Exponential and gaussian use the practical-range convention: the model
// reaches 95% of the sill at h = rangeA.
func NewModel(kind ModelType, nugget, sill, rangeA float64) (*Model, error) {
	switch kind {
	case Spherical, Exponential, Gaussian, HoleEffect:
	default:
		return nil, &UnknownModelError{Kind: kind}
	}
	if err := validateNonNegative(nugget, "nugget"); err != nil {
		return nil, err
	}
	if err := validatePositive(sill, "sill"); err != nil {
		return nil, err
	}
	if sill <= nugget {
		return nil, fmt.Errorf("%w: \"sill\" (%v) must exceed \"nugget\" (%v)", ErrInvalidParameter, sill, nugget)
	}
	if err := validatePositive(rangeA, "range_a"); err != nil {
		return nil, err
	}
	return &Model{Type: kind, Nugget: nugget, Sill: sill, RangeA: rangeA}, nil
}

// NewPowerModel constructs the unbounded power model
// γ(h) = nugget + slope·|h|^exponent with exponent in (0, 2).
func NewPowerModel(nugget, slope, exponent float64) (*Model, error) {
	if err := validateNonNegative(nugget, "nugget"); err != nil {
		return nil, err
	}
	if err := validatePositive(slope, "slope"); err != nil {
		return nil, err
	}
	if exponent <= 0 || exponent >= 2 {
		return nil, fmt.Errorf("%w: \"exponent\" must be in (0, 2), got %v", ErrInvalidParameter, exponent)
	}
	return &Model{Type: Power, Nugget: nugget, Slope: slope, Exponent: exponent}, nil
}

// NewNuggetModel constructs the pure nugget effect: 0 at h = 0, constant
// nugget beyond.
func NewNuggetModel(nugget float64) (*Model, error) {
	if err := validatePositive(nugget, "nugget"); err != nil {
		return nil, err
	}
	return &Model{Type: Nugget, Nugget: nugget, Sill: nugget}, nil
}

// NewNestedModel sums the named component structures. An unrecognized
// component kind fails here with UnknownModelError, not at evaluation.
func NewNestedModel(structures []Structure) (*Model, error) {
	if len(structures) == 0 {
		return nil, fmt.Errorf("%w: \"structures\" must contain at least one model", ErrInvalidParameter)
	}
	parts := make([]Model, 0, len(structures))
	for _, s := range structures {
		var (
			m   *Model
			err error
		)
		switch s.Type {
		case Power:
			m, err = NewPowerModel(s.Nugget, s.Slope, s.Exponent)
		case Nugget:
			m, err = NewNuggetModel(s.Nugget)
		default:
			m, err = NewModel(s.Type, s.Nugget, s.Sill, s.RangeA)
		}
		if err != nil {
			return nil, err
		}
		parts = append(parts, *m)
	}
	return &Model{Type: Nested, Structures: parts}, nil
}

// Predict evaluates the semivariance γ at lag distance h. Negative lags are
// treated by magnitude. γ(0) is identically 0.
func (m *Model) Predict(h float64) float64 {
	h = math.Abs(h)
	if h == 0 {
		return 0
	}
	switch m.Type {
	case Spherical:
		if h >= m.RangeA {
			return m.Sill
		}
		hr := h / m.RangeA
		return m.Nugget + (m.Sill-m.Nugget)*(1.5*hr-0.5*pow3(hr))
	case Exponential:
		return m.Nugget + (m.Sill-m.Nugget)*(1-math.Exp(-3*h/m.RangeA))
	case Gaussian:
		return m.Nugget + (m.Sill-m.Nugget)*(1-math.Exp(-3*pow2(h/m.RangeA)))
	case Power:
		return m.Nugget + m.Slope*math.Pow(h, m.Exponent)
	case Nugget:
		return m.Nugget
	case HoleEffect:
		ratio := math.Pi * h / m.RangeA
		return m.Nugget + (m.Sill-m.Nugget)*(1-math.Sin(ratio)/ratio)
	case Nested:
		var total float64
		for i := range m.Structures {
			total += m.Structures[i].Predict(h)
		}
		return total
	}
	return math.NaN()
}

// PredictAll evaluates the model at every lag in hs.
func (m *Model) PredictAll(hs []float64) []float64 {
	out := make([]float64, len(hs))
	for i, h := range hs {
		out[i] = m.Predict(h)
	}
	return out
}

// Bounded reports whether the model reaches a finite sill, which every
// kriging variant requires for the covariance transform.
func (m *Model) Bounded() bool {
	switch m.Type {
	case Power:
		return false
	case Nested:
		for i := range m.Structures {
			if !m.Structures[i].Bounded() {
				return false
			}
		}
		return true
	}
	return true
}

// TotalSill is the plateau semivariance: the sill of a bounded family, the
// nugget of a pure nugget model, the component sum of a nested model, and
// NaN for the unbounded power model.
func (m *Model) TotalSill() float64 {
	switch m.Type {
	case Power:
		return math.NaN()
	case Nested:
		var total float64
		for i := range m.Structures {
			total += m.Structures[i].TotalSill()
		}
		return total
	}
	return m.Sill
}

// Covariance converts the variogram to a covariance under second-order
// stationarity: C(h) = sill − γ(h).
func (m *Model) Covariance(h float64) float64 {
	return m.TotalSill() - m.Predict(h)
}
