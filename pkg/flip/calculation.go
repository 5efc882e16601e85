package flip

import "github.com/go-drift/pageflip/pkg/geometry"

// Calculation is the fold state of one gesture. It is created when the
// gesture starts, fed every pointer or animation sample through Calc, and
// dropped when the gesture ends.
type Calculation struct {
	params Params
	fold   Fold
	valid  bool
	err    error
}

// NewCalculation validates p and returns a calculation with no fold yet.
func NewCalculation(p Params) (*Calculation, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Calculation{params: p}, nil
}

// Calc computes the fold for pos. On failure it returns false and the last
// good fold is kept, so the previous frame stays on screen.
func (c *Calculation) Calc(pos geometry.Point) bool {
	f, err := ComputeFold(c.params, pos)
	if err != nil {
		c.err = err
		Logger().Debug("fold skipped", "direction", c.params.Direction, "corner", c.params.Corner, "error", err)
		return false
	}
	c.fold = f
	c.valid = true
	c.err = nil
	return true
}

// Fold returns the last successfully computed fold. ok is false until Calc
// has succeeded once.
func (c *Calculation) Fold() (f Fold, ok bool) {
	return c.fold, c.valid
}

// Err returns the error of the most recent Calc, or nil if it succeeded.
func (c *Calculation) Err() error { return c.err }

// Params returns the parameters the calculation was created with.
func (c *Calculation) Params() Params { return c.params }

// Direction returns the direction of the turn.
func (c *Calculation) Direction() Direction { return c.params.Direction }

// Corner returns the corner the fold pivots around.
func (c *Calculation) Corner() Corner { return c.params.Corner }
