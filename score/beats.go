package score

import (
	"fmt"
	"math/big"
)

// Beats is a non-negative rational amount of musical time. One beat is the
// composition's default note length.
//
// The zero value is zero beats. A Beats never changes after construction; every
// arithmetic method returns a new value.
type Beats struct {
	r *big.Rat
}

// NewBeats returns num/den beats. It panics if den is zero.
func NewBeats(num, den int64) Beats {
	if den == 0 {
		panic("score: zero denominator")
	}
	return Beats{r: big.NewRat(num, den)}
}

// WholeBeats returns n beats.
func WholeBeats(n int64) Beats {
	return NewBeats(n, 1)
}

func (b Beats) rat() *big.Rat {
	if b.r == nil {
		return new(big.Rat)
	}
	return b.r
}

// Add returns b + o.
func (b Beats) Add(o Beats) Beats {
	return Beats{r: new(big.Rat).Add(b.rat(), o.rat())}
}

// Mul returns b scaled by o.
func (b Beats) Mul(o Beats) Beats {
	return Beats{r: new(big.Rat).Mul(b.rat(), o.rat())}
}

// Scale returns b * num/den.
func (b Beats) Scale(num, den int64) Beats {
	return b.Mul(NewBeats(num, den))
}

// Div returns b / o. It panics if o is zero.
func (b Beats) Div(o Beats) Beats {
	if o.IsZero() {
		panic("score: division by zero beats")
	}
	return Beats{r: new(big.Rat).Quo(b.rat(), o.rat())}
}

// Cmp compares b and o and returns -1, 0 or +1.
func (b Beats) Cmp(o Beats) int {
	return b.rat().Cmp(o.rat())
}

// Equal reports whether b and o are the same amount of time.
func (b Beats) Equal(o Beats) bool {
	return b.Cmp(o) == 0
}

// Sign returns -1, 0 or +1 depending on the sign of b.
func (b Beats) Sign() int {
	return b.rat().Sign()
}

func (b Beats) IsZero() bool {
	return b.Sign() == 0
}

// Num and Denom return the reduced fraction.
func (b Beats) Num() int64   { return b.rat().Num().Int64() }
func (b Beats) Denom() int64 { return b.rat().Denom().Int64() }

// Float64 returns the nearest float64 value, which is what schedulers consume.
func (b Beats) Float64() float64 {
	f, _ := b.rat().Float64()
	return f
}

// Max returns the larger of b and o.
func (b Beats) Max(o Beats) Beats {
	if o.Cmp(b) > 0 {
		return o
	}
	return b
}

// String renders b as "n" or "n/d".
func (b Beats) String() string {
	if b.Denom() == 1 {
		return fmt.Sprintf("%d", b.Num())
	}
	return fmt.Sprintf("%d/%d", b.Num(), b.Denom())
}
