package guac

import (
	"bytes"
	"fmt"
	"io"
	"math"
)

// ----------------------------------------------------------------------------
// Builtin registry

// A BuiltinFunc receives the already-evaluated argument values and the
// evaluator's output stream. Builtins leave the scope register alone, a call
// site keeps whatever value the last argument evaluation left there.
type BuiltinFunc func(w io.Writer, args []int64) error

// Builtins is the registry of predefined callables every program starts with.
// The checker lets builtin calls through with any arity, each builtin enforces
// its own at evaluation time.
var Builtins = map[string]BuiltinFunc{
	"print":   builtinPrint,
	"println": builtinPrintln,
	"donut":   builtinDonut,
}

// RegisterBuiltins seeds 'scope' with one function entry per registry name.
func RegisterBuiltins(scope *Scope) {
	for name := range Builtins {
		scope.Define(Definition{Name: name, Kind: DefFunc, Builtin: true})
	}
}

// Prints the integer argument followed by a space.
func builtinPrint(w io.Writer, args []int64) error {
	if len(args) != 1 {
		return fmt.Errorf("'print' takes 1 argument, got %d", len(args))
	}

	_, err := fmt.Fprintf(w, "%d ", args[0])
	return err
}

// Prints the integer argument followed by a newline.
func builtinPrintln(w io.Writer, args []int64) error {
	if len(args) != 1 {
		return fmt.Errorf("'println' takes 1 argument, got %d", len(args))
	}

	_, err := fmt.Fprintf(w, "%d\n", args[0])
	return err
}

// Renders one frame of the ASCII donut. Purely decorative, ignores arguments.
func builtinDonut(w io.Writer, args []int64) error {
	const width, height = 80, 22
	const shades = ".,-~:;=!*#$@"

	depth := make([]float64, width*height)
	frame := bytes.Repeat([]byte{' '}, width*height)

	// Fixed rotation angles, a single frame of the classic animation.
	sinA, cosA := math.Sin(1.0), math.Cos(1.0)
	sinB, cosB := math.Sin(1.0), math.Cos(1.0)

	for theta := 0.0; theta < 2*math.Pi; theta += 0.07 {
		sinT, cosT := math.Sin(theta), math.Cos(theta)

		for phi := 0.0; phi < 2*math.Pi; phi += 0.02 {
			sinP, cosP := math.Sin(phi), math.Cos(phi)

			// Torus point, rotated around both axes and projected.
			circleX, circleY := cosT+2, sinT
			x := circleX*(cosB*cosP+sinA*sinB*sinP) - circleY*cosA*sinB
			y := circleX*(sinB*cosP-sinA*cosB*sinP) + circleY*cosA*cosB
			ooz := 1 / (cosA*circleX*sinP + circleY*sinA + 5)

			px := int(float64(width)/2 + 30*ooz*x)
			py := int(float64(height)/2 - 15*ooz*y)

			lum := cosP*cosT*sinB - cosA*cosT*sinP - sinA*sinT +
				cosB*(cosA*sinT-cosT*sinA*sinP)

			if lum > 0 && px >= 0 && px < width && py >= 0 && py < height {
				if idx := px + width*py; ooz > depth[idx] {
					depth[idx] = ooz
					frame[idx] = shades[int(lum*8)]
				}
			}
		}
	}

	for row := 0; row < height; row++ {
		if _, err := fmt.Fprintf(w, "%s\n", frame[row*width:(row+1)*width]); err != nil {
			return err
		}
	}

	return nil
}
