package fmsim

import (
	"testing"

	"github.com/gonum/floats"
)

func TestQuadraticPolar(t *testing.T) {
	p := QuadraticPolar{CD0: 0.02, K: 0.045}
	if !floats.EqualWithinAbs(p.CD(0), 0.02, 1e-12) {
		t.Fatalf("CD(0) = %f", p.CD(0))
	}
	if !floats.EqualWithinAbs(p.CD(0.5), 0.02+0.045*0.25, 1e-12) {
		t.Fatalf("CD(0.5) = %f", p.CD(0.5))
	}
	clOpt := p.OptimalCL()
	// At the optimum, induced drag equals parasite drag.
	if !floats.EqualWithinAbs(p.K*clOpt*clOpt, p.CD0, 1e-12) {
		t.Fatalf("optimal CL %f does not split the drag", clOpt)
	}
	// Perturbing the CL away from optimum must degrade CL/CD.
	ld := p.MaxLiftToDrag()
	for _, cl := range []float64{0.8 * clOpt, 1.2 * clOpt} {
		if cl/p.CD(cl) >= ld {
			t.Fatalf("CL/CD at %f beats the claimed optimum", cl)
		}
	}
}

func TestFitQuadraticPolar(t *testing.T) {
	ref := QuadraticPolar{CD0: 0.0185, K: 0.052}
	var cl, cd []float64
	for c := 0.1; c <= 1.0; c += 0.1 {
		cl = append(cl, c)
		cd = append(cd, ref.CD(c))
	}
	fit, err := FitQuadraticPolar(cl, cd)
	if err != nil {
		t.Fatalf("fit failed: %s", err)
	}
	if !floats.EqualWithinAbs(fit.CD0, ref.CD0, 1e-9) {
		t.Fatalf("fitted CD0 %f", fit.CD0)
	}
	if !floats.EqualWithinAbs(fit.K, ref.K, 1e-9) {
		t.Fatalf("fitted K %f", fit.K)
	}
}

func TestFitQuadraticPolarErrors(t *testing.T) {
	if _, err := FitQuadraticPolar([]float64{0.1, 0.2}, []float64{0.02}); err == nil {
		t.Fatal("mismatched tables should fail")
	}
	if _, err := FitQuadraticPolar([]float64{0.1}, []float64{0.02}); err == nil {
		t.Fatal("a single point should fail")
	}
}
