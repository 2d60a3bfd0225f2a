package chaos_test

import (
	"testing"

	"github.com/example/batch-email-service/internal/chaos"
)

func TestShouldFailZeroProbabilityNeverFires(t *testing.T) {
	inj := chaos.NewInjector(0)
	for i := 0; i < 1000; i++ {
		if inj.ShouldFail() {
			t.Fatal("injector fired with probability 0")
		}
	}
}

func TestShouldFailCertaintyAlwaysFires(t *testing.T) {
	inj := chaos.NewInjector(1)
	for i := 0; i < 1000; i++ {
		if !inj.ShouldFail() {
			t.Fatal("injector did not fire with probability 1")
		}
	}
}

func TestShouldFailUsesSuppliedSource(t *testing.T) {
	inj := chaos.NewInjector(0.5, chaos.WithSource(func() float64 { return 0.49 }))
	if !inj.ShouldFail() {
		t.Fatal("draw below threshold should fire")
	}

	inj = chaos.NewInjector(0.5, chaos.WithSource(func() float64 { return 0.5 }))
	if inj.ShouldFail() {
		t.Fatal("draw at threshold should not fire")
	}
}

func TestSeededInjectorsDrawIdentically(t *testing.T) {
	a := chaos.NewInjector(0.5, chaos.WithRandomSeed(42))
	b := chaos.NewInjector(0.5, chaos.WithRandomSeed(42))
	for i := 0; i < 100; i++ {
		if a.ShouldFail() != b.ShouldFail() {
			t.Fatalf("seeded injectors diverged at draw %d", i)
		}
	}
}

func TestProbabilityIsClamped(t *testing.T) {
	inj := chaos.NewInjector(-2, chaos.WithSource(func() float64 { return 0 }))
	if inj.ShouldFail() {
		t.Fatal("negative probability should clamp to 0")
	}

	inj = chaos.NewInjector(7, chaos.WithSource(func() float64 { return 0.999 }))
	if !inj.ShouldFail() {
		t.Fatal("probability above 1 should clamp to 1")
	}
}
