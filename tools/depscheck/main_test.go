package main

import "testing"

func TestForbidden(t *testing.T) {
	cases := map[string]bool{
		"math/rand":    true,
		"math/rand/v2": false,
		"os":           true,
		"os/exec":      true,
		"net/http":     true,
		"fmt":          false,
		"context":      false,
		"spirit-tamer/battlecore/internal/net/spectate": true,
		"spirit-tamer/battlecore/internal/rng":          false,
		"spirit-tamer/battlecore/logging":               false,
		"github.com/looplab/fsm":                        false,
	}
	for imp, want := range cases {
		if got := forbidden(imp); got != want {
			t.Fatalf("forbidden(%q) = %v, want %v", imp, got, want)
		}
	}
}
