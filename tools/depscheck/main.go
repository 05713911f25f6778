package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"sort"
	"strings"
)

const modulePath = "spirit-tamer/battlecore"

// corePackages must stay deterministic and free of process I/O.
var corePackages = []string{
	modulePath + "/internal/rng",
	modulePath + "/internal/combat",
	modulePath + "/internal/status",
	modulePath + "/internal/battle",
	modulePath + "/internal/ai",
	modulePath + "/internal/battlelog",
}

var forbiddenImports = []string{
	"math/rand",
	"os",
	"log",
	"net",
	"net/http",
	"database/sql",
	"github.com/gorilla/websocket",
	"modernc.org/sqlite",
	modulePath + "/internal/app",
	modulePath + "/internal/config",
	modulePath + "/internal/content",
	modulePath + "/internal/golden",
	modulePath + "/internal/net",
	modulePath + "/internal/scenario",
}

type packageInfo struct {
	ImportPath string
	Imports    []string
}

func main() {
	cmd := exec.Command("go", "list", "-json", "./internal/...")
	cmd.Env = os.Environ()
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Stderr.Write(exitErr.Stderr)
		}
		fmt.Fprintf(os.Stderr, "depscheck: failed to list packages: %v\n", err)
		os.Exit(1)
	}

	decoder := json.NewDecoder(bytes.NewReader(output))

	var violations []string
	for {
		var pkg packageInfo
		if err := decoder.Decode(&pkg); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			fmt.Fprintf(os.Stderr, "depscheck: failed to decode package info: %v\n", err)
			os.Exit(1)
		}
		if !slices.Contains(corePackages, pkg.ImportPath) {
			continue
		}
		for _, imp := range pkg.Imports {
			if forbidden(imp) {
				violations = append(violations, fmt.Sprintf("%s -> %s", pkg.ImportPath, imp))
			}
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		fmt.Fprintln(os.Stderr, "depscheck: found forbidden imports:")
		for _, violation := range violations {
			fmt.Fprintf(os.Stderr, "  %s\n", violation)
		}
		os.Exit(1)
	}
}

// forbidden matches exact imports and their subpackages, except that
// math/rand/v2 stays allowed for seeded sources.
func forbidden(imp string) bool {
	if imp == "math/rand/v2" {
		return false
	}
	for _, f := range forbiddenImports {
		if imp == f || strings.HasPrefix(imp, f+"/") {
			return true
		}
	}
	return false
}
