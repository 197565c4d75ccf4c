//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "resonance"

var Default = Build.Engine

type Build mg.Namespace

// Compiles cmd/resonance into bin/.
func (Build) Engine() error {
	if err := os.MkdirAll("bin", 0o755); err != nil {
		return err
	}
	out := filepath.Join("bin", binary)
	fmt.Printf("Building %s...\n", out)
	return sh.RunV("go", "build", "-o", out, "./cmd/resonance")
}

type Run mg.Namespace

// Runs the engine with resonance.toml from the repository root.
func (Run) Engine() error {
	mg.Deps(Build.Engine)
	return sh.RunV(filepath.Join("bin", binary), "-config", "resonance.toml")
}

// Runs the engine in editor mode.
func (Run) Editor() error {
	mg.Deps(Build.Engine)
	return sh.RunV(filepath.Join("bin", binary), "-config", "resonance.toml", "-editor")
}

type Check mg.Namespace

// Runs go vet over every package.
func (Check) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Runs the unit tests. None of them need a display.
func (Check) Test() error {
	args := []string{"test", "./internal/..."}
	if mg.Verbose() {
		args = append(args, "-v")
	}
	return sh.RunV("go", args...)
}

// Runs vet and the tests.
func (Check) All() {
	mg.SerialDeps(Check.Vet, Check.Test)
}

// Removes build output.
func Clean() error {
	return sh.Rm("bin")
}
