//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

// Build compiles the music executable into ./bin
func Build() error {
	mg.Deps(BuildMusic)
	fmt.Println("Compilation finished")
	return nil
}

func BuildMusic() error {
	fmt.Println("Building music executable...")
	return goCommand("build", "-ldflags", fmt.Sprintf("-X main.Version=%s", version()), "-o", "./bin/music", "./music")
}

// Test runs the unit tests of every package. The storage tests need the
// HDF5 C library.
func Test() error {
	fmt.Println("Running tests...")
	return goCommand("test", "./...")
}

// Vet runs go vet on every package
func Vet() error {
	return goCommand("vet", "./...")
}

func version() string {
	if v := os.Getenv("MUSIC_VERSION"); v != "" {
		return v
	}
	return "dev"
}

func goCommand(args ...string) error {
	ldflags := os.Getenv("CGO_LDFLAGS")
	cflags := os.Getenv("CGO_CFLAGS")
	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(),
		"CGO_ENABLED=1",
		fmt.Sprintf("CGO_LDFLAGS=%s", ldflags),
		fmt.Sprintf("CGO_CFLAGS=%s", cflags))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
