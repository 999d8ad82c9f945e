//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Default = Build

// Build compiles the viewer binary into bin/.
func Build() error {
	return sh.RunV("go", "build", "-o", "bin/voxview", "./cmd/voxview")
}

// Run builds and launches the viewer.
func Run() error {
	mg.Deps(Build)
	return sh.RunV("./bin/voxview")
}

// Test runs the test suite.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet over the tree.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build outputs.
func Clean() error {
	return sh.Rm("bin")
}
