//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "foodsync"

// Default target to run when none is specified
var Default = Build

// Build builds the foodsync binary
func Build() error {
	fmt.Println("Building", binary)
	// go-sqlite3 needs cgo
	env := map[string]string{"CGO_ENABLED": "1"}
	return sh.RunWith(env, "go", "build", "-o", binary, "./cmd/foodsync")
}

// Install installs foodsync into GOPATH/bin
func Install() error {
	mg.Deps(Build)
	return sh.RunWith(map[string]string{"CGO_ENABLED": "1"}, "go", "install", "./cmd/foodsync")
}

// Test runs all tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// TestRace runs all tests with the race detector
func TestRace() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs vet and tests
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Run syncs the food database with the local configuration
func Run() error {
	mg.Deps(Build)
	return sh.RunV("./" + binary)
}

// Clean removes build artifacts
func Clean() error {
	fmt.Println("Cleaning...")
	return os.RemoveAll(binary)
}
