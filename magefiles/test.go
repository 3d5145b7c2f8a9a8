//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// exampleScenario is the scenario exercised by test:scenario.
var exampleScenario = filepath.Join("internal", "scenario", "testdata", "zoo.yaml")

// goldenPackages hold goldie fixtures under testdata/golden.
var goldenPackages = []string{
	"./internal/schema",
	"./internal/scenario",
}

// Test groups test targets.
type Test mg.Namespace

// All runs all tests.
func (Test) All() error {
	return sh.RunV(binGo, "test", "./...")
}

// Race runs all tests with the race detector.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Golden regenerates the golden files of the packages that use them.
func (Test) Golden() error {
	for _, pkg := range goldenPackages {
		if err := sh.RunV(binGo, "test", pkg, "-update"); err != nil {
			return err
		}
	}
	return nil
}

// Scenario builds the binary and runs the example scenario on every backend.
func (Test) Scenario() error {
	mg.Deps(Build)
	bin := filepath.Join(binaryDir, binaryName)
	for _, backend := range []string{"memory", "sqlite"} {
		fmt.Printf("--- %s backend\n", backend)
		if err := sh.RunV(bin, "run", exampleScenario, "--backend", backend, "--metrics"); err != nil {
			return fmt.Errorf("%s backend: %w", backend, err)
		}
	}
	return nil
}
