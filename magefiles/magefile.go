// Package main provides build targets for the calccell project using Mage.
//
// Usage:
//
//	mage build    Compile calccell binary to bin/
//	mage test     Run all tests
//	mage race     Run all tests with the race detector
//	mage cover    Run tests and write coverage.out
//	mage lint     Run golangci-lint
//	mage demo     Build and run the example sheets
//	mage clean    Remove build artifacts
//	mage install  Install calccell to GOPATH/bin
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo       = "go"
	binLint     = "golangci-lint"
	binaryName  = "calccell"
	binaryDir   = "bin"
	cmdDir      = "./cmd/calccell"
	examplesDir = "examples"
	coverFile   = "coverage.out"
	versionVar  = "github.com/mesh-intelligence/calccell/internal/cli.Version"
)

// Build compiles the calccell binary to bin/. CALCCELL_VERSION, when set,
// is stamped into the binary.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	args := []string{"build", "-v", "-o", filepath.Join(binaryDir, binaryName)}
	if v := os.Getenv("CALCCELL_VERSION"); v != "" {
		args = append(args, "-ldflags", fmt.Sprintf("-X %s=%s", versionVar, v))
	}
	return sh.RunV(binGo, append(args, cmdDir)...)
}

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// Race runs all tests with the race detector.
func Race() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Cover runs all tests and writes a coverage profile, then prints the
// per-function summary.
func Cover() error {
	if err := sh.RunV(binGo, "test", "-coverprofile="+coverFile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+coverFile)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV(binLint, "run", "./...")
}

// Demo builds the binary and runs every sheet in examples/ with the write
// journal enabled.
func Demo() error {
	mg.Deps(Build)
	sheets, err := filepath.Glob(filepath.Join(examplesDir, "*.yaml"))
	if err != nil {
		return err
	}
	sort.Strings(sheets)
	bin := filepath.Join(binaryDir, binaryName)
	for _, s := range sheets {
		fmt.Printf("== %s\n", s)
		if err := sh.RunV(bin, "check", s); err != nil {
			return err
		}
		if err := sh.RunV(bin, "run", "--journal", "-o", "yaml", s); err != nil {
			return err
		}
	}
	return nil
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	if err := os.Remove(coverFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
