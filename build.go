//go:build ignore

// build.go - pipeline build helper
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, pipeline, test, clean

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

const binaryName = "trade-pipeline"

var (
	distDir = "dist"

	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
)

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	startTime := time.Now()

	switch *target {
	case "all":
		runTests(*verbose)
		buildPipeline(*verbose)
	case "pipeline":
		buildPipeline(*verbose)
	case "test":
		runTests(*verbose)
	case "clean":
		clean()
	default:
		printError(fmt.Sprintf("unknown target %q (want all, pipeline, test or clean)", *target))
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

// buildPipeline compiles cmd/pipeline into dist/
func buildPipeline(verbose bool) {
	printInfo("Building pipeline...")

	if err := os.MkdirAll(distDir, 0755); err != nil {
		printError(fmt.Sprintf("Failed to create %s: %v", distDir, err))
		os.Exit(1)
	}

	name := binaryName
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	outputPath := filepath.Join(distDir, name)

	ldflags := fmt.Sprintf("-s -w -X main.BuildTime=%s", time.Now().UTC().Format(time.RFC3339))
	args := []string{"build", "-ldflags", ldflags, "-o", outputPath, "./cmd/pipeline"}
	if verbose {
		args = append([]string{"build", "-v"}, args[1:]...)
	}

	if err := run(verbose, "go", args...); err != nil {
		printError(fmt.Sprintf("Failed to build pipeline: %v", err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", outputPath, float64(info.Size())/1024/1024))
	}
}

// runTests runs the Go test suite with the race detector
func runTests(verbose bool) {
	printInfo("Running Go tests...")

	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	if err := run(true, "go", args...); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
}

// clean removes build output
func clean() {
	printInfo("Cleaning build artifacts...")
	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean %s: %v", distDir, err))
		os.Exit(1)
	}
}

func run(stream bool, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if stream {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	return cmd.Run()
}
