//go:build mage

// Package main contains Mage build targets for research-assistant developer tooling.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir     = "bin"
	binName    = "research-assistant"
	cmdPkg     = "./cmd/research-assistant"
	configFile = "research-assistant.yaml"
	secretsDir = ".secrets"
)

// sampleConfig is written by Init when no config file exists.
const sampleConfig = `# research-assistant configuration. Every key can also be set with a
# RESEARCH_ASSISTANT_ environment variable, e.g. RESEARCH_ASSISTANT_MODEL_PROVIDER.
model:
  provider: nvidia
  model: mistralai/mixtral-8x7b-instruct-v0.1
  api_key_env: NVIDIA_API_KEY
  timeout: 90s
agent:
  max_steps: 12
  timeout: 5m
search:
  provider: duckduckgo
  max_results: 5
  timeout: 15s
wikipedia:
  language: en
  top_k: 2
  max_chars: 2000
tools:
  output_dir: .
  research_log: research_output.txt
dashboard:
  addr: ":8501"
log:
  level: info
`

// Init writes a sample config file and creates the secrets directory.
func Init() error {
	if err := os.MkdirAll(secretsDir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", secretsDir, err)
	}
	fmt.Println("  ", secretsDir)

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(configFile, []byte(sampleConfig), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", configFile, err)
		}
		fmt.Println("  ", configFile)
	}
	fmt.Println("Project initialized. Put your API key in .env or .secrets/nvidia-api-key.")
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs every package test.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Serve builds the CLI and starts the dashboard.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "serve")
}

// statsRoots are the source trees Stats reports on.
var statsRoots = []string{"cmd", "internal", "pkg", "magefiles"}

// statsDocs are the documents whose words Stats counts.
var statsDocs = []string{"DESIGN.md", "SPEC_FULL.md"}

// pkgLines is the non-blank line count of one package directory.
type pkgLines struct {
	prod, test int
}

// Stats prints non-blank Go lines per package, split into production and
// test code, and the word count of the design documents.
func Stats() error {
	perPkg := make(map[string]*pkgLines)
	for _, root := range statsRoots {
		if err := countPackageLines(root, perPkg); err != nil {
			return err
		}
	}

	dirs := make([]string, 0, len(perPkg))
	for dir := range perPkg {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var total pkgLines
	fmt.Printf("%-36s %8s %8s\n", "package", "prod", "test")
	for _, dir := range dirs {
		n := perPkg[dir]
		total.prod += n.prod
		total.test += n.test
		fmt.Printf("%-36s %8d %8d\n", dir, n.prod, n.test)
	}
	fmt.Printf("%-36s %8d %8d\n", "total", total.prod, total.test)

	for _, doc := range statsDocs {
		data, err := os.ReadFile(doc)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", doc, err)
		}
		fmt.Printf("Words (%s): %d\n", doc, len(strings.Fields(string(data))))
	}
	return nil
}

// countPackageLines adds the non-blank lines of every .go file under root to
// the entry of its directory. Template and other non-Go files are skipped.
func countPackageLines(root string, perPkg map[string]*pkgLines) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".go" {
			return nil
		}
		n, err := nonBlankLines(path)
		if err != nil {
			return err
		}
		dir := filepath.ToSlash(filepath.Dir(path))
		if perPkg[dir] == nil {
			perPkg[dir] = &pkgLines{}
		}
		if strings.HasSuffix(path, "_test.go") {
			perPkg[dir].test += n
		} else {
			perPkg[dir].prod += n
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func nonBlankLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	return n, nil
}
