package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yousuf/ctxgen/internal/config"
	"github.com/yousuf/ctxgen/internal/files"
)

// sdkPackage is the runtime dependency generated clients import.
const sdkPackage = "@contextvm/sdk"

type InitCmd struct {
	Yes bool `help:"Accept defaults and overwrite an existing configuration." short:"y"`
}

func (c *InitCmd) Run(g *Globals, e *env) error {
	fmt.Fprintln(e.out, "Initializing project for ctxgen...")

	packageJSON := filepath.Join(g.Dir, "package.json")
	if !files.FileExists(packageJSON) {
		return fmt.Errorf("no package.json found in %s; run this command in a project root directory", g.Dir)
	}

	s, err := e.newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	configPath := g.Config
	if configPath == "" {
		configPath = filepath.Join(g.Dir, config.DefaultFileName)
	}
	if files.FileExists(configPath) && !c.Yes {
		overwrite, err := s.AskYesNo(fmt.Sprintf("%s already exists. Do you want to overwrite it?", filepath.Base(configPath)), false)
		if err != nil {
			return err
		}
		if !overwrite {
			s.Println("Aborting initialization. Your existing configuration is safe.")
			return nil
		}
	}

	cfg := config.Default()
	if !c.Yes {
		s.Println("\nPlease provide your configuration details:")
		cfg.Source, err = s.Ask("Enter the source directory for generated clients", config.DefaultSource)
		if err != nil {
			return err
		}
		relays, err := s.Ask("Enter the relays to connect to (comma-separated)", strings.Join(config.DefaultRelays, ", "))
		if err != nil {
			return err
		}
		cfg.Relays = splitList(relays)
	}

	if err := config.Save(configPath, cfg); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Configuration file %s created.\n", filepath.Base(configPath))

	sourceDir := filepath.Join(g.Dir, cfg.Source)
	if !files.FileExists(sourceDir) {
		if err := os.MkdirAll(sourceDir, 0o755); err != nil {
			return fmt.Errorf("failed to create source directory: %w", err)
		}
		fmt.Fprintf(e.out, "Source directory %s created.\n", cfg.Source)
	}

	installed, err := hasDependency(packageJSON, sdkPackage)
	if err != nil {
		return err
	}
	if installed {
		fmt.Fprintf(e.out, "The %s dependency is already installed.\n", sdkPackage)
	} else {
		e.logger.Warn("dependency not found in package.json; install it so generated clients work", "package", sdkPackage)
	}

	fmt.Fprintln(e.out, "Project initialization complete. You can now use the add command.")
	return nil
}

// hasDependency reports whether the package.json at path lists pkg as a
// dependency or dev dependency.
func hasDependency(path, pkg string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read package.json: %w", err)
	}

	var manifest struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return false, fmt.Errorf("failed to parse package.json: %w", err)
	}

	_, dep := manifest.Dependencies[pkg]
	_, dev := manifest.DevDependencies[pkg]
	return dep || dev, nil
}
