// Copyright © 2025 Adam Hock
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config manages the tool's engine registry: a YAML file mapping
// engine names to the command and settings used to launch them. The
// registry is how the engine executable's location stays configuration
// instead of being fixed at build time.
package config

import (
	_ "embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v2"

	"github.com/adamhock/chess-game-fetcher/pkg/engine"
)

const Permissions = 0755

//go:embed engines.yaml
var defaultEngines []byte

var (
	Directory = filepath.Join(xdg.ConfigHome, "accuracy")

	EnginesFile = filepath.Join(Directory, "engines.yaml")
)

// EngineList maps a registry name to its engine configuration.
type EngineList map[string]engine.Config

// Engines loads the registry, creating it from the embedded default the
// first time around.
func Engines() (EngineList, error) {
	TryMkdir(Directory)
	TryCreate(EnginesFile, defaultEngines)

	file, err := os.ReadFile(EnginesFile)
	if err != nil {
		return nil, err
	}

	var list EngineList
	if err := yaml.Unmarshal(file, &list); err != nil {
		return nil, err
	}

	return list, nil
}

// Resolve returns the configuration registered under the given name. A
// name with no registry entry is treated as a path to the engine binary
// itself, so one-off engines work without registration.
func (list EngineList) Resolve(name string) engine.Config {
	if config, found := list[name]; found {
		if config.Name == "" {
			config.Name = name
		}
		return config
	}

	return engine.Config{
		Name: filepath.Base(name),
		Cmd:  name,
	}
}

// Dump writes the registry back to disk.
func (list EngineList) Dump() error {
	file, err := yaml.Marshal(list)
	if err != nil {
		return err
	}

	return os.WriteFile(EnginesFile, file, Permissions)
}

func TryMkdir(dir string) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		_ = os.MkdirAll(dir, Permissions)
	}
}

func TryCreate(file string, data []byte) {
	if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
		_ = os.WriteFile(file, data, Permissions)
	}
}
