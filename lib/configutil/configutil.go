package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"github.com/titanous/json5"
)

// localName turns "dir/mgq.json5" into "dir/mgq.local.json5".
func localName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

// readLayer decodes the file at path into out, found is false when the
// file does not exist or is empty.
func readLayer(path string, out any) (found bool, err error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads the json5 configuration file `name` and merges
// `<name without ext>.local.<ext>` over it when it exists, values set in the
// local file win.
//
// os.ErrNotExist is returned when neither file exists.
func ReadConfig[T any](name string) (T, error) {
	var out T
	foundBase, err := readLayer(name, &out)
	if err != nil {
		return out, err
	}

	var override T
	local := localName(name)
	foundLocal, err := readLayer(local, &override)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, fmt.Errorf("merge %s: %w", local, err)
		}
		slog.Debug("merging config with local overrides", "local", local)
	}

	if !foundBase && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively is ReadConfig but it goes up the filesystem from the working
// directory until the root to find a configuration file matching the name.
func ReadRecursively[T any](name string) (T, error) {
	var defaultOut T

	current, err := os.Getwd()
	if err != nil {
		return defaultOut, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return defaultOut, err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return defaultOut, os.ErrNotExist
		}
		current = parent
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator instance, it caches struct metadata
// so it should not be recreated per call.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the `validate` struct tags of a config value.
func Validate(config any) error {
	err := Validator().Struct(config)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
