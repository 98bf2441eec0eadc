// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package config

import (
	"os"
	"path/filepath"
	"strings"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// flagKeys maps command-line flag names to settings keys. Flags not listed
// here (such as --config or --log-format) never reach the settings.
var flagKeys = map[string]string{
	"layers":             "layers",
	"seed":               "seed",
	"loan-amount":        "loan_amount",
	"output":             "output_dir",
	"fork-policy":        "fork_policy",
	"highlight-spinoffs": "highlight_spinoffs",
	"max-worlds":         "max_worlds",
	"parallel":           "parallel",
}

// Load builds settings from defaults, an optional settings file and
// optional command-line flags, in increasing order of precedence.
//
// The file is validated against the settings schema before it is merged.
// Scripts referenced by custom events through script_file are read
// relative to the settings file.
func Load(path string, flags *pflag.FlagSet) (*Settings, error) {
	k := koanf.New(".")

	if path != "" {
		raw, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, oops.Code(CodeConfigInvalid).
				With("field", "config").
				With("path", path).
				Wrapf(err, "read settings file")
		}
		if err := ValidateSchema(raw); err != nil {
			return nil, oops.With("path", path).Wrap(err)
		}
		if err := k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
			return nil, oops.Code(CodeConfigInvalid).
				With("field", "config").
				With("path", path).
				Wrapf(err, "parse settings file")
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code(CodeConfigInvalid).With("field", "flags").Wrapf(err, "load command-line flags")
		}
	}

	settings := DefaultSettings()
	if err := k.UnmarshalWithConf("", &settings, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code(CodeConfigInvalid).With("field", "settings").Wrapf(err, "decode settings")
	}
	settings.applyDefaults()

	if err := settings.resolveScripts(filepath.Dir(path)); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *Settings) resolveScripts(baseDir string) error {
	for i := range s.CustomEvents {
		ce := &s.CustomEvents[i]
		if ce.Script != "" || ce.ScriptFile == "" {
			continue
		}
		scriptPath := ce.ScriptFile
		if !filepath.IsAbs(scriptPath) {
			scriptPath = filepath.Join(baseDir, scriptPath)
		}
		code, err := os.ReadFile(filepath.Clean(scriptPath))
		if err != nil {
			return oops.Code(CodeConfigInvalid).
				With("field", "custom_events.script_file").
				With("event", ce.Name).
				With("path", scriptPath).
				Wrapf(err, "read custom event script")
		}
		ce.Script = strings.TrimSpace(string(code))
	}
	return nil
}
