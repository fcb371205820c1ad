package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/lixenwraith/mpc-car/core"
)

// Load overlays a .cue, .toml or .json file on Default and validates the result
// An empty path returns the validated defaults
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, Validate(cfg)
	}

	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue":
		err = loadCUE(path, &cfg)
	case ".toml":
		err = loadTOML(path, &cfg)
	case ".json":
		var data []byte
		if data, err = os.ReadFile(path); err == nil {
			err = decodeJSON(data, &cfg)
		}
	default:
		return cfg, core.Invalid("unsupported config format %q", ext)
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "load %s", path)
	}
	return cfg, Validate(cfg)
}

func loadCUE(path string, cfg *Config) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ctx := cuecontext.New()
	value := ctx.CompileBytes(content, cue.Filename(path))
	if err := value.Err(); err != nil {
		return core.Invalid("compile: %s", details(err))
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return core.Invalid("cue values must be concrete: %s", details(err))
	}
	data, err := value.MarshalJSON()
	if err != nil {
		return core.Invalid("export: %s", details(err))
	}
	return decodeJSON(data, cfg)
}

func loadTOML(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return core.Invalid("%v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := lo.Map(undecoded, func(k toml.Key, _ int) string { return k.String() })
		return core.Invalid("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// decodeJSON overlays present fields only, unknown fields are errors
func decodeJSON(data []byte, cfg *Config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return core.Invalid("%v", err)
	}
	return nil
}
