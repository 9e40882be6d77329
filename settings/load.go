package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/tidwall/jsonc"
)

// Workspace settings file names, checked in order.
var discoverNames = []string{
	".csslens.json",
	".csslens.jsonc",
	".csslens.yaml",
	".csslens.yml",
}

// jsoncParser is a koanf parser for JSON with comments and trailing
// commas.
type jsoncParser struct{}

func (jsoncParser) Unmarshal(b []byte) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(b), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (jsoncParser) Marshal(m map[string]any) ([]byte, error) {
	return json.Marshal(m)
}

// ParserFor returns the koanf parser matching a settings file
// extension: JSONC for .json/.jsonc, YAML for .yaml/.yml.
func ParserFor(path string) (koanf.Parser, error) {
	switch filepath.Ext(path) {
	case ".json", ".jsonc":
		return jsoncParser{}, nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, fmt.Errorf("settings: unsupported file type %q", filepath.Ext(path))
	}
}

// LoadFile reads one settings file over the defaults. Invalid field
// values are replaced by defaults and reported; a missing or
// unreadable file is an error.
func LoadFile(path string) (Settings, []*ValidationError, error) {
	s := Default()
	parser, err := ParserFor(path)
	if err != nil {
		return s, nil, err
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return s, nil, fmt.Errorf("settings: load %s: %w", path, err)
	}
	if err := k.Unmarshal("", &s); err != nil {
		return s, nil, fmt.Errorf("settings: parse %s: %w", path, err)
	}
	return s, s.Normalize(), nil
}

// Discover returns the workspace settings file under root, if any.
func Discover(root string) (string, bool) {
	for _, name := range discoverNames {
		path := filepath.Join(root, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Load resolves settings for a workspace root: the discovered settings
// file when present, defaults otherwise.
func Load(root string) (Settings, []*ValidationError, error) {
	if path, ok := Discover(root); ok {
		return LoadFile(path)
	}
	return Default(), nil, nil
}
