package config

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/a8m/envsubst"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	"gopkg.in/yaml.v3"

	"go.viam.com/dwa/logging"
	"go.viam.com/dwa/motionplan/dwa"
)

// Format is a config file encoding.
type Format string

// Supported config encodings.
const (
	FormatJSON  Format = "json"
	FormatJSON5 Format = "json5"
	FormatYAML  Format = "yaml"
)

// FormatFromPath picks the encoding from the file extension. Unknown extensions are read as json.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json5":
		return FormatJSON5
	default:
		return FormatJSON
	}
}

// Read reads a config from the given file. Environment variable references are expanded before
// the file is parsed.
func Read(
	ctx context.Context,
	filePath string,
	logger logging.Logger,
) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return FromReader(ctx, filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies where, if applicable, the file
// the reader originated from. The encoding is taken from originalPath.
func FromReader(
	ctx context.Context,
	originalPath string,
	r io.Reader,
	logger logging.Logger,
) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}

	raw, err := decodeRaw(FormatFromPath(originalPath), data)
	if err != nil {
		return nil, err
	}

	cfg := Config{ConfigFilePath: originalPath}
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata:         &md,
		Result:           &cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode Config")
	}
	if missing := missingPlannerKeys(md.Unset); len(missing) > 0 {
		return nil, NewMissingFieldsError("planner", missing)
	}

	if err := cfg.Ensure(logger); err != nil {
		return nil, errors.Wrap(err, "failed to process Config")
	}
	logger.Debugw("config loaded", "path", originalPath, "obstacles", len(cfg.Scenario.Obstacles))
	return &cfg, nil
}

func decodeRaw(format Format, data []byte) (map[string]interface{}, error) {
	raw := map[string]interface{}{}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrap(err, "failed to decode Config from yaml")
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrap(err, "failed to decode Config from json")
		}
	case FormatJSON5:
		if err := json5.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrap(err, "failed to decode Config from json5")
		}
	default:
		return nil, errors.Errorf("unsupported config format %q", format)
	}
	return raw, nil
}

// plannerKeys are the mapstructure keys of dwa.Parameters, all of which are required.
var plannerKeys = func() map[string]struct{} {
	keys := map[string]struct{}{}
	t := reflect.TypeOf(dwa.Parameters{})
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("mapstructure"); tag != "" {
			keys[tag] = struct{}{}
		}
	}
	return keys
}()

func missingPlannerKeys(unset []string) []string {
	missing := lo.Filter(unset, func(key string, _ int) bool {
		_, ok := plannerKeys[key]
		return ok
	})
	sort.Strings(missing)
	return missing
}
