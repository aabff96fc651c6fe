package config

import (
	"io"
	"os"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"insights-client/types"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// FromFile loads config from the given path, applying def for any
// setting the file leaves out.
func FromFile(path string, def interface{}) (interface{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, types.Wrap(types.ErrReadConfigFailed, err)
	}
	defer file.Close() //nolint:errcheck

	return FromReader(file, def)
}

// FromReader loads config from a reader instance.
func FromReader(reader io.Reader, def interface{}) (interface{}, error) {
	cfg := def
	_, err := toml.NewDecoder(reader).Decode(cfg)
	if err != nil {
		return nil, types.Wrap(types.ErrDecodeConfigFailed, err)
	}

	err = envconfig.Process("INSIGHTS", cfg)
	if err != nil {
		return nil, types.Wrapf(types.ErrInvalidConfig, "processing env vars overrides: %v", err)
	}

	return cfg, nil
}

// ConfigComment renders cfg as TOML with every default setting
// commented out, the form written on first use.
func ConfigComment(t interface{}) ([]byte, error) {
	return ConfigUpdate(t, nil, true)
}

func ConfigUpdate(cfgCur, cfgDef interface{}, comment bool) ([]byte, error) {
	var nodeStr, defStr string
	if cfgDef != nil {
		buf, err := ConfigBytes(cfgDef)
		if err != nil {
			return nil, err
		}
		defStr = string(buf)
	}

	{
		buf, err := ConfigBytes(cfgCur)
		if err != nil {
			return nil, err
		}
		nodeStr = string(buf)
	}

	if comment {
		// map of default lines, so we can comment those out below
		defLines := strings.Split(defStr, "\n")
		defaults := map[string]struct{}{}
		for i := range defLines {
			l := strings.TrimSpace(defLines[i])
			if len(l) == 0 {
				continue
			}
			if l[0] == '#' || l[0] == '[' {
				continue
			}
			defaults[l] = struct{}{}
		}

		nodeLines := strings.Split(nodeStr, "\n")
		var outLines []string

		sectionRx := regexp.MustCompile(`\[(.+)]`)

		for i, line := range nodeLines {
			// never comment sections
			trimmed := strings.TrimSpace(line)
			if len(trimmed) > 0 && trimmed[0] == '[' {
				m := sectionRx.FindSubmatch([]byte(trimmed))
				if len(m) != 2 {
					return nil, types.Wrapf(types.ErrInvalidConfig, "section didn't match (line %d)", i)
				}

				outLines = append(outLines, line)
				continue
			}

			pad := strings.Repeat(" ", len(line)-len(strings.TrimLeftFunc(line, unicode.IsSpace)))

			// if there is the same line in the default config, comment it out in output
			if _, found := defaults[strings.TrimSpace(nodeLines[i])]; (cfgDef == nil || found) && len(line) > 0 {
				line = pad + "#" + line[len(pad):]
			}
			outLines = append(outLines, line)
			if len(line) > 0 {
				outLines = append(outLines, "")
			}
		}

		nodeStr = strings.Join(outLines, "\n")
	}

	// sanity-check that the updated config parses the same way as the current one
	if cfgDef != nil {
		cfgUpdated, err := FromReader(strings.NewReader(nodeStr), cfgDef)
		if err != nil {
			return nil, types.Wrap(types.ErrDecodeConfigFailed, err)
		}

		if !reflect.DeepEqual(cfgCur, cfgUpdated) {
			return nil, types.Wrapf(types.ErrInvalidConfig, "updated config didn't match current config")
		}
	}

	return []byte(nodeStr), nil
}
