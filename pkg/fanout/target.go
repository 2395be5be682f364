package fanout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Target is one downstream intake sheet. Class selects the field mapping;
// when empty the target's name is used.
type Target struct {
	Name    string `yaml:"name" json:"name"`
	SheetID string `yaml:"sheet_id" json:"sheet_id"`
	Class   string `yaml:"class,omitempty" json:"class,omitempty"`
}

func (t Target) MappingClass() string {
	if t.Class != "" {
		return t.Class
	}
	return t.Name
}

type targetsFile struct {
	Targets []Target `yaml:"targets"`
}

// LoadTargets reads the downstream target list. Every target must
// resolve to a known mapping class; an unknown class is a config error,
// not a silent no-op.
func LoadTargets(path string) ([]Target, error) {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var tf targetsFile
	if err := yaml.Unmarshal(content, &tf); err != nil {
		return nil, err
	}
	if len(tf.Targets) == 0 {
		return nil, errors.New("no downstream targets configured")
	}

	for _, t := range tf.Targets {
		if t.Name == "" || t.SheetID == "" {
			return nil, fmt.Errorf("target %q: name and sheet_id required", t.Name)
		}
		if _, ok := MappingFor(t.MappingClass()); !ok {
			return nil, fmt.Errorf("target %q: unknown mapping class %q", t.Name, t.MappingClass())
		}
	}
	return tf.Targets, nil
}
