package dag

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/ticksim/errors"
	"github.com/kbukum/ticksim/validation"
)

// Definition is the YAML form of a workflow.
type Definition struct {
	// Name is the workflow identifier.
	Name string `yaml:"name" validate:"required"`
	// SLO is the optional completion budget in ticks.
	SLO *int `yaml:"slo,omitempty" validate:"omitempty,gt=0"`
	// Functions lists the workflow's functions and their dependencies.
	Functions []FunctionDef `yaml:"functions" validate:"required,min=1,dive"`
}

// FunctionDef defines a function within a workflow definition.
type FunctionDef struct {
	// ID is the unique function name.
	ID string `yaml:"id" validate:"required"`
	// DependsOn lists functions that must run first.
	DependsOn []string `yaml:"depends_on,omitempty"`
	// Costs maps resource type to variant to ticks.
	Costs CostTable `yaml:"costs" validate:"required,min=1"`
}

// DefinitionLoader loads workflow definitions by name.
type DefinitionLoader interface {
	Load(name string) (*Definition, error)
}

// FileLoader loads definitions from YAML files on disk.
type FileLoader struct {
	dirs []string
}

// NewFileLoader creates a loader that searches the given directories for workflow YAML files.
func NewFileLoader(dirs ...string) *FileLoader {
	return &FileLoader{dirs: dirs}
}

// Load searches for {name}.yaml and {name}.yml in each directory, then one
// level of subdirectories. A file that exists but does not parse or validate
// ends the search with its error.
func (l *FileLoader) Load(name string) (*Definition, error) {
	for _, dir := range l.dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			candidates := []string{filepath.Join(dir, name+ext)}
			matches, _ := filepath.Glob(filepath.Join(dir, "*", name+ext))
			candidates = append(candidates, matches...)

			for _, path := range candidates {
				d, err := LoadDefinition(path)
				if err == nil {
					return d, nil
				}
				if !errors.HasCode(err, errors.ErrCodeNotFound) {
					return nil, err
				}
			}
		}
	}
	return nil, errors.NotFound("workflow", name).WithDetail("dirs", l.dirs)
}

// LoadDefinition reads and validates a definition file.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.NotFound("workflow file", path).WithCause(err)
	}
	if err != nil {
		return nil, errors.InvalidInput("path", fmt.Sprintf("cannot read %s", path)).WithCause(err)
	}
	d, err := ParseDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("dag: parsing %s: %w", path, err)
	}
	return d, nil
}

// ParseDefinition decodes and validates a YAML definition.
func ParseDefinition(data []byte) (*Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, errors.Validation("invalid workflow yaml").WithCause(err)
	}
	if err := validation.Validate(d); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadWorkflow reads a definition file and builds its workflow.
func LoadWorkflow(path string) (*Workflow, error) {
	d, err := LoadDefinition(path)
	if err != nil {
		return nil, err
	}
	return d.Build()
}

// Build converts the definition into a validated, unsealed Workflow.
func (d *Definition) Build() (*Workflow, error) {
	var opts []Option
	if d.SLO != nil {
		opts = append(opts, WithSLO(*d.SLO))
	}
	w := New(d.Name, opts...)

	for _, def := range d.Functions {
		fn, err := NewFunction(def.ID, def.Costs)
		if err != nil {
			return nil, err
		}
		if err := w.AddFunction(fn); err != nil {
			return nil, err
		}
	}

	for _, def := range d.Functions {
		to, _ := w.Get(def.ID)
		for _, dep := range def.DependsOn {
			from, ok := w.Get(dep)
			if !ok {
				return nil, errors.NotFound("function", dep).WithDetails(map[string]any{
					"workflow":   d.Name,
					"depends_on": def.ID,
				})
			}
			if err := w.AddEdge(from, to); err != nil {
				return nil, err
			}
		}
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}
