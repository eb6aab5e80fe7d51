// Package catalogue loads the host's command catalogue: the list of command
// ids, display names and hotkey labels that projections render rows for.
//
// Supported files:
//
//	.yaml, .yml, .json  decoded with yaml.v3 (JSON is accepted as YAML)
//	.cue                compiled with the CUE SDK
//
// All three share one shape:
//
//	commands: [
//	  {id: "editor:save-file", name: "Save current file", hotkeys: ["Ctrl+S"]},
//	]
package catalogue

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/cmdtrack/internal/ir"
)

// Error codes.
const (
	ErrCodeRead        = "CATALOGUE_READ"
	ErrCodeUnsupported = "CATALOGUE_UNSUPPORTED"
	ErrCodeParse       = "CATALOGUE_PARSE"
	ErrCodeInvalid     = "CATALOGUE_INVALID"
)

// LoadError reports a catalogue that could not be loaded. Pos is set for
// CUE sources and for YAML entries that carry a line number.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
	Line    int
	File    string
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Code, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads the catalogue at path.
func Load(path string) ([]ir.CommandDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, File: path, Message: err.Error()}
	}
	return Parse(path, data)
}

// Parse decodes catalogue data. name selects the decoder by extension and
// labels error positions.
func Parse(name string, data []byte) ([]ir.CommandDescriptor, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return parseYAML(name, data)
	case ".cue":
		return parseCUE(name, data)
	default:
		return nil, &LoadError{
			Code:    ErrCodeUnsupported,
			File:    name,
			Message: fmt.Sprintf("unsupported catalogue extension %q (want .yaml, .yml, .json or .cue)", filepath.Ext(name)),
		}
	}
}

type yamlFile struct {
	Commands []yamlCommand `yaml:"commands"`
}

type yamlCommand struct {
	ID      string    `yaml:"id"`
	Name    string    `yaml:"name"`
	Hotkeys []string  `yaml:"hotkeys"`
	Node    yaml.Node `yaml:"-"`
}

// UnmarshalYAML keeps the node so validation errors can point at a line.
func (c *yamlCommand) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlCommand
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = yamlCommand(p)
	c.Node = *node
	return nil
}

func parseYAML(name string, data []byte) ([]ir.CommandDescriptor, error) {
	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, File: name, Message: err.Error()}
	}

	cmds := make([]ir.CommandDescriptor, 0, len(f.Commands))
	for i, c := range f.Commands {
		cmd := normalize(ir.CommandDescriptor{ID: c.ID, Name: c.Name, Hotkeys: c.Hotkeys})
		if cmd.ID == "" {
			return nil, &LoadError{
				Code:    ErrCodeInvalid,
				File:    name,
				Line:    c.Node.Line,
				Message: fmt.Sprintf("commands[%d]: id is required", i),
			}
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func parseCUE(name string, data []byte) ([]ir.CommandDescriptor, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, cueError(name, err)
	}

	list := v.LookupPath(cue.ParsePath("commands"))
	if !list.Exists() {
		return []ir.CommandDescriptor{}, nil
	}
	iter, err := list.List()
	if err != nil {
		return nil, cueError(name, err)
	}

	var cmds []ir.CommandDescriptor
	for i := 0; iter.Next(); i++ {
		item := iter.Value()
		if !item.LookupPath(cue.ParsePath("id")).Exists() {
			return nil, &LoadError{
				Code:    ErrCodeInvalid,
				File:    name,
				Pos:     item.Pos(),
				Message: fmt.Sprintf("commands[%d]: id is required", i),
			}
		}

		var cmd ir.CommandDescriptor
		if err := item.Decode(&cmd); err != nil {
			return nil, cueError(name, err)
		}
		cmd = normalize(cmd)
		if cmd.ID == "" {
			return nil, &LoadError{
				Code:    ErrCodeInvalid,
				File:    name,
				Pos:     item.Pos(),
				Message: fmt.Sprintf("commands[%d]: id is required", i),
			}
		}
		cmds = append(cmds, cmd)
	}
	if cmds == nil {
		cmds = []ir.CommandDescriptor{}
	}
	return cmds, nil
}

// cueError extracts the first positioned error from a CUE error list.
func cueError(name string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: ErrCodeParse, File: name, Message: err.Error()}
	}
	first := errs[0]
	loadErr := &LoadError{Code: ErrCodeParse, File: name, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		loadErr.Pos = positions[0]
	}
	return loadErr
}

// normalize trims and NFC-normalizes the text fields so that ids typed on
// different platforms compare equal.
func normalize(cmd ir.CommandDescriptor) ir.CommandDescriptor {
	out := ir.CommandDescriptor{
		ID:   norm.NFC.String(strings.TrimSpace(cmd.ID)),
		Name: norm.NFC.String(strings.TrimSpace(cmd.Name)),
	}
	for _, hk := range cmd.Hotkeys {
		hk = norm.NFC.String(strings.TrimSpace(hk))
		if hk != "" {
			out.Hotkeys = append(out.Hotkeys, hk)
		}
	}
	if out.Name == "" {
		out.Name = out.ID
	}
	return out
}
