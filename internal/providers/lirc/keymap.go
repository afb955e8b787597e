package lirc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Binding maps one remote button to a command string.
type Binding struct {
	// Program restricts the binding to one client name. Empty matches all.
	Program string `yaml:"prog" toml:"prog"`
	// Remote restricts the binding to one remote. Empty or "*" matches all.
	Remote string `yaml:"remote" toml:"remote"`
	Button string `yaml:"button" toml:"button"`
	Config string `yaml:"config" toml:"config"`
	// Repeat passes every Repeat-th repeated event. Zero ignores repeats.
	Repeat int `yaml:"repeat" toml:"repeat"`
}

func (b Binding) matches(program, remoteName, button string, repeat int) bool {
	if b.Program != "" && b.Program != program {
		return false
	}
	if b.Remote != "" && b.Remote != "*" && b.Remote != remoteName {
		return false
	}
	if b.Button != "*" && b.Button != button {
		return false
	}
	if repeat == 0 {
		return true
	}
	return b.Repeat > 0 && repeat%b.Repeat == 0
}

// Keymap is an ordered list of bindings for one program.
type Keymap struct {
	Program  string
	Bindings []Binding `yaml:"bindings" toml:"binding"`
}

// Lookup returns the config strings of every binding that fires for the
// event, in file order.
func (k *Keymap) Lookup(remoteName, button string, repeat int) []string {
	if k == nil {
		return nil
	}
	var configs []string
	for _, b := range k.Bindings {
		if b.matches(k.Program, remoteName, button, repeat) {
			configs = append(configs, b.Config)
		}
	}
	return configs
}

// LoadKeymap reads a keymap file. The format is chosen by extension: .yaml
// and .yml are YAML, .toml is TOML and anything else is lircrc.
func LoadKeymap(path, program string) (*Keymap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keymap: %w", err)
	}
	defer f.Close()

	var keymap *Keymap
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		keymap, err = decodeStructured(f, program, yaml.Unmarshal)
	case ".toml":
		keymap, err = decodeStructured(f, program, toml.Unmarshal)
	default:
		keymap, err = ParseLircrc(f, program)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse keymap %s: %w", path, err)
	}
	return keymap, nil
}

func decodeStructured(r io.Reader, program string, unmarshal func([]byte, any) error) (*Keymap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var keymap Keymap
	if err := unmarshal(data, &keymap); err != nil {
		return nil, err
	}
	for i, b := range keymap.Bindings {
		if b.Button == "" || b.Config == "" {
			return nil, fmt.Errorf("binding %d: button and config are required", i+1)
		}
	}
	keymap.Program = program
	return &keymap, nil
}

// ParseLircrc reads the lircrc format:
//
//	begin
//	    prog = browser
//	    button = KEY_UP
//	    config = KEY Up
//	    repeat = 1
//	end
//
// Comments start with '#'. Unknown keys are ignored.
func ParseLircrc(r io.Reader, program string) (*Keymap, error) {
	keymap := &Keymap{Program: program}
	scanner := bufio.NewScanner(r)

	var current *Binding
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch line {
		case "begin":
			if current != nil {
				return nil, fmt.Errorf("line %d: nested begin", lineNo)
			}
			current = &Binding{}
			continue
		case "end":
			if current == nil {
				return nil, fmt.Errorf("line %d: end without begin", lineNo)
			}
			if current.Button == "" {
				return nil, fmt.Errorf("line %d: binding without button", lineNo)
			}
			keymap.Bindings = append(keymap.Bindings, *current)
			current = nil
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected key = value", lineNo)
		}
		if current == nil {
			return nil, fmt.Errorf("line %d: %q outside begin/end", lineNo, strings.TrimSpace(key))
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "prog":
			current.Program = value
		case "remote":
			current.Remote = value
		case "button":
			current.Button = value
		case "config":
			current.Config = value
		case "repeat":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("line %d: invalid repeat %q", lineNo, value)
			}
			current.Repeat = n
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if current != nil {
		return nil, fmt.Errorf("unterminated begin block")
	}
	return keymap, nil
}
