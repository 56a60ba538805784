package schema

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// Block is a datasource or generator block: a name and key = value pairs
// whose values are kept as written.
type Block struct {
	Name       string
	Properties map[string]string
	Line       int
}

// Field is one column line of a model.
type Field struct {
	Name       string
	Type       string
	Attributes string
}

// Model is a model block.
type Model struct {
	Name   string
	Fields []Field
	Line   int
	// Map is the @@map table name, empty when the model name is the table.
	Map string
}

// Table returns the database table the model is stored in.
func (m Model) Table() string {
	if m.Map != "" {
		return m.Map
	}
	return m.Name
}

// Schema is the subset of a Prisma schema the service cares about.
type Schema struct {
	Datasources []Block
	Generators  []Block
	Models      []Model
	Enums       []string
}

// Generator returns the generator block named name.
func (s *Schema) Generator(name string) (Block, bool) {
	for _, g := range s.Generators {
		if g.Name == name {
			return g, true
		}
	}
	return Block{}, false
}

// ParseFile reads and parses the schema at path.
func ParseFile(fsys afero.Fs, path string) (*Schema, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse reads datasource, generator, model and enum blocks. Other top-level
// blocks (type, view) are skipped.
func Parse(r io.Reader) (*Schema, error) {
	s := &Schema{}
	sc := bufio.NewScanner(r)

	var (
		kind   string
		block  *Block
		model  *Model
		lineNo int
		openAt int
	)

	for sc.Scan() {
		lineNo++
		line := stripComment(sc.Text())
		if line == "" {
			continue
		}

		if kind == "" {
			k, name, ok := blockHeader(line)
			if !ok {
				return nil, fmt.Errorf("line %d: unexpected %q outside a block", lineNo, line)
			}
			kind, openAt = k, lineNo
			switch k {
			case "datasource", "generator":
				block = &Block{Name: name, Properties: map[string]string{}, Line: lineNo}
			case "model":
				model = &Model{Name: name, Line: lineNo}
			case "enum":
				s.Enums = append(s.Enums, name)
			}
			continue
		}

		if line == "}" {
			switch kind {
			case "datasource":
				s.Datasources = append(s.Datasources, *block)
			case "generator":
				s.Generators = append(s.Generators, *block)
			case "model":
				s.Models = append(s.Models, *model)
			}
			kind, block, model = "", nil, nil
			continue
		}

		switch kind {
		case "datasource", "generator":
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				return nil, fmt.Errorf("line %d: expected key = value in %s %s", lineNo, kind, block.Name)
			}
			block.Properties[strings.TrimSpace(key)] = strings.TrimSpace(value)
		case "model":
			if strings.HasPrefix(line, "@@") {
				if arg, ok := strings.CutPrefix(line, "@@map("); ok {
					if name, ok := StringValue(strings.TrimSuffix(strings.TrimSpace(arg), ")")); ok {
						model.Map = name
					}
				}
				continue
			}
			parts := strings.Fields(line)
			if len(parts) < 2 {
				return nil, fmt.Errorf("line %d: field %q has no type", lineNo, line)
			}
			model.Fields = append(model.Fields, Field{
				Name:       parts[0],
				Type:       parts[1],
				Attributes: strings.Join(parts[2:], " "),
			})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if kind != "" {
		return nil, fmt.Errorf("line %d: %s block is never closed", openAt, kind)
	}

	return s, nil
}

// blockHeader recognises "<kind> <name> {".
func blockHeader(line string) (kind, name string, ok bool) {
	if !strings.HasSuffix(line, "{") {
		return "", "", false
	}
	parts := strings.Fields(strings.TrimSuffix(line, "{"))
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// stripComment drops // comments that are not inside a string literal.
func stripComment(line string) string {
	inString := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '"':
			inString = !inString
		case '/':
			if !inString && i+1 < len(line) && line[i+1] == '/' {
				return strings.TrimSpace(line[:i])
			}
		}
	}
	return strings.TrimSpace(line)
}

// StringValue unquotes a "..." property value.
func StringValue(raw string) (string, bool) {
	v, err := strconv.Unquote(raw)
	if err != nil {
		return "", false
	}
	return v, true
}

// EnvName extracts VAR from an env("VAR") property value.
func EnvName(raw string) (string, bool) {
	inner, ok := strings.CutPrefix(raw, "env(")
	if !ok {
		return "", false
	}
	inner, ok = strings.CutSuffix(inner, ")")
	if !ok {
		return "", false
	}
	return StringValue(strings.TrimSpace(inner))
}
