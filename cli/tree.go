package cli

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/alecthomas/kong"
	apperrors "github.com/goliatone/go-errors"
)

const (
	ErrCodePathEmpty    = "CLI_PATH_EMPTY"
	ErrCodePathConflict = "CLI_PATH_CONFLICT"
	ErrCodeBadHandler   = "CLI_BAD_HANDLER"
)

type node struct {
	name     string
	help     string
	group    string
	aliases  []string
	hidden   bool
	handler  any
	children map[string]*node
}

func newNode(name string) *node {
	return &node{
		name:     name,
		children: make(map[string]*node),
	}
}

func (n *node) insert(opts Config, handler any) error {
	path := normalizePath(opts.Path)
	if len(path) == 0 {
		return apperrors.New("cli path cannot be empty", apperrors.CategoryBadInput).
			WithTextCode(ErrCodePathEmpty)
	}
	if handler == nil || reflect.TypeOf(handler).Kind() != reflect.Pointer ||
		reflect.TypeOf(handler).Elem().Kind() != reflect.Struct {
		return apperrors.New("cli handler must be a pointer to a struct", apperrors.CategoryBadInput).
			WithTextCode(ErrCodeBadHandler).
			WithMetadata(map[string]any{"path": strings.Join(path, " ")})
	}

	curr := n
	for idx, segment := range path {
		child, ok := curr.children[segment]
		if !ok {
			child = newNode(segment)
			curr.children[segment] = child
		}

		if idx == len(path)-1 {
			if child.handler != nil || len(child.children) > 0 {
				return apperrors.New("cli command already registered for path", apperrors.CategoryConflict).
					WithTextCode(ErrCodePathConflict).
					WithMetadata(map[string]any{"path": strings.Join(path, " ")})
			}
			child.handler = handler
			child.help = opts.Description
			child.aliases = opts.Aliases
			child.hidden = opts.Hidden
			child.group = opts.Group
			return nil
		}

		if child.handler != nil {
			return apperrors.New("cli command cannot have subcommands", apperrors.CategoryConflict).
				WithTextCode(ErrCodePathConflict).
				WithMetadata(map[string]any{"path": strings.Join(path[:idx+1], " ")})
		}
		if desc := opts.groupDescription(segment); desc != "" && child.help == "" {
			child.help = desc
		}
		curr = child
	}
	return nil
}

func normalizePath(path []string) []string {
	out := make([]string, 0, len(path))
	for _, segment := range path {
		if segment = strings.TrimSpace(segment); segment != "" {
			out = append(out, segment)
		}
	}
	return out
}

// model builds a struct type kong can embed, one command field per child.
func (n *node) model() (any, error) {
	if len(n.children) == 0 {
		return nil, nil
	}
	val, err := structFor(n)
	if err != nil {
		return nil, err
	}
	return val.Addr().Interface(), nil
}

func structFor(n *node) (reflect.Value, error) {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]reflect.StructField, 0, len(names))
	values := make([]reflect.Value, 0, len(names))
	used := make(map[string]struct{})

	for _, name := range names {
		child := n.children[name]

		fieldName := exportFieldName(name)
		if _, exists := used[fieldName]; exists {
			return reflect.Value{}, fmt.Errorf("duplicate CLI command field name after normalization: %s", fieldName)
		}
		used[fieldName] = struct{}{}

		var value reflect.Value
		if len(child.children) == 0 {
			// kong drives the struct copy; pointer fields inside it still
			// reach the registered dependencies.
			value = reflect.ValueOf(child.handler).Elem()
		} else {
			v, err := structFor(child)
			if err != nil {
				return reflect.Value{}, err
			}
			value = v
		}

		fields = append(fields, reflect.StructField{
			Name: fieldName,
			Type: value.Type(),
			Tag:  structTag(child),
		})
		values = append(values, value)
	}

	out := reflect.New(reflect.StructOf(fields)).Elem()
	for idx, val := range values {
		out.Field(idx).Set(val)
	}
	return out, nil
}

func structTag(n *node) reflect.StructTag {
	tags := []string{
		fmt.Sprintf(`name:"%s"`, escapeTag(n.name)),
		`cmd:""`,
	}
	if n.help != "" {
		tags = append(tags, fmt.Sprintf(`help:"%s"`, escapeTag(n.help)))
	}
	if n.group != "" {
		tags = append(tags, fmt.Sprintf(`group:"%s"`, escapeTag(n.group)))
	}
	if len(n.aliases) > 0 {
		tags = append(tags, fmt.Sprintf(`aliases:"%s"`, escapeTag(strings.Join(n.aliases, ","))))
	}
	if n.hidden {
		tags = append(tags, `hidden:""`)
	}
	return reflect.StructTag(strings.Join(tags, " "))
}

func exportFieldName(name string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	out := b.String()
	if out == "" || !unicode.IsLetter([]rune(out)[0]) {
		out = "Cmd" + out
	}
	return out
}

func escapeTag(val string) string {
	val = strings.ReplaceAll(val, `\`, `\\`)
	val = strings.ReplaceAll(val, `"`, `\"`)
	return val
}

func kongOptions(root *node) ([]kong.Option, error) {
	model, err := root.model()
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, nil
	}
	return []kong.Option{kong.Embed(model)}, nil
}
