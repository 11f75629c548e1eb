package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to every env tag.
const EnvPrefix = "FFMCAST_"

// ErrInvalidValue is wrapped by errors for config or env values that do not
// fit the field they target.
var ErrInvalidValue = errors.New("invalid config value")

// LoadConfig fills opts (a pointer to struct) with precedence
// CLI flags > FFMCAST_* env vars > TOML file > existing field values.
// Fields whose flag was set on cmd are left alone. cmd may be nil.
//
// The TOML path comes from a string field named Config. A missing file is
// not an error.
func LoadConfig(opts any, cmd *cobra.Command) error {
	v := reflect.ValueOf(opts)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config: expected pointer to struct, got %T", opts)
	}
	v = v.Elem()

	changed := changedFlags(cmd)
	settable := func(f reflect.StructField) bool {
		return !changed[fieldNameToFlag(f.Name)]
	}

	tree, err := readTOML(configPath(v))
	if err != nil {
		return err
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !settable(sf) {
			continue
		}
		if key := sf.Tag.Get("toml"); key != "" && tree != nil {
			if raw := lookup(tree, key); raw != nil {
				if err := assign(v.Field(i), raw); err != nil {
					return fmt.Errorf("config %s: %w", key, err)
				}
			}
		}
		if key := sf.Tag.Get("env"); key != "" {
			if raw, ok := os.LookupEnv(EnvPrefix + key); ok && raw != "" {
				if err := assignString(v.Field(i), raw); err != nil {
					return fmt.Errorf("env %s%s: %w", EnvPrefix, key, err)
				}
			}
		}
	}

	return nil
}

// RegisterFlags adds one flag per exported field of opts to fs. The flag
// name is the kebab-cased field name, its default the field's current value
// and its usage the help tag. A short tag adds a one-letter shorthand.
func RegisterFlags(fs *pflag.FlagSet, opts any) {
	v := reflect.ValueOf(opts).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Tag.Get("flag") == "-" {
			continue
		}
		name := fieldNameToFlag(sf.Name)
		short := sf.Tag.Get("short")
		help := sf.Tag.Get("help")

		switch p := v.Field(i).Addr().Interface().(type) {
		case *string:
			fs.StringVarP(p, name, short, *p, help)
		case *bool:
			fs.BoolVarP(p, name, short, *p, help)
		case *int:
			fs.IntVarP(p, name, short, *p, help)
		}
	}
}

func changedFlags(cmd *cobra.Command) map[string]bool {
	changed := make(map[string]bool)
	if cmd == nil {
		return changed
	}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		changed[f.Name] = true
	})
	return changed
}

func configPath(v reflect.Value) string {
	f := v.FieldByName("Config")
	if !f.IsValid() || f.Kind() != reflect.String {
		return ""
	}
	return f.String()
}

func readTOML(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}
	return tree, nil
}

// fieldNameToFlag converts a struct field name to a CLI flag name.
// Example: "IcecastHost" -> "icecast-host", "Yes" -> "yes".
func fieldNameToFlag(fieldName string) string {
	var b strings.Builder
	for i, r := range fieldName {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('-')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// lookup resolves a dotted key such as "icecast.host" in a decoded TOML tree.
func lookup(tree map[string]any, key string) any {
	parts := strings.Split(key, ".")
	for _, part := range parts[:len(parts)-1] {
		next, ok := tree[part].(map[string]any)
		if !ok {
			return nil
		}
		tree = next
	}
	return tree[parts[len(parts)-1]]
}

func assign(field reflect.Value, raw any) error {
	switch field.Kind() {
	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("%w: want string, got %T", ErrInvalidValue, raw)
		}
		field.SetString(s)
	case reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("%w: want bool, got %T", ErrInvalidValue, raw)
		}
		field.SetBool(b)
	case reflect.Int:
		n, ok := raw.(int64)
		if !ok {
			return fmt.Errorf("%w: want integer, got %T", ErrInvalidValue, raw)
		}
		field.SetInt(n)
	default:
		return fmt.Errorf("%w: unsupported field kind %s", ErrInvalidValue, field.Kind())
	}
	return nil
}

func assignString(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %q is not a bool", ErrInvalidValue, raw)
		}
		field.SetBool(b)
	case reflect.Int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, raw)
		}
		field.SetInt(int64(n))
	default:
		return fmt.Errorf("%w: unsupported field kind %s", ErrInvalidValue, field.Kind())
	}
	return nil
}
