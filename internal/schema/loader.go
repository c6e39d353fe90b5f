// Package schema loads broker schemas from TOML files.
//
// A schema file lets operators support a new broker export without a rebuild.
// Transforms and validators are referenced by name and must already be
// registered with the core package:
//
//	[[broker]]
//	key = "fidelity"
//	name = "Fidelity"
//	extends = "generic"
//
//	[broker.fields]
//	symbol = ["Underlying Symbol", "Symbol"]
//	type = ["Call/Put"]
//	expiry = ["Expiration Date"]
//
//	[broker.transforms]
//	type = "option_letter"
package schema

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/JonMunkholm/posimport/internal/core"
)

// File is the decoded form of a schema file.
type File struct {
	Brokers []Broker `toml:"broker"`
}

// Broker is one schema entry of a File.
type Broker struct {
	Key        string              `toml:"key"`
	Name       string              `toml:"name"`
	Extends    string              `toml:"extends"`
	Fields     map[string][]string `toml:"fields"`
	Transforms map[string]string   `toml:"transforms"`
	Validators map[string]string   `toml:"validators"`
}

// Parse decodes schema definitions from TOML text and validates them.
func Parse(text string) ([]core.BrokerSchema, error) {
	var f File
	md, err := toml.Decode(text, &f)
	if err != nil {
		return nil, fmt.Errorf("parse schema file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse schema file: unknown keys %v", undecoded)
	}
	return f.Schemas()
}

// LoadFile reads and validates the schemas defined in a TOML file.
func LoadFile(path string) ([]core.BrokerSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}

	schemas, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	slog.Info("schema file loaded", "path", path, "schemas", len(schemas))
	return schemas, nil
}

// RegisterFiles loads every file and registers its schemas in file order.
// It stops at the first file that fails to load; schemas already registered
// stay registered.
func RegisterFiles(paths ...string) (int, error) {
	n := 0
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}

		schemas, err := LoadFile(path)
		if err != nil {
			return n, err
		}
		for _, s := range schemas {
			if _, exists := core.Get(s.Key); exists {
				return n, fmt.Errorf("%s: broker schema already registered: %s", path, s.Key)
			}
			core.Register(s)
			n++
		}
	}
	return n, nil
}

// Schemas converts the file's entries into core schemas.
func (f File) Schemas() ([]core.BrokerSchema, error) {
	var (
		out  []core.BrokerSchema
		errs []error
		seen = make(map[string]bool)
	)

	for i, b := range f.Brokers {
		s, err := b.Schema()
		if err != nil {
			errs = append(errs, fmt.Errorf("broker[%d]: %w", i, err))
			continue
		}
		if seen[s.Key] {
			errs = append(errs, fmt.Errorf("broker[%d]: duplicate key %q", i, s.Key))
			continue
		}
		seen[s.Key] = true
		out = append(out, s)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// Schema converts one entry into a core schema, resolving Extends against the
// registry.
func (b Broker) Schema() (core.BrokerSchema, error) {
	var errs []error

	key := strings.TrimSpace(b.Key)
	if key == "" {
		return core.BrokerSchema{}, errors.New("key is required")
	}

	override := core.BrokerSchema{
		Key:        key,
		Name:       strings.TrimSpace(b.Name),
		FieldMap:   make(map[core.Field][]string, len(b.Fields)),
		Transforms: make(map[core.Field]string, len(b.Transforms)),
		Validators: make(map[core.Field]string, len(b.Validators)),
	}

	for name, cols := range b.Fields {
		f, err := parseField(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(cols) == 0 {
			errs = append(errs, fmt.Errorf("field %s: no candidate columns", name))
			continue
		}
		override.FieldMap[f] = cols
	}

	for name, transform := range b.Transforms {
		f, err := parseField(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, ok := core.LookupTransform(transform); !ok {
			errs = append(errs, fmt.Errorf("field %s: unknown transform %q", name, transform))
			continue
		}
		override.Transforms[f] = transform
	}

	for name, validator := range b.Validators {
		f, err := parseField(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, ok := core.LookupValidator(validator); !ok {
			errs = append(errs, fmt.Errorf("field %s: unknown validator %q", name, validator))
			continue
		}
		override.Validators[f] = validator
	}

	if len(errs) > 0 {
		return core.BrokerSchema{}, fmt.Errorf("%s: %w", key, errors.Join(errs...))
	}

	schema := core.BrokerSchema{Key: key}.Merge(&override)
	if b.Extends != "" {
		base, ok := core.Get(b.Extends)
		if !ok {
			return core.BrokerSchema{}, fmt.Errorf("%s: extends %w %q", key, core.ErrUnknownBroker, b.Extends)
		}
		schema = base.Merge(&override)
		schema.Key = key
		if override.Name == "" {
			schema.Name = key
		}
	}

	if missing := MissingRequired(schema); len(missing) > 0 {
		slog.Warn("schema does not map every required field; rows will be rejected",
			"schema", key,
			"missing", missing,
		)
	}

	return schema, nil
}

// MissingRequired lists the required fields a schema does not map.
func MissingRequired(s core.BrokerSchema) []core.Field {
	var missing []core.Field
	for _, f := range core.RequiredFields {
		if len(s.FieldMap[f]) == 0 {
			missing = append(missing, f)
		}
	}
	return missing
}

func parseField(name string) (core.Field, error) {
	for _, f := range core.CanonicalFields {
		if strings.EqualFold(string(f), name) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field %q", name)
}
