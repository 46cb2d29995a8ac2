// Package registry keeps the parsed table of every model type the program
// touches, so struct tags are read once per type.
package registry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/marshallshelly/cultivar/pkg/schema"
)

// Registry maps model types to their tables. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	parser *schema.Parser
	byType map[reflect.Type]*schema.TableMetadata
	byName map[string]*schema.TableMetadata
	order  []string // table names, first registration first
}

func New() *Registry {
	return &Registry{
		parser: schema.NewParser(),
		byType: make(map[reflect.Type]*schema.TableMetadata),
		byName: make(map[string]*schema.TableMetadata),
	}
}

func structType(model any) (reflect.Type, error) {
	t := reflect.TypeOf(model)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %T", model)
	}
	return t, nil
}

// Lookup returns the table for model's type, parsing it on first use.
func (r *Registry) Lookup(model any) (*schema.TableMetadata, error) {
	t, err := structType(model)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	table := r.byType[t]
	r.mu.RUnlock()
	if table != nil {
		return table, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if table := r.byType[t]; table != nil {
		return table, nil
	}
	table, err = r.parser.Parse(t)
	if err != nil {
		return nil, fmt.Errorf("failed to parse model %s: %w", t.Name(), err)
	}
	if _, dup := r.byName[table.Name]; !dup {
		r.order = append(r.order, table.Name)
	}
	r.byType[t] = table
	r.byName[table.Name] = table
	return table, nil
}

// Table returns a registered table by name.
func (r *Registry) Table(name string) (*schema.TableMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	table, ok := r.byName[name]
	return table, ok
}

// Ordered lists the registered tables so that every table follows the
// tables its foreign keys point at. Unrelated tables keep registration order.
func (r *Registry) Ordered() ([]*schema.TableMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	placed := make(map[string]bool, len(r.order))
	onPath := make(map[string]bool)
	out := make([]*schema.TableMetadata, 0, len(r.order))

	var place func(name string) error
	place = func(name string) error {
		if placed[name] {
			return nil
		}
		if onPath[name] {
			return fmt.Errorf("foreign key cycle through table %s", name)
		}
		onPath[name] = true
		table := r.byName[name]
		for _, ref := range table.References() {
			if _, known := r.byName[ref]; known && ref != name {
				if err := place(ref); err != nil {
					return err
				}
			}
		}
		delete(onPath, name)
		placed[name] = true
		out = append(out, table)
		return nil
	}

	for _, name := range r.order {
		if err := place(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

var global = New()

// Register parses model into the process-wide registry.
func Register(model any) error {
	_, err := global.Lookup(model)
	return err
}

// Lookup is Registry.Lookup on the process-wide registry.
func Lookup(model any) (*schema.TableMetadata, error) {
	return global.Lookup(model)
}

// Ordered is Registry.Ordered on the process-wide registry.
func Ordered() ([]*schema.TableMetadata, error) {
	return global.Ordered()
}
