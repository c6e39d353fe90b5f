package core

import (
	"fmt"
	"strings"
	"sync"
)

// GenericKey is the key of the fallback schema that is always registered.
const GenericKey = "generic"

var (
	registry      = make(map[string]BrokerSchema)
	registryOrder []string
	registryMu    sync.RWMutex
)

// Register adds a broker schema to the catalog.
// Panics if a schema with the same key is already registered or the key is empty.
// Registration order is the detector's tie-break order.
func Register(schema BrokerSchema) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if schema.Key == "" {
		panic("broker schema key is empty")
	}
	if _, exists := registry[schema.Key]; exists {
		panic(fmt.Sprintf("broker schema already registered: %s", schema.Key))
	}
	if schema.Name == "" {
		schema.Name = schema.Key
	}

	registry[schema.Key] = schema
	registryOrder = append(registryOrder, schema.Key)
}

// Get returns a copy of a broker schema by key. Keys are matched
// case-insensitively. Returns false if not found.
func Get(key string) (BrokerSchema, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if s, ok := registry[key]; ok {
		return s.Merge(nil), true
	}
	for _, k := range registryOrder {
		if strings.EqualFold(k, key) {
			return registry[k].Merge(nil), true
		}
	}
	return BrokerSchema{}, false
}

// All returns all registered schemas in registration order.
func All() []BrokerSchema {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]BrokerSchema, 0, len(registryOrder))
	for _, k := range registryOrder {
		result = append(result, registry[k].Merge(nil))
	}
	return result
}

// Keys returns all registered schema keys in registration order.
func Keys() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	keys := make([]string, len(registryOrder))
	copy(keys, registryOrder)
	return keys
}

// SchemaCount returns the number of registered schemas.
func SchemaCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registryOrder)
}

// Generic returns the fallback schema.
func Generic() BrokerSchema {
	s, _ := Get(GenericKey)
	return s
}

// unregister removes a schema. Test helper; the generic schema cannot be removed.
func unregister(key string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if key == GenericKey {
		return
	}
	delete(registry, key)
	for i, k := range registryOrder {
		if k == key {
			registryOrder = append(registryOrder[:i:i], registryOrder[i+1:]...)
			break
		}
	}
}
