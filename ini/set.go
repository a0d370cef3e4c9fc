// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package ini

import (
	"context"
	"fmt"
	"sort"

	"zombiezen.com/go/log"
)

// Layers is a list of stores to obtain configuration from in descending order
// of precedence. Nil elements behave like empty stores.
type Layers []*Store

// LoadLayers loads the files at the given paths and returns them as Layers.
// If the returned error is nil, the returned layers' length will be the same
// as the number of arguments. LoadLayers will stop on the first error, but
// ignores missing files, instead filling the corresponding element with an
// empty *Store.
func LoadLayers(ctx context.Context, paths ...string) (Layers, error) {
	layers := make(Layers, 0, len(paths))
	for _, p := range paths {
		st, err := LoadOptional(ctx, p)
		if err != nil {
			return layers, fmt.Errorf("load ini layers: %w", err)
		}
		if st.Len() == 0 {
			log.Debugf(ctx, "Configuration layer %s is empty", p)
		}
		layers = append(layers, st)
	}
	return layers, nil
}

// Lookup returns the value of the key from the first layer that has it.
func (layers Layers) Lookup(section, key string) (_ string, ok bool) {
	for _, st := range layers {
		if v, ok := st.Lookup(section, key); ok {
			return v, true
		}
	}
	return "", false
}

// SectionExists reports whether any layer has the named section.
func (layers Layers) SectionExists(name string) bool {
	for _, st := range layers {
		if st.SectionExists(name) {
			return true
		}
	}
	return false
}

// KeyExists reports whether any layer has the key.
func (layers Layers) KeyExists(section, key string) bool {
	_, ok := layers.Lookup(section, key)
	return ok
}

// Sections returns the sorted union of section names across all layers.
func (layers Layers) Sections() []string {
	merged := make(map[string]struct{})
	for _, st := range layers {
		for _, name := range st.Sections() {
			merged[name] = struct{}{}
		}
	}
	return sortedSet(merged)
}

// Keys returns the sorted union of keys in the named section across all
// layers.
func (layers Layers) Keys(section string) []string {
	merged := make(map[string]struct{})
	for _, st := range layers {
		for _, k := range st.Keys(section) {
			merged[k] = struct{}{}
		}
	}
	return sortedSet(merged)
}

func sortedSet(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	list := make([]string, 0, len(set))
	for s := range set {
		list = append(list, s)
	}
	sort.Strings(list)
	return list
}

// String returns the value of the key from the first layer that has it, or
// def if no layer does.
func (layers Layers) String(section, key, def string) string {
	v, ok := layers.Lookup(section, key)
	if !ok {
		return def
	}
	return v
}

// Int is like Store.Int. A value that does not parse in the highest layer that
// has the key returns def; lower layers are not consulted.
func (layers Layers) Int(section, key string, def int) int {
	v, ok := layers.Lookup(section, key)
	if !ok {
		return def
	}
	return parseInt(v, def)
}

// Float is like Store.Float, with the same precedence rules as Int.
func (layers Layers) Float(section, key string, def float64) float64 {
	v, ok := layers.Lookup(section, key)
	if !ok {
		return def
	}
	return parseFloat(v, def)
}

// Bool is like Store.Bool.
func (layers Layers) Bool(section, key string, def bool) bool {
	v, ok := layers.Lookup(section, key)
	if !ok {
		return def
	}
	return isTruthy(v)
}
