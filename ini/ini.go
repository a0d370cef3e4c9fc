// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package ini

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"zombiezen.com/go/log"
)

// maxLineLength lifts bufio.Scanner's default token limit so that any line
// MarshalText produces can be parsed back.
const maxLineLength = int(^uint(0) >> 1)

// ErrNoSection is returned (wrapped in a *SyntaxError) when a property line
// appears before any section header.
var ErrNoSection = errors.New("property outside of any section")

// A SyntaxError describes a line that could not be parsed.
type SyntaxError struct {
	Line int // 1-based
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("parse ini: line %d: %v", e.Line, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// A Store is a collection of sections, each mapping keys to string values.
// The zero value is an empty store. A Store must not be modified while other
// goroutines are reading from it.
type Store struct {
	sections map[string]section
}

type section map[string]string

// Parse parses INI text. See the Syntax section in the package documentation
// for the format recognized by Parse.
func Parse(r io.Reader) (*Store, error) {
	s := bufio.NewScanner(r)
	s.Buffer(nil, maxLineLength)
	st := new(Store)
	var curr section
	lineno := 1
	for ; s.Scan(); lineno++ {
		line := s.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if line[0] == '[' {
			end := strings.LastIndexByte(line, ']')
			if end == -1 {
				return nil, &SyntaxError{Line: lineno, Err: errors.New("missing section closing bracket")}
			}
			name := line[1:end]
			curr = make(section)
			st.init()
			st.sections[name] = curr
			continue
		}
		if curr == nil {
			return nil, &SyntaxError{Line: lineno, Err: ErrNoSection}
		}
		i := strings.IndexByte(line, '=')
		if i == -1 {
			return nil, &SyntaxError{Line: lineno, Err: errors.New("could not find '='")}
		}
		key := strings.TrimSuffix(line[:i], " ")
		curr[key] = strings.TrimPrefix(line[i+1:], " ")
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("parse ini: line %d: %w", lineno, err)
	}
	return st, nil
}

// Load parses the INI file at the given path. A file that cannot be opened is
// an error; use errors.Is(err, fs.ErrNotExist) to detect a missing file.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load ini: %w", err)
	}
	defer f.Close()
	st, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load ini: %s: %w", path, err)
	}
	return st, nil
}

// LoadOptional is like Load, but treats a missing file as an empty store.
func LoadOptional(ctx context.Context, path string) (*Store, error) {
	st, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debugf(ctx, "%s does not exist, using empty configuration", path)
		return new(Store), nil
	}
	return st, err
}

func (st *Store) init() {
	if st.sections == nil {
		st.sections = make(map[string]section)
	}
}

// SectionExists reports whether the named section is present, even if it has
// no keys.
func (st *Store) SectionExists(name string) bool {
	if st == nil {
		return false
	}
	_, ok := st.sections[name]
	return ok
}

// KeyExists reports whether the named section is present and contains key.
func (st *Store) KeyExists(section, key string) bool {
	_, ok := st.Lookup(section, key)
	return ok
}

// Len returns the number of sections in the store.
func (st *Store) Len() int {
	if st == nil {
		return 0
	}
	return len(st.sections)
}

// Sections returns the names of all sections in sorted order.
func (st *Store) Sections() []string {
	if st == nil || len(st.sections) == 0 {
		return nil
	}
	names := make([]string, 0, len(st.sections))
	for name := range st.sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Keys returns the keys in the named section in sorted order. It returns nil
// if the section does not exist.
func (st *Store) Keys(section string) []string {
	if st == nil {
		return nil
	}
	return st.sections[section].keys()
}

func (sect section) keys() []string {
	if len(sect) == 0 {
		return nil
	}
	keys := make([]string, 0, len(sect))
	for k := range sect {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the stored value of a key and whether it exists.
func (st *Store) Lookup(section, key string) (_ string, ok bool) {
	if st == nil {
		return "", false
	}
	v, ok := st.sections[section][key]
	return v, ok
}

// String returns the value of the key, or def if the key does not exist.
func (st *Store) String(section, key, def string) string {
	v, ok := st.Lookup(section, key)
	if !ok {
		return def
	}
	return v
}

// Int returns the value of the key parsed as a base-10 integer. It returns def
// if the key does not exist or its value is not an integer.
func (st *Store) Int(section, key string, def int) int {
	v, ok := st.Lookup(section, key)
	if !ok {
		return def
	}
	return parseInt(v, def)
}

// Float returns the value of the key parsed as a decimal number. It returns
// def if the key does not exist or its value is not a number.
func (st *Store) Float(section, key string, def float64) float64 {
	v, ok := st.Lookup(section, key)
	if !ok {
		return def
	}
	return parseFloat(v, def)
}

// Bool reports whether the value of the key is one of "true", "on", "yes",
// "y", or "1", ignoring case. It returns def only if the key does not exist:
// any other value reads as false.
func (st *Store) Bool(section, key string, def bool) bool {
	v, ok := st.Lookup(section, key)
	if !ok {
		return def
	}
	return isTruthy(v)
}

func parseInt(v string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}

func parseFloat(v string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

var truthy = map[string]struct{}{
	"true": {},
	"on":   {},
	"yes":  {},
	"y":    {},
	"1":    {},
}

func isTruthy(v string) bool {
	_, ok := truthy[strings.ToLower(v)]
	return ok
}

// AddSection creates an empty section if one with the given name does not
// already exist.
func (st *Store) AddSection(name string) {
	st.init()
	if _, ok := st.sections[name]; !ok {
		st.sections[name] = make(section)
	}
}

// SetString sets the key to value, creating the section if necessary.
func (st *Store) SetString(section, key, value string) {
	st.AddSection(section)
	st.sections[section][key] = value
}

// SetInt stores value in decimal.
func (st *Store) SetInt(section, key string, value int) {
	st.SetString(section, key, strconv.Itoa(value))
}

// SetFloat stores value in the shortest form that parses back to the same
// float64.
func (st *Store) SetFloat(section, key string, value float64) {
	st.SetString(section, key, strconv.FormatFloat(value, 'g', -1, 64))
}

// SetBool stores value as "true" or "false".
func (st *Store) SetBool(section, key string, value bool) {
	st.SetString(section, key, strconv.FormatBool(value))
}

// MarshalText serializes the store in INI format. Sections and keys are
// written in sorted order, and each section is followed by a blank line.
// It returns an error if any name or value would not parse back unchanged.
func (st *Store) MarshalText() ([]byte, error) {
	var buf []byte
	for _, name := range st.Sections() {
		if !IsValidSection(name) {
			return nil, fmt.Errorf("marshal ini: invalid section name %q", name)
		}
		buf = append(buf, '[')
		buf = append(buf, name...)
		buf = append(buf, "]\n"...)
		sect := st.sections[name]
		for _, key := range sect.keys() {
			if !IsValidKey(key) {
				return nil, fmt.Errorf("marshal ini: [%s]: invalid key %q", name, key)
			}
			value := sect[key]
			if !IsValidValue(value) {
				return nil, fmt.Errorf("marshal ini: [%s] %s: invalid value %q", name, key, value)
			}
			buf = append(buf, key...)
			buf = append(buf, " = "...)
			buf = append(buf, value...)
			buf = append(buf, '\n')
		}
		buf = append(buf, '\n')
	}
	return buf, nil
}

// UnmarshalText parses the INI data, replacing any sections in st.
func (st *Store) UnmarshalText(data []byte) error {
	parsed, err := Parse(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*st = *parsed
	return nil
}

// WriteTo writes the serialized store to w.
func (st *Store) WriteTo(w io.Writer) (int64, error) {
	data, err := st.MarshalText()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Save writes the store to the file at path. The file is replaced atomically:
// if Save returns an error, the previous contents of path are left intact.
func (st *Store) Save(path string) error {
	data, err := st.MarshalText()
	if err != nil {
		return fmt.Errorf("save ini: %w", err)
	}
	if err := writeFile(path, data); err != nil {
		return fmt.Errorf("save ini: %s: %w", path, err)
	}
	return nil
}

// IsValidSection reports whether a string can be written as a section name
// and parsed back unchanged.
func IsValidSection(name string) bool {
	return !strings.ContainsAny(name, "\r\n")
}

// IsValidKey reports whether a string can be written as a property key and
// parsed back unchanged.
func IsValidKey(key string) bool {
	if strings.HasPrefix(key, "[") {
		// Would be read back as a section header.
		return false
	}
	return !strings.ContainsAny(key, "=\r\n")
}

// IsValidValue reports whether a string can be written as a property value and
// parsed back unchanged.
func IsValidValue(value string) bool {
	return !strings.ContainsAny(value, "\r\n")
}
