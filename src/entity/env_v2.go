package entity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/clok/kemba"
	"gopkg.in/yaml.v2"
)

var envKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CheckEnvKey rejects names the remote shell would not take as a plain
// variable name.
func CheckEnvKey(key string) error {
	if !envKeyPattern.MatchString(key) {
		return ErrConfig{Reason: fmt.Sprintf("bad env key %q", key)}
	}
	return nil
}

// EnvVar represents an environment variable
type EnvVar struct {
	Key   string
	Value string
}

func (e EnvVar) String() string {
	return e.Key + `=` + e.Value
}

// AsExport returns the environment variable as a shell export statement
func (e EnvVar) AsExport() string {
	return `export ` + e.Key + `=` + ShellQuote(e.Value)
}

// EnvList is a list of environment variables that maps to a YAML map,
// but maintains order, enabling late variables to reference early variables.
type EnvList struct {
	keys  []string
	store map[string]string
}

func (e EnvList) Get(key string) string {
	return e.store[key]
}

func (e EnvList) Has(key string) bool {
	_, ok := e.store[key]
	return ok
}

// Keys returns keys in insertion order.
func (e EnvList) Keys() []string {
	keys := make([]string, len(e.keys))
	copy(keys, e.keys)
	return keys
}

func (e EnvList) Len() int {
	return len(e.keys)
}

func (e EnvList) Slice() []string {
	envs := make([]string, 0, len(e.keys))
	for _, key := range e.keys {
		envs = append(envs, EnvVar{Key: key, Value: e.store[key]}.String())
	}
	return envs
}

// Set key to be equal value in this list.
func (e *EnvList) Set(key, value string) {
	l := kemba.New("env::set").Printf

	if e.store == nil {
		l("underlying map is nil, creating new map")
		e.store = make(map[string]string)
	}

	if _, ok := e.store[key]; !ok {
		e.keys = append(e.keys, key)
	}
	l("setting %v = %v", key, value)
	e.store[key] = value
}

// Merge copies every entry of other into e, other wins on conflicts.
func (e *EnvList) Merge(other EnvList) {
	for _, key := range other.keys {
		e.Set(key, other.store[key])
	}
}

// Clone returns an independent copy.
func (e EnvList) Clone() EnvList {
	var out EnvList
	out.Merge(e)
	return out
}

// AsExport renders the list as `export FOO=bar && export BAR='b z'`, so
// it chains into a line without breaking its `&&` sequence.
func (e EnvList) AsExport() string {
	exports := make([]string, 0, len(e.keys))
	for _, key := range e.keys {
		exports = append(exports, EnvVar{Key: key, Value: e.store[key]}.AsExport())
	}
	return strings.Join(exports, " && ")
}

func (e *EnvList) UnmarshalYAML(unmarshal func(interface{}) error) error {
	items := []yaml.MapItem{}

	err := unmarshal(&items)
	if err != nil {
		return err
	}

	*e = EnvList{}
	for _, v := range items {
		key := fmt.Sprintf("%v", v.Key)
		if err := CheckEnvKey(key); err != nil {
			return err
		}
		e.Set(key, fmt.Sprintf("%v", v.Value))
	}

	return nil
}

func (e EnvList) MarshalYAML() (interface{}, error) {
	items := make(yaml.MapSlice, 0, len(e.keys))
	for _, key := range e.keys {
		items = append(items, yaml.MapItem{Key: key, Value: e.store[key]})
	}
	return items, nil
}
