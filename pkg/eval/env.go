package eval

import (
	"github.com/junhg0211/lintre/pkg/persistent/hash"
	"github.com/junhg0211/lintre/pkg/persistent/hashmap"
	"golang.org/x/exp/slices"
)

// Env maps names to values. It is immutable: Assoc and Dissoc return new
// environments, so copying an Env takes a snapshot in constant time. The zero
// value is an empty environment.
type Env struct {
	m hashmap.Map[Value]
}

// Index returns the value bound to name, and whether there is one.
func (env Env) Index(name string) (Value, bool) {
	return env.m.Index(name)
}

// HasKey reports whether name is bound.
func (env Env) HasKey(name string) bool {
	return env.m.HasKey(name)
}

// Assoc returns an environment that binds name to v and is otherwise
// identical.
func (env Env) Assoc(name string, v Value) Env {
	return Env{env.m.Assoc(name, v)}
}

// Dissoc returns an environment that does not bind name and is otherwise
// identical.
func (env Env) Dissoc(name string) Env {
	return Env{env.m.Dissoc(name)}
}

// Len returns the number of bindings.
func (env Env) Len() int {
	return env.m.Len()
}

// Names returns all bound names in sorted order.
func (env Env) Names() []string {
	names := env.m.Keys()
	slices.Sort(names)
	return names
}

// Equal reports whether two environments bind the same names to Equal values.
func (env Env) Equal(other Env) bool {
	if env.Len() != other.Len() {
		return false
	}
	for it := env.m.Iterator(); it.HasElem(); it.Next() {
		k, v := it.Elem()
		v2, ok := other.Index(k)
		if !ok || !Equal(v, v2) {
			return false
		}
	}
	return true
}

// Hash returns a hash consistent with Equal. It does not depend on the order
// in which bindings were made.
func (env Env) Hash() uint32 {
	h := uint32(env.Len())
	for it := env.m.Iterator(); it.HasElem(); it.Next() {
		k, v := it.Elem()
		h += hash.DJB(hash.String(k), Hash(v))
	}
	return h
}

// NameOf returns the first name, in sorted order, that is bound to a closure
// that is the same function as v. It returns false when v is not a closure or
// no such name exists.
func (env Env) NameOf(v Value) (string, bool) {
	if _, ok := v.(*Closure); !ok {
		return "", false
	}
	for _, name := range env.Names() {
		bound, _ := env.Index(name)
		if SameFunction(bound, v) {
			return name, true
		}
	}
	return "", false
}
