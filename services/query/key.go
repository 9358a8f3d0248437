package query

import "strings"

const keyPrefix = "query"

// Key addresses one cached view: an entity name plus an optional scope such
// as a location or an owner id.
type Key struct {
	Entity string
	Scope  string
}

// NewKey builds a key for entity, optionally scoped.
func NewKey(entity string, scope ...string) Key {
	return Key{Entity: entity, Scope: strings.Join(scope, ":")}
}

// String renders query:<entity>[:<scope>].
func (k Key) String() string {
	if k.Scope == "" {
		return EntityPrefix(k.Entity)
	}
	return EntityPrefix(k.Entity) + ":" + k.Scope
}

// EntityPrefix is the cache key shared by every view of entity.
func EntityPrefix(entity string) string {
	return keyPrefix + ":" + entity
}
