package schema

import "strings"

// Standard OpenAPI keywords understood by the resolver.
const (
	Type        = "type"
	Format      = "format"
	Nullable    = "nullable"
	MaxLength   = "maxLength"
	Default     = "default"
	ReadOnly    = "readOnly"
	WriteOnly   = "writeOnly"
	Description = "description"
	Properties  = "properties"
	Items       = "items"
	Required    = "required"
	Ref         = "$ref"
	AllOf       = "allOf"
)

// Extension keywords in their canonical (short prefix) form.
const (
	Tablename         = "x-tablename"
	Inherits          = "x-inherits"
	PrimaryKey        = "x-primary-key"
	Autoincrement     = "x-autoincrement"
	Index             = "x-index"
	Unique            = "x-unique"
	ForeignKey        = "x-foreign-key"
	ForeignKeyColumn  = "x-foreign-key-column"
	ForeignKeyKwargs  = "x-foreign-key-kwargs"
	Kwargs            = "x-kwargs"
	Backref           = "x-backref"
	Backrefs          = "x-backrefs"
	Secondary         = "x-secondary"
	Uselist           = "x-uselist"
	JSON              = "x-json"
	CompositeIndex    = "x-composite-index"
	CompositeUnique   = "x-composite-unique"
	Mixins            = "x-mixins"
	ServerDefault     = "x-server-default"
	DictIgnore        = "x-dict-ignore"
	DeRef             = "x-de-$ref"
	ExtensionPrefix   = "x-"
	NamespacedPrefix  = "x-oaorm-"
	LegacyPrefix      = "x-open-alchemy-"
	ComponentsPointer = "#/components/schemas/"
)

// Extension keyword prefixes, in the order they are checked.
var prefixes = []string{ExtensionPrefix, NamespacedPrefix, LegacyPrefix}

var extensions = []string{
	Tablename, Inherits, PrimaryKey, Autoincrement, Index, Unique,
	ForeignKey, ForeignKeyColumn, ForeignKeyKwargs, Kwargs, Backref,
	Backrefs, Secondary, Uselist, JSON, CompositeIndex, CompositeUnique,
	Mixins, ServerDefault, DictIgnore, DeRef,
}

// aliases maps each canonical extension keyword to every spelling it is
// accepted under.
var aliases = func() map[string][]string {
	m := make(map[string][]string, len(extensions))
	for _, key := range extensions {
		suffix := strings.TrimPrefix(key, ExtensionPrefix)
		spellings := make([]string, 0, len(prefixes))
		for _, p := range prefixes {
			spellings = append(spellings, p+suffix)
		}
		m[key] = spellings
	}
	return m
}()

// Aliases returns the spellings of key to look up, in priority order.
// Standard keywords and unknown keys have a single spelling.
func Aliases(key string) []string {
	if spellings, ok := aliases[key]; ok {
		return spellings
	}
	return []string{key}
}

// IsExtension reports whether key is a recognized extension keyword.
func IsExtension(key string) bool {
	_, ok := aliases[key]
	return ok
}

// Lookup returns the first non nil value stored under a spelling of key.
func Lookup(sch Schema, key string) (any, bool) {
	for _, k := range Aliases(key) {
		if v, ok := sch[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}
