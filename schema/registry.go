package schema

import "sort"

// Envelope derives the response wrapper {success, message, data, meta?} for data.
func Envelope(data Descriptor) *ObjectDescriptor {
	return Object(
		Required("success", Bool()),
		Required("message", String()),
		Required("data", data),
		Optional("meta", MetaSchema),
	)
}

// ListEnvelope derives the wrapper for a list of item, optionally carrying meta.total_count.
func ListEnvelope(item Descriptor) *ObjectDescriptor {
	return Envelope(Array(item))
}

// Registry names for every wire entity.
const (
	NameTimestamp     = "timestamp"
	NameMeta          = "meta"
	NameRole          = "role"
	NameRoleInput     = "role.input"
	NameUser          = "user"
	NameUserInput     = "user.input"
	NameSupplier      = "supplier"
	NameSupplierInput = "supplier.input"
	NameLoginRequest  = "login.request"
	NameLoginData     = "login.data"
	NameSessionEntry  = "session"
)

var registry = map[string]Descriptor{
	NameTimestamp:     TimestampSchema,
	NameMeta:          MetaSchema,
	NameRole:          RoleSchema,
	NameRoleInput:     RoleInputSchema,
	NameUser:          UserSchema,
	NameUserInput:     UserInputSchema,
	NameSupplier:      SupplierSchema,
	NameSupplierInput: SupplierInputSchema,
	NameLoginRequest:  LoginRequestSchema,
	NameLoginData:     LoginDataSchema,
	NameSessionEntry:  SessionEntrySchema,
}

// Lookup returns the descriptor registered under name.
func Lookup(name string) (Descriptor, bool) {
	d, ok := registry[name]
	return d, ok
}

// EnvelopeOf returns the single-item envelope for a registered entity.
func EnvelopeOf(name string) (*ObjectDescriptor, bool) {
	d, ok := registry[name]
	if !ok {
		return nil, false
	}
	return Envelope(d), true
}

// ListEnvelopeOf returns the list envelope for a registered entity.
func ListEnvelopeOf(name string) (*ObjectDescriptor, bool) {
	d, ok := registry[name]
	if !ok {
		return nil, false
	}
	return ListEnvelope(d), true
}

// Names lists registered entity names in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
