package schema

import (
	"errors"

	json "github.com/goccy/go-json"
)

// MaxNanos is the largest nanos value of a timestamp object.
const MaxNanos = 999_999_999

// Timestamp descriptors. The object form defaults nanos to 0.
var (
	TimestampObject = Object(
		Required("seconds", Int()),
		Default("nanos", IntRange(0, MaxNanos), int64(0)),
	)
	TimestampSchema = Union(TimestampObject, DateTime())
)

// MetaSchema describes the optional list metadata of an envelope.
var MetaSchema = Object(
	Required("total_count", Int()),
)

/*
====================================
ROLE
====================================
*/

// Role is an access role assigned to console users.
type Role struct {
	ID          int64    `json:"id"`
	RoleName    string   `json:"role_name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// RoleInput is the create/update payload for a role.
type RoleInput struct {
	RoleName    string   `json:"role_name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

var (
	RoleSchema = Object(
		Required("id", Int()),
		Required("role_name", String()),
		Optional("description", String()),
		Default("permissions", Array(String()), []any{}),
	)
	RoleInputSchema = Object(
		Required("role_name", NonEmptyString()),
		Optional("description", String()),
		Default("permissions", Array(String()), []any{}),
	)
)

// RoleRef holds a user's role, which the backend sends either as a bare role
// name or as an embedded role object.
type RoleRef struct {
	Name string
	Role *Role
}

// MarshalJSON writes the embedded object when known, otherwise the bare name.
func (r RoleRef) MarshalJSON() ([]byte, error) {
	if r.Role != nil {
		return json.Marshal(r.Role)
	}
	return json.Marshal(r.Name)
}

// UnmarshalJSON accepts a role name string or a role object.
func (r *RoleRef) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return errors.New("schema: empty role")
	}
	if data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*r = RoleRef{Name: name}
		return nil
	}
	var role Role
	if err := json.Unmarshal(data, &role); err != nil {
		return err
	}
	*r = RoleRef{Name: role.RoleName, Role: &role}
	return nil
}

/*
====================================
USER
====================================
*/

// User is a console operator account.
type User struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name,omitempty"`
	Role      RoleRef    `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt Timestamp  `json:"created_at"`
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
}

// UserInput is the create/update payload for a user.
type UserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	RoleID   int64  `json:"role_id"`
	Password string `json:"password,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
}

var (
	UserSchema = Object(
		Required("id", Int()),
		Required("username", String()),
		Required("email", String()),
		Optional("full_name", String()),
		Required("role", Union(String(), RoleSchema)),
		Required("is_active", Bool()),
		Required("created_at", TimestampSchema),
		Optional("updated_at", TimestampSchema),
	)
	UserInputSchema = Object(
		Required("username", NonEmptyString()),
		Required("email", NonEmptyString()),
		Optional("full_name", String()),
		Required("role_id", Int()),
		Optional("password", String()),
		Default("is_active", Bool(), true),
	)
)

/*
====================================
SUPPLIER
====================================
*/

// Supplier is a vendor managed from the console.
type Supplier struct {
	ID            int64     `json:"id"`
	SupplierCode  string    `json:"supplier_code"`
	SupplierName  string    `json:"supplier_name"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     Timestamp `json:"created_at"`
	UpdatedAt     Timestamp `json:"updated_at"`
}

// SupplierInput is the create/update payload for a supplier.
type SupplierInput struct {
	SupplierCode  string `json:"supplier_code"`
	SupplierName  string `json:"supplier_name"`
	ContactPerson string `json:"contact_person,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Address       string `json:"address,omitempty"`
	IsActive      *bool  `json:"is_active,omitempty"`
}

var (
	SupplierSchema = Object(
		Required("id", Int()),
		Required("supplier_code", String()),
		Required("supplier_name", String()),
		Optional("contact_person", String()),
		Optional("phone", String()),
		Optional("email", String()),
		Optional("address", String()),
		Required("is_active", Bool()),
		Required("created_at", TimestampSchema),
		Required("updated_at", TimestampSchema),
	)
	SupplierInputSchema = Object(
		Required("supplier_code", NonEmptyString()),
		Required("supplier_name", NonEmptyString()),
		Optional("contact_person", String()),
		Optional("phone", String()),
		Optional("email", String()),
		Optional("address", String()),
		Default("is_active", Bool(), true),
	)
)

/*
====================================
AUTH
====================================
*/

// LoginRequest is the sign-in payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginData is the data of a successful sign-in envelope. ExpiresAt is epoch
// milliseconds and ExpiresIn is seconds; either may be absent.
type LoginData struct {
	Token     string `json:"token"`
	User      User   `json:"user"`
	ExpiresIn *int64 `json:"expires_in,omitempty"`
	ExpiresAt *int64 `json:"expires_at,omitempty"`
}

var (
	LoginRequestSchema = Object(
		Required("username", NonEmptyString()),
		Required("password", NonEmptyString()),
	)
	LoginDataSchema = Object(
		Required("token", NonEmptyString()),
		Required("user", UserSchema),
		Optional("expires_in", Int()),
		Optional("expires_at", Int()),
	)
)

// SessionEntrySchema describes the durable session entry kept in device storage.
var SessionEntrySchema = Object(
	Required("token", NonEmptyString()),
	Required("user", UserSchema),
	Required("expiresAt", Int()),
)
