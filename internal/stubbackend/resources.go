package stubbackend

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MrEthical07/goSession/schema"
)

/* ==== SEEDING ==== */

// AddRole creates a role.
func (s *Server) AddRole(in schema.RoleInput) (schema.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveRole(0, in)
}

// AddUser creates a user that can sign in with password.
func (s *Server) AddUser(in schema.UserInput) (schema.User, error) {
	hash, err := s.hashIfSet(in.Password)
	if err != nil {
		return schema.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveUser(0, in, hash)
}

// AddSupplier creates a supplier.
func (s *Server) AddSupplier(in schema.SupplierInput) (schema.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveSupplier(0, in)
}

// SeedDemo loads an admin role, an "admin" user with password
// "admin-password" and a handful of suppliers.
func (s *Server) SeedDemo() error {
	role, err := s.AddRole(schema.RoleInput{
		RoleName:    "admin",
		Description: "Full access",
		Permissions: []string{"suppliers.read", "suppliers.write", "users.read", "users.write"},
	})
	if err != nil {
		return err
	}
	if _, err := s.AddUser(schema.UserInput{
		Username: "admin",
		Email:    "admin@example.com",
		FullName: "Console Admin",
		RoleID:   role.ID,
		Password: "admin-password",
	}); err != nil {
		return err
	}
	for i, name := range []string{"Acme Components", "Northwind Traders", "Globex Supply", "Initech Parts"} {
		if _, err := s.AddSupplier(schema.SupplierInput{
			SupplierCode: fmt.Sprintf("SUP-%03d", i+1),
			SupplierName: name,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) hashIfSet(password string) (string, error) {
	if password == "" {
		return "", nil
	}
	return hashPassword(s.cfg.Hash, password)
}

/* ==== SUPPLIERS ==== */

func (s *Server) saveSupplier(id int64, in schema.SupplierInput) (schema.Supplier, error) {
	code := strings.TrimSpace(in.SupplierCode)
	name := strings.TrimSpace(in.SupplierName)
	if code == "" || name == "" {
		return schema.Supplier{}, fmt.Errorf("%w: supplier_code and supplier_name are required", errBadInput)
	}
	for _, other := range s.suppliers.filter(nil) {
		if other.ID != id && strings.EqualFold(other.SupplierCode, code) {
			return schema.Supplier{}, fmt.Errorf("supplier code %s %w", code, errConflict)
		}
	}

	now := schema.TimestampOf(s.cfg.Now())
	sup := schema.Supplier{CreatedAt: now}
	if id == 0 {
		id = s.suppliers.allocate()
	} else {
		prev, ok := s.suppliers.get(id)
		if !ok {
			return schema.Supplier{}, fmt.Errorf("supplier %w", errNotFound)
		}
		sup.CreatedAt = prev.CreatedAt
	}

	sup.ID = id
	sup.SupplierCode = code
	sup.SupplierName = name
	sup.ContactPerson = in.ContactPerson
	sup.Phone = in.Phone
	sup.Email = in.Email
	sup.Address = in.Address
	sup.IsActive = in.IsActive == nil || *in.IsActive
	sup.UpdatedAt = now
	s.suppliers.put(id, sup)
	return sup, nil
}

// renderSupplier returns the wire form of sup, broken when drift is on.
func (s *Server) renderSupplier(sup schema.Supplier) any {
	if !s.drift {
		return sup
	}
	return gin.H{
		"id":            sup.ID,
		"supplier_code": sup.SupplierCode,
		"supplier_name": sup.SupplierName,
		"is_active":     fmt.Sprint(sup.IsActive),
		"created_at":    sup.CreatedAt,
		"updated_at":    sup.UpdatedAt,
	}
}

func (s *Server) listSuppliers(c *gin.Context) {
	page, limit, err := pageParams(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))

	s.mu.Lock()
	matched := s.suppliers.filter(func(sup schema.Supplier) bool {
		return search == "" ||
			strings.Contains(strings.ToLower(sup.SupplierName), search) ||
			strings.Contains(strings.ToLower(sup.SupplierCode), search)
	})
	items := paginate(matched, page, limit)
	out := make([]any, 0, len(items))
	for _, sup := range items {
		out = append(out, s.renderSupplier(sup))
	}
	s.mu.Unlock()

	respondList(c, out, len(matched))
}

func (s *Server) getSupplier(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	sup, ok := s.suppliers.get(id)
	var out any
	if ok {
		out = s.renderSupplier(sup)
	}
	s.mu.Unlock()
	if !ok {
		respondError(c, http.StatusNotFound, "supplier not found")
		return
	}
	respond(c, http.StatusOK, "ok", out)
}

func (s *Server) createSupplier(c *gin.Context) {
	s.writeSupplier(c, 0, http.StatusCreated)
}

func (s *Server) updateSupplier(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	s.writeSupplier(c, id, http.StatusOK)
}

func (s *Server) writeSupplier(c *gin.Context, id int64, status int) {
	var in schema.SupplierInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "malformed supplier")
		return
	}
	s.mu.Lock()
	sup, err := s.saveSupplier(id, in)
	var out any
	if err == nil {
		out = s.renderSupplier(sup)
	}
	s.mu.Unlock()
	if err != nil {
		respondError(c, statusOf(err), err.Error())
		return
	}
	respond(c, status, "saved", out)
}

/* ==== USERS ==== */

func (s *Server) saveUser(id int64, in schema.UserInput, hash string) (schema.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || strings.TrimSpace(in.Email) == "" {
		return schema.User{}, fmt.Errorf("%w: username and email are required", errBadInput)
	}
	role, ok := s.roles.get(in.RoleID)
	if !ok {
		return schema.User{}, fmt.Errorf("%w: role %d does not exist", errBadInput, in.RoleID)
	}
	if acct, taken := s.accounts[username]; taken && acct.userID != id {
		return schema.User{}, fmt.Errorf("username %s %w", username, errConflict)
	}

	now := schema.TimestampOf(s.cfg.Now())
	user := schema.User{CreatedAt: now}
	if id == 0 {
		id = s.users.allocate()
	} else {
		prev, found := s.users.get(id)
		if !found {
			return schema.User{}, fmt.Errorf("user %w", errNotFound)
		}
		user.CreatedAt = prev.CreatedAt
		if acct, had := s.accounts[prev.Username]; had {
			delete(s.accounts, prev.Username)
			if hash == "" {
				hash = acct.hash
			}
		}
		user.UpdatedAt = &now
	}

	user.ID = id
	user.Username = username
	user.Email = in.Email
	user.FullName = in.FullName
	user.Role = schema.RoleRef{Name: role.RoleName, Role: &role}
	user.IsActive = in.IsActive == nil || *in.IsActive
	s.users.put(id, user)
	if hash != "" {
		s.accounts[username] = account{userID: id, hash: hash}
	}
	return user, nil
}

// listed users carry the bare role name, single users the embedded role.
func listedUser(u schema.User) schema.User {
	u.Role = schema.RoleRef{Name: u.Role.Name}
	return u
}

func (s *Server) listUsers(c *gin.Context) {
	page, limit, err := pageParams(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))

	s.mu.Lock()
	matched := s.users.filter(func(u schema.User) bool {
		return search == "" ||
			strings.Contains(strings.ToLower(u.Username), search) ||
			strings.Contains(strings.ToLower(u.Email), search)
	})
	s.mu.Unlock()

	items := paginate(matched, page, limit)
	out := make([]schema.User, 0, len(items))
	for _, u := range items {
		out = append(out, listedUser(u))
	}
	respondList(c, out, len(matched))
}

func (s *Server) getUser(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	user, ok := s.users.get(id)
	s.mu.Unlock()
	if !ok {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}
	respond(c, http.StatusOK, "ok", user)
}

func (s *Server) createUser(c *gin.Context) {
	s.writeUser(c, 0, http.StatusCreated)
}

func (s *Server) updateUser(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	s.writeUser(c, id, http.StatusOK)
}

func (s *Server) writeUser(c *gin.Context, id int64, status int) {
	var in schema.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "malformed user")
		return
	}
	hash, err := s.hashIfSet(in.Password)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "password hashing failed")
		return
	}
	s.mu.Lock()
	user, err := s.saveUser(id, in, hash)
	s.mu.Unlock()
	if err != nil {
		respondError(c, statusOf(err), err.Error())
		return
	}
	respond(c, status, "saved", user)
}

/* ==== ROLES ==== */

func (s *Server) saveRole(id int64, in schema.RoleInput) (schema.Role, error) {
	name := strings.TrimSpace(in.RoleName)
	if name == "" {
		return schema.Role{}, fmt.Errorf("%w: role_name is required", errBadInput)
	}
	for _, other := range s.roles.filter(nil) {
		if other.ID != id && strings.EqualFold(other.RoleName, name) {
			return schema.Role{}, fmt.Errorf("role %s %w", name, errConflict)
		}
	}
	if id == 0 {
		id = s.roles.allocate()
	} else if _, ok := s.roles.get(id); !ok {
		return schema.Role{}, fmt.Errorf("role %w", errNotFound)
	}

	perms := in.Permissions
	if perms == nil {
		perms = []string{}
	}
	role := schema.Role{ID: id, RoleName: name, Description: in.Description, Permissions: perms}
	s.roles.put(id, role)
	return role, nil
}

func (s *Server) listRoles(c *gin.Context) {
	page, limit, err := pageParams(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	all := s.roles.filter(nil)
	s.mu.Unlock()
	respondList(c, paginate(all, page, limit), len(all))
}

func (s *Server) getRole(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	role, ok := s.roles.get(id)
	s.mu.Unlock()
	if !ok {
		respondError(c, http.StatusNotFound, "role not found")
		return
	}
	respond(c, http.StatusOK, "ok", role)
}

func (s *Server) createRole(c *gin.Context) {
	s.writeRole(c, 0, http.StatusCreated)
}

func (s *Server) updateRole(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	s.writeRole(c, id, http.StatusOK)
}

func (s *Server) writeRole(c *gin.Context, id int64, status int) {
	var in schema.RoleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "malformed role")
		return
	}
	s.mu.Lock()
	role, err := s.saveRole(id, in)
	s.mu.Unlock()
	if err != nil {
		respondError(c, statusOf(err), err.Error())
		return
	}
	respond(c, status, "saved", role)
}
