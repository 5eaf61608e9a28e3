package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Objects and actions checked by the HTTP layer.
const (
	ObjSermons    = "sermons"
	ObjEvents     = "events"
	ObjMinistries = "ministries"
	ObjGallery    = "gallery"
	ObjAbout      = "about"
	ObjHero       = "hero"
	ObjContact    = "contact"

	ActRead   = "read"
	ActCreate = "create"
	ActUpdate = "update"
	ActDelete = "delete"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// defaultPolicy: admins may do anything; editors maintain content and work
// the contact inbox but never delete.
var defaultPolicy = [][]string{
	{RoleAdmin, "*", "*"},
	{RoleEditor, ObjSermons, ActCreate},
	{RoleEditor, ObjSermons, ActUpdate},
	{RoleEditor, ObjEvents, ActCreate},
	{RoleEditor, ObjEvents, ActUpdate},
	{RoleEditor, ObjMinistries, ActCreate},
	{RoleEditor, ObjMinistries, ActUpdate},
	{RoleEditor, ObjGallery, ActCreate},
	{RoleEditor, ObjGallery, ActUpdate},
	{RoleEditor, ObjAbout, ActUpdate},
	{RoleEditor, ObjHero, ActUpdate},
	{RoleEditor, ObjContact, ActRead},
	{RoleEditor, ObjContact, ActUpdate},
}

// Enforcer answers role/object/action questions against the RBAC policy.
type Enforcer struct {
	e *casbin.SyncedEnforcer
}

// NewEnforcer builds an enforcer loaded with the default policy.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if _, err := e.AddPolicies(defaultPolicy); err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}
	return &Enforcer{e: e}, nil
}

// Allowed reports whether role may perform act on obj.
func (en *Enforcer) Allowed(role, obj, act string) (bool, error) {
	return en.e.Enforce(role, obj, act)
}
