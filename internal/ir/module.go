// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package ir

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/minic-lang/minic/internal/types"
)

// Module owns the whole compilation unit: globals, functions, and the
// interned integer constant pool (spec.md 4.C). Scope resolution lives here
// rather than on Function because globals (scope level 0) are visible from
// every function; the scope stack's bottom entry is always the global scope.
type Module struct {
	Globals   []*Value
	Functions []*Function

	functionsByName map[string]*Function
	constPool       map[int32]*Value
	scopes          []map[string]*Value

	current    *Function
	nextGlobal int
}

func NewModule() *Module {
	return &Module{
		functionsByName: map[string]*Function{},
		constPool:       map[int32]*Value{},
		scopes:          []map[string]*Value{{}},
	}
}

// EnterScope pushes a fresh name->Value map. Use a deferred LeaveScope (or
// the scoped-acquisition helper in internal/lower) so a scope is always
// popped even on early return from a semantic error (spec.md design notes,
// "scoped resource acquisition for scopes").
func (m *Module) EnterScope() {
	m.scopes = append(m.scopes, map[string]*Value{})
}

func (m *Module) LeaveScope() {
	m.scopes = m.scopes[:len(m.scopes)-1]
}

// Depth returns the current nesting level; level 0 is the global scope.
func (m *Module) Depth() int {
	return len(m.scopes) - 1
}

func (m *Module) SetCurrentFunction(f *Function) {
	m.current = f
}

func (m *Module) CurrentFunction() *Function {
	return m.current
}

// NewVarValue creates a GlobalVariable when no function is active, otherwise
// a LocalVariable in the function's top scope (spec.md 4.C). An anonymous
// variable (name == "") still gets a synthesized key so later lookups on its
// own synthesized name work, though callers normally hold onto the returned
// *Value directly instead of re-resolving it.
func (m *Module) NewVarValue(t *types.Type, name string) *Value {
	var v *Value
	if m.current == nil {
		id := m.nextGlobal
		m.nextGlobal++
		v = newValue(KGlobal, id, t, name)
		if t.IsArray() {
			v.IsArray = true
			v.Dims = t.Dims
		}
		m.Globals = append(m.Globals, v)
	} else {
		v = m.current.NewLocal(t, name, m.Depth())
	}
	key := name
	if key == "" {
		key = fmt.Sprintf("$t%d", v.ID)
	}
	m.scopes[len(m.scopes)-1][key] = v
	return v
}

// FindVarValue searches scopes innermost-first, returning the first match or
// nil (spec.md 4.C).
func (m *Module) FindVarValue(name string) *Value {
	for i := len(m.scopes) - 1; i >= 0; i-- {
		if v, ok := m.scopes[i][name]; ok {
			return v
		}
	}
	return nil
}

func (m *Module) FindFunction(name string) *Function {
	return m.functionsByName[name]
}

// NewFunction registers a function declaration; it fails if the name is
// already taken (spec.md 4.C). It does not enter a scope or bind
// parameters - the caller (internal/lower) does that before walking the
// body, matching "the caller then pushes parameters, enters a scope, and
// asks the lowering to walk the body."
func (m *Module) NewFunction(name string, ret *types.Type) (*Function, error) {
	if _, exists := m.functionsByName[name]; exists {
		return nil, errors.Errorf("function %q already declared", name)
	}
	f := NewFunction(name, ret)
	m.functionsByName[name] = f
	m.Functions = append(m.Functions, f)
	return f, nil
}

// NewConstInt returns the interned Constant value for n, creating it on
// first use (spec.md 3 "Constants are interned per module").
func (m *Module) NewConstInt(n int32) *Value {
	if v, ok := m.constPool[n]; ok {
		return v
	}
	v := &Value{Kind: KConstant, Type: types.TInt32, ConstVal: n, RegID: NoReg}
	m.constPool[n] = v
	return v
}
