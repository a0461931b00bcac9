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
	"strings"
)

// Print renders a Module in the stable linear-IR textual form from spec.md
// section 6, used for the driver's -i output and as comments threaded
// through the ARM32 emitter. It mirrors the teacher's fmt.Printf-based IR
// dumps (compile/ssa, compile/codegen/lir.go String methods) but targets the
// grammar spec.md fixes rather than falcon's SSA/LIR text.
func Print(m *Module) string {
	var sb strings.Builder
	for _, g := range m.Globals {
		if g.GlobalInit != nil {
			fmt.Fprintf(&sb, "declare %s %s = %d\n", g.Type, g.Name, *g.GlobalInit)
		} else {
			fmt.Fprintf(&sb, "declare %s %s\n", g.Type, g.Name)
		}
	}
	for _, fn := range m.Functions {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		printFunction(&sb, fn)
	}
	return sb.String()
}

func printFunction(sb *strings.Builder, fn *Function) {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = fmt.Sprintf("%s %s", p.Type, p.Name)
	}
	fmt.Fprintf(sb, "define %s %s(%s) {\n", fn.ReturnType, fn.Name, strings.Join(params, ", "))
	for _, inst := range fn.Code {
		printInstruction(sb, inst)
	}
	sb.WriteString("}\n")
}

// PrintInstruction renders a single instruction the same way Print does,
// without the two-space statement indent - the ARM32 emitter threads this
// through as a comment above the instructions it selects from (spec.md 4.H
// "used ... as comments in the emitted assembly").
func PrintInstruction(inst *Instruction) string {
	var sb strings.Builder
	printInstruction(&sb, inst)
	return strings.TrimSpace(sb.String())
}

func printInstruction(sb *strings.Builder, inst *Instruction) {
	switch inst.Op {
	case OpEntry:
		sb.WriteString("  entry:\n")
	case OpLabel:
		fmt.Fprintf(sb, "  %s:\n", inst.LabelName)
	case OpGoto:
		fmt.Fprintf(sb, "  br label %s\n", inst.Target.LabelName)
	case OpCondGoto:
		fmt.Fprintf(sb, "  bc %s, label %s, label %s\n", inst.Args()[0], inst.Target.LabelName, inst.Target2.LabelName)
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpCmpEq, OpCmpNe, OpCmpLt, OpCmpLe, OpCmpGt, OpCmpGe:
		fmt.Fprintf(sb, "  %s = %s %s, %s\n", inst.String(), inst.Op, inst.Args()[0], inst.Args()[1])
	case OpNeg:
		fmt.Fprintf(sb, "  %s = neg %s\n", inst.String(), inst.Args()[0])
	case OpDeref:
		fmt.Fprintf(sb, "  %s = *%s\n", inst.String(), inst.Args()[0])
	case OpMove:
		if inst.ArrayCopy {
			fmt.Fprintf(sb, "  %s = %s (array, dims=%v)\n", inst.Args()[0], inst.Args()[1], inst.MoveDims)
		} else {
			fmt.Fprintf(sb, "  %s = %s\n", inst.Args()[0], inst.Args()[1])
		}
	case OpCall:
		args := make([]string, len(inst.CallArgs))
		for i, a := range inst.CallArgs {
			args[i] = a.String()
		}
		callee := "?"
		if inst.Callee != nil {
			callee = inst.Callee.Name
		}
		if inst.Type.IsVoid() {
			fmt.Fprintf(sb, "  call %s(%s)\n", callee, strings.Join(args, ", "))
		} else {
			fmt.Fprintf(sb, "  %s = call %s(%s)\n", inst.String(), callee, strings.Join(args, ", "))
		}
	case OpExit:
		if inst.RetValue != nil {
			fmt.Fprintf(sb, "  exit %s\n", inst.RetValue)
		} else {
			sb.WriteString("  exit\n")
		}
	case OpArg:
		fmt.Fprintf(sb, "  arg %s\n", inst.Args()[0])
	}
}
