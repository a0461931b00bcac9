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

package arm32

import (
	"fmt"
	"strings"

	"github.com/minic-lang/minic/internal/config"
	"github.com/minic-lang/minic/internal/ir"
)

// EmitModule renders an entire compiled Module as ARM32 assembler text
// (spec.md 4.H "ARM32 output: standard assembler syntax, one function at a
// time"): initialized globals in .data, BSS globals in .bss, then each
// function's code in .text with a global symbol per function so the
// driver-produced object can be linked against a C runtime's _start/main
// entry the way the teacher's own emitted .s files are. cfg.MaxScratchRegisters
// bounds every function's scratch allocator (see NewAllocator).
func EmitModule(m *ir.Module, cfg config.Config) string {
	var sb strings.Builder
	sb.WriteString(".syntax unified\n")
	sb.WriteString(".arch armv7-a\n")
	sb.WriteString(".arch_extension idiv\n") // sdiv, used by div and mod

	emitGlobals(&sb, m)

	sb.WriteString(".text\n")
	for _, fn := range m.Functions {
		fmt.Fprintf(&sb, ".global %s\n", fn.Name)
	}
	for _, fn := range m.Functions {
		sb.WriteString(SelectFunction(fn, cfg.MaxScratchRegisters))
	}
	return sb.String()
}

func emitGlobals(sb *strings.Builder, m *ir.Module) {
	var initialized, bss []*ir.Value
	for _, g := range m.Globals {
		if g.GlobalInit != nil {
			initialized = append(initialized, g)
		} else {
			bss = append(bss, g)
		}
	}

	if len(initialized) > 0 {
		sb.WriteString(".data\n")
		for _, g := range initialized {
			fmt.Fprintf(sb, "%s:\n", g.Name)
			fmt.Fprintf(sb, "\t.word %d\n", *g.GlobalInit)
		}
	}
	if len(bss) > 0 {
		sb.WriteString(".bss\n")
		for _, g := range bss {
			fmt.Fprintf(sb, "%s:\n", g.Name)
			fmt.Fprintf(sb, "\t.space %d\n", wordsFor(g)*4)
		}
	}
}
