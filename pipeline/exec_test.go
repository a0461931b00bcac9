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

package pipeline

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minic-lang/minic/internal/config"
	"github.com/minic-lang/minic/utils"
)

// startStub is a minimal ARM32 entry point that calls main and exits with
// its return value via the Linux exit syscall, standing in for the C
// runtime's _start the way the teacher's compiled output is linked against
// one (compile/compiler.go's linkFiles step).
const startStub = `
.syntax unified
.arch armv7-a
.text
.global _start
_start:
	bl main
	mov r7, #1
	swi #0
`

// execExpect assembles and links source's compiled output with a cross
// toolchain and runs it under qemu-arm, asserting on the process exit
// status (spec.md 8's six concrete scenarios). It is grounded on
// test/code_test.go's ExecExpect - compile, run, inspect observable
// behavior - generalized from host-native x86 execution to cross-compiled
// ARM32 under user-mode emulation, since the test host is not ARM32. The
// toolchain is optional infrastructure: the test skips rather than fails
// when it is absent, so the suite stays green on a workstation without an
// ARM cross compiler installed.
func execExpect(t *testing.T, source string, wantExit int) {
	t.Helper()
	as := firstAvailable("arm-linux-gnueabihf-gcc", "arm-none-eabi-gcc")
	qemu := "qemu-arm"
	if as == "" || !utils.CommandExists(qemu) {
		t.Skip("ARM32 cross toolchain or qemu-arm not available")
	}

	p := New(config.Default(), nil)
	result, err := p.CompileText(t.Name(), source)
	require.NoError(t, err)
	require.False(t, result.Failed(), "diagnostics: %v", result.Diagnostics.All())

	dir := t.TempDir()
	progPath := filepath.Join(dir, "prog.s")
	startPath := filepath.Join(dir, "start.s")
	binPath := filepath.Join(dir, "a.out")
	require.NoError(t, os.WriteFile(progPath, []byte(result.Assembly), 0o644))
	require.NoError(t, os.WriteFile(startPath, []byte(startStub), 0o644))

	cmd := exec.Command(as, "-static", "-nostartfiles", "-o", binPath, startPath, progPath)
	out, err := cmd.CombinedOutput()
	require.NoErrorf(t, err, "assemble/link failed: %s", out)

	run := exec.Command(qemu, binPath)
	_ = run.Run()
	require.Equal(t, wantExit, run.ProcessState.ExitCode())
}

func firstAvailable(names ...string) string {
	for _, n := range names {
		if utils.CommandExists(n) {
			return n
		}
	}
	return ""
}

func TestEndToEndArithmetic(t *testing.T) {
	execExpect(t, `int main(){ return 1+2*3; }`, 7)
}

func TestEndToEndModAndMultiDeclarator(t *testing.T) {
	execExpect(t, `int main(){ int a=10, b=3; return a%b; }`, 1)
}

func TestEndToEndWhileLoop(t *testing.T) {
	execExpect(t, `int main(){ int i=0,s=0; while(i<10){ s=s+i; i=i+1; } return s; }`, 45)
}

func TestEndToEndRecursiveFibonacci(t *testing.T) {
	execExpect(t, `int f(int n){ if(n<=1) return n; return f(n-1)+f(n-2); } int main(){ return f(10); }`, 55)
}

func TestEndToEndMultiDimArray(t *testing.T) {
	execExpect(t, `int main(){ int a[2][3]; a[1][2]=7; return a[1][2]; }`, 7)
}

func TestEndToEndShortCircuitAvoidsDivideByZero(t *testing.T) {
	execExpect(t, `int main(){ int a=0; if(a==0 || 1/a > 0) return 42; return 0; }`, 42)
}
