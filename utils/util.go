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
package utils

import (
	"fmt"
	"os/exec"
)

func Assert(cond bool, format string, msg ...interface{}) {
	if !cond {
		panic(fmt.Sprintf(format, msg...))
	}
}

func ShouldNotReachHere() {
	panic("Should not reach here")
}

// CommandExists reports whether name resolves on PATH, used by the ARM32
// end-to-end test harness to skip gracefully when the cross toolchain or
// qemu-arm is not installed.
func CommandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Align16 rounds n up to the next multiple of 16, used by the frame layout
// to size the stack frame to the ARM32 ABI's 8-byte (practically 16-byte)
// stack alignment requirement (spec.md 4.F).
func Align16(n int) int {
	return (n + 15) &^ 15
}
