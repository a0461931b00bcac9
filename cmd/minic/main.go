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

// Command minic is the compiler driver. It replaces the teacher's
// positional-os.Args main.go with a cobra.Command exposing the flags spec.md
// section 6 names (-S, -A, -o, input file) plus SPEC_FULL.md's additions
// (-config, -v, -i, -diagnostics).
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/minic-lang/minic/internal/config"
	"github.com/minic-lang/minic/pipeline"
)

func main() {
	root := &cobra.Command{Use: "minic"}
	root.AddCommand(newBuildCommand())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newBuildCommand() *cobra.Command {
	var (
		emitAssembly bool
		wantARM32    bool
		outPath      string
		configPath   string
		verbose      bool
		emitIR       bool
		diagFormat   string
	)

	cmd := &cobra.Command{
		Use:   "build <file>",
		Short: "Compile a MiniC source file to ARM32 assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return errors.Wrap(err, "load config")
				}
				cfg = loaded
			}
			if wantARM32 {
				cfg.Arch = "arm32"
			}
			if emitIR {
				cfg.EmitIR = true
			}

			logger := newLogger(verbose)
			defer logger.Sync() //nolint:errcheck

			p := pipeline.New(cfg, logger)
			result, err := p.CompileFile(args[0])
			if err != nil {
				return err
			}

			if diagFormat == "yaml" {
				out, err := result.Diagnostics.YAML()
				if err != nil {
					return err
				}
				fmt.Fprint(os.Stderr, out)
			} else {
				for _, d := range result.Diagnostics.All() {
					fmt.Fprintln(os.Stderr, d.String())
				}
			}

			if emitIR {
				fmt.Println(result.IR)
			}

			if emitAssembly {
				if outPath == "" || outPath == "-" {
					fmt.Print(result.Assembly)
				} else if err := os.WriteFile(outPath, []byte(result.Assembly), 0o644); err != nil {
					return errors.Wrap(err, "write output")
				}
			}

			if result.Failed() {
				os.Exit(1)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&emitAssembly, "assembly", "S", true, "emit assembly text")
	flags.BoolVarP(&wantARM32, "arm32", "A", true, "target the ARM32 backend")
	flags.StringVarP(&outPath, "output", "o", "", "output path ('-' or empty for stdout)")
	flags.StringVar(&configPath, "config", "", "path to a YAML config.Config file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "raise log level to debug")
	flags.BoolVarP(&emitIR, "ir", "i", false, "also print the linear IR text form")
	flags.StringVar(&diagFormat, "diagnostics", "text", "diagnostic report format: text or yaml")

	return cmd
}

func newLogger(verbose bool) *zap.Logger {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
