// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/walteh/czicompress/cmd/czicompress/commands"
	"github.com/walteh/czicompress/cmd/czicompress/opts"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/term"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, term.IsTerminal(int(os.Stdout.Fd())))
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, interactive bool) int {
	ropts := &opts.RootOpts{
		Stdout:      stdout,
		Stderr:      stderr,
		Interactive: interactive,
	}

	rootCmd := newRootCmd(ropts)
	rootCmd.AddCommand(
		commands.NewBatchCmd(ropts),
		newVersionCmd(ropts),
	)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "Error parsing the command-line: %v.\n", err)
			return 1
		}
		fmt.Fprintf(stderr, "An unrecoverable runtime error occurred: %v.\n", err)
		return 1
	}
	return 0
}
