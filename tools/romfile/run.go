// Copyright 2024 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package romfile

import (
	"bufio"
	"errors"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"time"

	"github.com/buildkite/shellwords"
	"go.uber.org/zap"
)

var ErrEmptyCommand = errors.New("run: empty command")

// Run executes cmdline, typically an emulator or flashcart loader, with the
// image path appended as last argument. Its output is logged line by line.
// Test binaries are terminated as soon as they print PASS or FAIL, the
// returned exit code is 1 on FAIL or panic.
func Run(log *zap.SugaredLogger, cmdline, path string) (code int, err error) {
	args, err := shellwords.Split(cmdline)
	if err != nil {
		return 0, err
	}
	if len(args) == 0 {
		return 0, ErrEmptyCommand
	}
	args = append(args, path)
	log.Debugw("run", "args", args)

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stderr = os.Stderr
	processGroupEnable(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, err
	}

	sigintr := make(chan os.Signal, 1)
	signal.Notify(sigintr, os.Interrupt)
	defer signal.Stop(sigintr)

	if err = cmd.Start(); err != nil {
		return 0, err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigintr:
			stdout.Close()
			if err := processGroupKill(cmd); err != nil {
				log.Warn(err)
			}
		case <-done:
		}
	}()

	scanner := bufio.NewScanner(stdout)
	exiting := false
	for scanner.Scan() {
		line := scanner.Text()
		log.Info(line)
		if exiting {
			continue
		}
		switch {
		case strings.HasPrefix(line, "fatal error:"), strings.HasPrefix(line, "panic:"):
			fallthrough
		case line == "FAIL":
			code = 1
			fallthrough
		case line == "PASS":
			exiting = true
			go func() {
				// give panic() time to print the stacktrace
				time.Sleep(500 * time.Millisecond)
				stdout.Close()
				if err := processGroupKill(cmd); err != nil {
					log.Warn(err)
				}
			}()
		}
	}
	err = cmd.Wait()
	var exitErr *exec.ExitError
	if !exiting && errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return code, nil
}
