// Copyright © 2025 Adam Hock
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package engine drives one external UCI search engine process over its
// standard input and output streams. A Session owns the process for its
// whole lifetime: commands go in as single lines, and a reader goroutine
// feeds the engine's output lines to the single currently waiting caller.
package engine

import (
	"bufio"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Config describes how to launch and talk to one engine process.
type Config struct {
	Name string `yaml:"name,omitempty"`
	Cmd  string `yaml:"cmd"`
	Dir  string `yaml:"dir,omitempty"`
	Arg  string `yaml:"arg,omitempty"`

	// UCI options sent right after the protocol handshake.
	Options map[string]string `yaml:"options,omitempty"`

	// Depth is the fixed search depth used for every evaluation.
	Depth int `yaml:"depth,omitempty"`

	// MateScore is the centipawn magnitude forced mates are folded onto.
	// A mate in N is scored as sign(N)×(MateScore−|N|), so it must exceed
	// any plausible material evaluation.
	MateScore int `yaml:"mate-score,omitempty"`

	// Timeout bounds each search's wait for the bestmove line.
	Timeout time.Duration `yaml:"-"`
}

const (
	DefaultDepth     = 12
	DefaultMateScore = 100000
	DefaultTimeout   = 60 * time.Second

	handshakeTimeout = 5 * time.Second
	quitGracePeriod  = 5 * time.Second
)

var (
	// ErrSpawn is returned when the engine executable can not be launched.
	ErrSpawn = errors.New("engine: process could not be spawned")

	// ErrReadTimeout is returned when no qualifying line arrives in time.
	ErrReadTimeout = errors.New("engine: read i/o timeout")

	// ErrAwaitOverlap is returned when two waits are issued on one session
	// at the same time. A session has exactly one waiter slot.
	ErrAwaitOverlap = errors.New("engine: overlapping await on session")
)

// Start launches the engine process described by the given configuration
// and completes the UCI handshake, so the returned Session is ready to
// accept search requests. Readiness is established with an explicit
// isready/readyok round trip, never by waiting a fixed duration.
func Start(config Config) (*Session, error) {
	if config.Name == "" {
		config.Name = config.Cmd
	}
	if config.Depth <= 0 {
		config.Depth = DefaultDepth
	}
	if config.MateScore <= 0 {
		config.MateScore = DefaultMateScore
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	var session Session
	session.config = config

	process := exec.Command(config.Cmd, strings.Fields(config.Arg)...)
	process.Dir = config.Dir

	stdin, _ := process.StdinPipe()
	stdout, _ := process.StdoutPipe()

	session.writer = bufio.NewWriter(stdin)
	reader := bufio.NewReader(stdout)
	session.lines = make(chan string)

	session.Cmd = process

	if err := session.Cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	go func() {
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				session.err = err
				close(session.lines)
				return
			}

			line = strings.Trim(line, " \n\t\r")

			logrus.Debugf("engine: (%s)> %s", session.config.Name, line)
			session.lines <- line
		}
	}()

	if err := session.initialize(); err != nil {
		_ = session.Quit()
		return nil, err
	}

	return &session, nil
}

// Session is the exclusive owner of one running engine process. At most
// one search request may be in flight on a Session at any time; sharing a
// Session between concurrent analyses is a contract violation. Spawn
// independent sessions instead.
type Session struct {
	config Config

	*exec.Cmd

	writer *bufio.Writer
	lines  chan string

	waiting atomic.Bool

	quit    sync.Once
	quitErr error

	err error
}

// Config returns the configuration the session was started with, with all
// defaults filled in.
func (session *Session) Config() Config {
	return session.config
}

// initialize performs the UCI handshake and applies the configured engine
// options.
func (session *Session) initialize() error {
	if err := session.Write("uci"); err != nil {
		return err
	}

	if _, err := session.Await("uciok", handshakeTimeout); err != nil {
		return err
	}

	for name, value := range session.config.Options {
		if err := session.Write("setoption name %s value %s", name, value); err != nil {
			return err
		}
	}

	return session.Synchronize()
}

// Synchronize waits for the engine to finish whatever it is doing and
// acknowledge that it is ready for the next command. It is also the way to
// resynchronize a session after a search timed out, before trusting it
// with another request.
func (session *Session) Synchronize() error {
	if err := session.Write("isready"); err != nil {
		return err
	}

	_, err := session.Await("readyok", handshakeTimeout)
	return err
}

// Write sends one command line to the engine. No acknowledgement is
// implied; callers that need one should Await it.
func (session *Session) Write(format string, a ...any) error {
	logrus.Debugf("engine: ("+session.config.Name+")< "+format, a...)

	if _, err := fmt.Fprintf(session.writer, format+"\n", a...); err != nil {
		return err
	}

	return session.writer.Flush()
}

// Await suspends the caller until the engine emits a line matching the
// given pattern, and returns that line. Non-matching lines are consumed
// and dropped. If no matching line arrives within the timeout, it returns
// ErrReadTimeout and the wait is over; the session's read stream is left
// wherever the engine's output had gotten to.
//
// Only one Await may be outstanding on a session; a second concurrent
// call fails with ErrAwaitOverlap instead of silently stealing lines.
func (session *Session) Await(pattern string, timeout time.Duration) (string, error) {
	if !session.waiting.CompareAndSwap(false, true) {
		return "", ErrAwaitOverlap
	}
	defer session.waiting.Store(false)

	regex := regexp.MustCompile(pattern)
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			// timer ran out: wait timeout

			if session.err != nil {
				return "", session.err
			}

			return "", ErrReadTimeout

		case line, ok := <-session.lines:
			if !ok {
				// The reader is gone: the process exited or closed
				// its output stream.
				if session.err != nil {
					return "", session.err
				}

				return "", ErrReadTimeout
			}

			if regex.MatchString(line) {
				// line is the expected line
				return line, nil
			}
		}
	}
}

// Quit asks the engine to exit and waits up to a bounded grace period for
// it to do so, killing the process if it has not. The process is no
// longer running when Quit returns, on every path. Quit is idempotent.
func (session *Session) Quit() error {
	session.quit.Do(func() {
		_ = session.Write("quit")

		done := make(chan error, 1)
		go func() { done <- session.Cmd.Wait() }()

		select {
		case err := <-done:
			session.quitErr = err

		case <-time.After(quitGracePeriod):
			session.quitErr = session.Process.Kill()
			<-done // reap the killed process
		}
	})

	return session.quitErr
}
