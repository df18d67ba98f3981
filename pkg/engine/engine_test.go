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

package engine

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeEngine writes a shell script that speaks just enough UCI for the
// session under test and returns a configuration pointing at it.
func fakeEngine(t *testing.T, script string) Config {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake engine requires /bin/sh")
	}

	path := filepath.Join(t.TempDir(), "engine.sh")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	return Config{
		Name:    "fake",
		Cmd:     path,
		Timeout: 2 * time.Second,
	}
}

const fakeScript = `#!/bin/sh
while read cmd; do
  case "$cmd" in
    uci) echo "id name fake"; echo "uciok" ;;
    isready) echo "readyok" ;;
    position*) ;;
    go*)
      echo "info depth 12 score cp 34 pv e2e4"
      echo "info depth 13 score cp 21 pv e2e4"
      echo "bestmove e2e4"
      ;;
    quit) exit 0 ;;
  esac
done
`

// Like fakeScript, but searches never announce a score.
const scorelessScript = `#!/bin/sh
while read cmd; do
  case "$cmd" in
    uci) echo "uciok" ;;
    isready) echo "readyok" ;;
    go*) echo "bestmove e2e4" ;;
    quit) exit 0 ;;
  esac
done
`

// Like fakeScript, but searches never terminate.
const silentScript = `#!/bin/sh
while read cmd; do
  case "$cmd" in
    uci) echo "uciok" ;;
    isready) echo "readyok" ;;
    quit) exit 0 ;;
  esac
done
`

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestSearch(t *testing.T) {
	session, err := Start(fakeEngine(t, fakeScript))
	require.NoError(t, err)
	defer func() { _ = session.Quit() }()

	result, err := session.Search(startFEN, 12)
	require.NoError(t, err)

	require.Equal(t, "e2e4", result.BestMove)
	// Only the most recent score announcement counts.
	require.Equal(t, 21, result.Score)
}

func TestSearchWithoutScore(t *testing.T) {
	session, err := Start(fakeEngine(t, scorelessScript))
	require.NoError(t, err)
	defer func() { _ = session.Quit() }()

	result, err := session.Search(startFEN, 12)
	require.NoError(t, err)

	require.Equal(t, "e2e4", result.BestMove)
	require.Equal(t, 0, result.Score)
}

func TestSearchTimeout(t *testing.T) {
	config := fakeEngine(t, silentScript)
	config.Timeout = 200 * time.Millisecond

	session, err := Start(config)
	require.NoError(t, err)
	defer func() { _ = session.Quit() }()

	_, err = session.Search(startFEN, 12)
	require.ErrorIs(t, err, ErrReadTimeout)

	// The session resynchronizes and stays usable after a timeout.
	require.NoError(t, session.Synchronize())
}

func TestStartSpawnFailure(t *testing.T) {
	_, err := Start(Config{
		Cmd: filepath.Join(t.TempDir(), "no-such-engine"),
	})
	require.ErrorIs(t, err, ErrSpawn)
}

func TestAwaitOverlap(t *testing.T) {
	session, err := Start(fakeEngine(t, silentScript))
	require.NoError(t, err)
	defer func() { _ = session.Quit() }()

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = session.Await("never", time.Second)
	}()

	// Let the first wait claim the waiter slot.
	time.Sleep(100 * time.Millisecond)

	_, err = session.Await("never", time.Second)
	require.ErrorIs(t, err, ErrAwaitOverlap)

	wg.Wait()
	require.ErrorIs(t, firstErr, ErrReadTimeout)
}

func TestQuitIsIdempotent(t *testing.T) {
	session, err := Start(fakeEngine(t, fakeScript))
	require.NoError(t, err)

	require.NoError(t, session.Quit())
	require.NoError(t, session.Quit())

	// The process has been reaped by the time Quit returns.
	require.NotNil(t, session.ProcessState)
}
