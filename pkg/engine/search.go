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
	"errors"
	"strconv"
	"strings"
	"time"
)

// Result is the outcome of one bounded-depth search.
type Result struct {
	// BestMove is the engine's suggested move in coordinate notation,
	// or empty if the engine announced none.
	BestMove string

	// Score is the last evaluation the search announced, in centipawns
	// from white's point of view. Forced mates are folded onto the same
	// scale (see Config.MateScore). If the search never announced a
	// score, Score is 0; that is a documented limitation, not an error.
	Score int
}

// Search runs one search of the configured depth on the given position
// and consumes the engine's output until the terminal bestmove line.
// Progress lines carrying a score overwrite the previously captured one;
// only the most recent announcement matters. Lines that can not be parsed
// for a score are dropped without disturbing the captured value.
//
// If the bestmove line does not arrive within the configured timeout,
// Search fails with ErrReadTimeout. The engine may still be searching at
// that point; a best-effort stop is issued so that a later Synchronize
// can bring the session back in step before it is reused.
func (session *Session) Search(fen string, depth int) (Result, error) {
	if err := session.Write("position fen %s", fen); err != nil {
		return Result{}, err
	}

	// The engine acknowledges the position before the search starts, so
	// a slow position setup never eats into the search window.
	if err := session.Synchronize(); err != nil {
		return Result{}, err
	}

	if err := session.Write("go depth %d", depth); err != nil {
		return Result{}, err
	}

	var result Result
	deadline := time.Now().Add(session.config.Timeout)

	for {
		line, err := session.Await("bestmove .*|info .*", time.Until(deadline))
		if err != nil {
			if errors.Is(err, ErrReadTimeout) {
				// Halt the orphaned search; its output, whenever it
				// comes, belongs to no one.
				_ = session.Write("stop")
			}

			return Result{}, err
		}

		if strings.HasPrefix(line, "bestmove") {
			if fields := strings.Fields(line); len(fields) > 1 && fields[1] != "(none)" {
				result.BestMove = fields[1]
			}

			return result, nil
		}

		if score, ok := parseScore(line, session.config.MateScore); ok {
			result.Score = score
		}
	}
}

// parseScore extracts the evaluation announced by a single info line.
// A centipawn announcement is used verbatim. A forced mate in N becomes
// sign(N)×(mateScore−|N|), so shorter mates are more extreme and the sign
// still says which side is winning. Malformed lines report not-ok.
func parseScore(line string, mateScore int) (int, bool) {
	fields := strings.Fields(line)

	for i, field := range fields {
		if field != "score" || i+2 >= len(fields) {
			continue
		}

		value, err := strconv.Atoi(fields[i+2])
		if err != nil {
			return 0, false
		}

		switch fields[i+1] {
		case "cp":
			return value, true

		case "mate":
			if value < 0 {
				return -(mateScore + value), true
			}
			return mateScore - value, true
		}

		return 0, false
	}

	return 0, false
}
