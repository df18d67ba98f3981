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

package analysis

import (
	"fmt"

	"github.com/notnil/chess"
)

// MoveRecord captures one played move together with the board state on
// either side of it, produced by replaying the game from its start.
type MoveRecord struct {
	// Index is the 1-based position of the move in the game.
	Index int

	// Notation is the move as it appeared in the game record.
	Notation string

	// BoardBefore and BoardAfter are the FEN encodings of the position
	// the move was played in and the position it produced.
	BoardBefore string
	BoardAfter  string

	// Mover is the side that made the move.
	Mover chess.Color
}

// Replay derives the full record sequence for a game given as a list of
// move strings, replaying it from the standard starting position. Both
// standard algebraic and coordinate notation are accepted, since game
// records in the wild use either.
func Replay(moves []string) ([]MoveRecord, error) {
	game := chess.NewGame()
	records := make([]MoveRecord, 0, len(moves))

	for index, notation := range moves {
		position := game.Position()
		before := position.String()
		mover := position.Turn()

		move, err := decodeMove(position, notation)
		if err != nil {
			return nil, fmt.Errorf("replay: move %d (%s): %w", index+1, notation, err)
		}

		if err := game.Move(move); err != nil {
			return nil, fmt.Errorf("replay: move %d (%s): %w", index+1, notation, err)
		}

		records = append(records, MoveRecord{
			Index:       index + 1,
			Notation:    notation,
			BoardBefore: before,
			BoardAfter:  game.Position().String(),
			Mover:       mover,
		})
	}

	return records, nil
}

// RecordsFromGame builds the record sequence for an already-parsed game,
// such as one read from a PGN file.
func RecordsFromGame(game *chess.Game) []MoveRecord {
	moves := game.Moves()
	positions := game.Positions()

	records := make([]MoveRecord, len(moves))
	for i, move := range moves {
		records[i] = MoveRecord{
			Index:       i + 1,
			Notation:    move.String(),
			BoardBefore: positions[i].String(),
			BoardAfter:  positions[i+1].String(),
			Mover:       positions[i].Turn(),
		}
	}

	return records
}

func decodeMove(position *chess.Position, notation string) (*chess.Move, error) {
	if move, err := (chess.AlgebraicNotation{}).Decode(position, notation); err == nil {
		return move, nil
	}

	return chess.UCINotation{}.Decode(position, notation)
}
