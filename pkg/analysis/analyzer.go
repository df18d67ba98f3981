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

// Package analysis converts a completed game's move sequence into
// per-move quality scores and an overall accuracy percentage, by asking
// an engine how each played move compares with its own suggestion.
package analysis

import (
	"errors"
	"fmt"

	"github.com/notnil/chess"
	"github.com/sirupsen/logrus"

	"github.com/adamhock/chess-game-fetcher/pkg/engine"
)

// Evaluator runs one bounded-depth search on a position given by its FEN
// encoding. It is implemented by *engine.Session.
type Evaluator interface {
	Search(fen string, depth int) (engine.Result, error)
}

// Validation selects how engine move suggestions are applied to a board.
type Validation int

const (
	// Strict accepts a suggestion only if it matches a fully legal move
	// for the position it was suggested in.
	Strict Validation = iota

	// Permissive applies any decodable suggestion without consulting the
	// legal move list.
	Permissive
)

// Config holds the per-analysis settings.
type Config struct {
	// Depth is the search depth used for every evaluation. It is fixed
	// for the whole analysis.
	Depth int

	// Validation controls the leniency of suggested-move application.
	Validation Validation
}

// ErrIllegalMove marks an engine suggestion that can not be applied to
// the position it was suggested for. It is absorbed inside AnalyzeGame:
// the affected move is left unscored and the analysis continues.
var ErrIllegalMove = errors.New("analysis: suggested move can not be applied")

// Analyzer scores played moves against an engine's recommendations.
type Analyzer struct {
	evaluator Evaluator
	config    Config
}

// New creates an Analyzer on top of the given evaluator. The evaluator is
// used strictly serially: no evaluation is requested before the previous
// one has completed.
func New(evaluator Evaluator, config Config) *Analyzer {
	if config.Depth <= 0 {
		config.Depth = engine.DefaultDepth
	}

	return &Analyzer{
		evaluator: evaluator,
		config:    config,
	}
}

// AnalyzeGame scores the given records in ascending index order. Records
// whose engine suggestion is missing or can not be applied are omitted
// from the output, not zero-filled; every other failure aborts the
// analysis and is returned.
func (analyzer *Analyzer) AnalyzeGame(records []MoveRecord) ([]MoveScore, error) {
	scores := make([]MoveScore, 0, len(records))

	for _, record := range records {
		score, err := analyzer.analyzeMove(record)
		switch {
		case errors.Is(err, ErrIllegalMove):
			logrus.Debugf("analysis: move %d (%s) left unscored: %v",
				record.Index, record.Notation, err)
			continue

		case err != nil:
			return nil, err
		}

		scores = append(scores, score)
	}

	return scores, nil
}

func (analyzer *Analyzer) analyzeMove(record MoveRecord) (MoveScore, error) {
	// The engine's preferred move in the position the player faced. Its
	// score is irrelevant here; only the suggestion is used.
	suggestion, err := analyzer.evaluator.Search(record.BoardBefore, analyzer.config.Depth)
	if err != nil {
		return MoveScore{}, err
	}

	if suggestion.BestMove == "" {
		return MoveScore{}, fmt.Errorf("%w: engine suggested no move", ErrIllegalMove)
	}

	hypothetical, err := applySuggestion(record.BoardBefore, suggestion.BestMove, analyzer.config.Validation)
	if err != nil {
		return MoveScore{}, err
	}

	best, err := analyzer.evaluator.Search(hypothetical, analyzer.config.Depth)
	if err != nil {
		return MoveScore{}, err
	}

	played, err := analyzer.evaluator.Search(record.BoardAfter, analyzer.config.Depth)
	if err != nil {
		return MoveScore{}, err
	}

	// Engine scores are from white's point of view; restate both in the
	// mover's own perspective, positive meaning good for the mover.
	evalBest, evalPlayed := best.Score, played.Score
	if record.Mover == chess.Black {
		evalBest, evalPlayed = -evalBest, -evalPlayed
	}

	loss := evalBest - evalPlayed
	if loss < 0 {
		// A move the engine rates at or above its own suggestion at this
		// depth is never penalized.
		loss = 0
	}

	return MoveScore{
		Index:         record.Index,
		Mover:         record.Mover,
		CentipawnLoss: loss,
		Score:         Normalize(loss),
	}, nil
}

// applySuggestion derives the position reached by playing the engine's
// suggested move. Under Strict validation the suggestion has to match one
// of the position's generated legal moves before it is applied.
func applySuggestion(fen, notation string, validation Validation) (string, error) {
	fenOption, err := chess.FEN(fen)
	if err != nil {
		return "", fmt.Errorf("%w: bad position %q: %v", ErrIllegalMove, fen, err)
	}

	position := chess.NewGame(fenOption).Position()

	move, err := chess.UCINotation{}.Decode(position, notation)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}

	if validation == Strict {
		legal := false
		for _, candidate := range position.ValidMoves() {
			if candidate.S1() == move.S1() && candidate.S2() == move.S2() &&
				candidate.Promo() == move.Promo() {
				legal = true
				break
			}
		}

		if !legal {
			return "", fmt.Errorf("%w: %s is not legal in %s", ErrIllegalMove, notation, fen)
		}
	}

	return position.Update(move).String(), nil
}
