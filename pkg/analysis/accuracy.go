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

import "github.com/notnil/chess"

// MoveScore is the quality verdict for one successfully scored move.
type MoveScore struct {
	Index int
	Mover chess.Color

	// CentipawnLoss is how far below the engine's own suggestion the
	// played move evaluated, in the mover's perspective. Never negative.
	CentipawnLoss int

	// Score is the normalized quality of the move, always in (0, 1].
	Score float64
}

// scale maps a centipawn loss ceiling to a move quality score. Entries
// are ordered by loss; anything above the last ceiling scores 0.10.
var scale = []struct {
	loss  int
	score float64
}{
	{10, 1.00},
	{30, 0.95},
	{60, 0.80},
	{100, 0.60},
	{200, 0.30},
}

// Normalize maps a centipawn loss to its quality score. The mapping is
// monotonically non-increasing in the loss and always lands in (0, 1].
func Normalize(centipawnLoss int) float64 {
	for _, step := range scale {
		if centipawnLoss <= step.loss {
			return step.score
		}
	}

	return 0.10
}

// Accuracy reduces per-move scores to a single percentage in [0, 100]:
// the arithmetic mean of the normalized scores, scaled. An empty sequence
// yields 0.
func Accuracy(scores []MoveScore) float64 {
	if len(scores) == 0 {
		return 0
	}

	var sum float64
	for _, score := range scores {
		sum += score.Score
	}

	return sum / float64(len(scores)) * 100
}

// SideSummary aggregates the scored moves of one player.
type SideSummary struct {
	Moves             int
	Accuracy          float64
	MeanCentipawnLoss float64
}

// Report is the finished analysis of one game.
type Report struct {
	// Accuracy is the overall percentage across every scored move.
	Accuracy float64

	// Moves are the per-move verdicts, in game order. Unscored moves are
	// absent.
	Moves []MoveScore

	White SideSummary
	Black SideSummary
}

// Summarize reduces the per-move scores to the game's report, including
// the per-side breakdown.
func Summarize(scores []MoveScore) Report {
	var white, black []MoveScore
	for _, score := range scores {
		if score.Mover == chess.White {
			white = append(white, score)
		} else {
			black = append(black, score)
		}
	}

	return Report{
		Accuracy: Accuracy(scores),
		Moves:    scores,
		White:    summarizeSide(white),
		Black:    summarizeSide(black),
	}
}

func summarizeSide(scores []MoveScore) SideSummary {
	summary := SideSummary{
		Moves:    len(scores),
		Accuracy: Accuracy(scores),
	}

	if len(scores) == 0 {
		return summary
	}

	var loss int
	for _, score := range scores {
		loss += score.CentipawnLoss
	}
	summary.MeanCentipawnLoss = float64(loss) / float64(len(scores))

	return summary
}
