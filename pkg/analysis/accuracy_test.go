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
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/require"
)

func TestNormalizeThresholds(t *testing.T) {
	tests := []struct {
		loss  int
		score float64
	}{
		{0, 1.00},
		{10, 1.00},
		{11, 0.95},
		{30, 0.95},
		{31, 0.80},
		{60, 0.80},
		{61, 0.60},
		{100, 0.60},
		{101, 0.30},
		{200, 0.30},
		{201, 0.10},
		{5000, 0.10},
	}

	for _, tt := range tests {
		require.Equal(t, tt.score, Normalize(tt.loss), "loss %d", tt.loss)
	}
}

func TestNormalizeIsMonotonic(t *testing.T) {
	previous := Normalize(0)
	for loss := 0; loss <= 500; loss++ {
		score := Normalize(loss)

		require.LessOrEqual(t, score, previous)
		require.Greater(t, score, 0.0)
		require.LessOrEqual(t, score, 1.0)

		previous = score
	}
}

func TestAccuracy(t *testing.T) {
	scores := []MoveScore{
		{Index: 1, Score: 1.0},
		{Index: 2, Score: 0.8},
		{Index: 3, Score: 0.6},
	}

	require.InDelta(t, 80.0, Accuracy(scores), 1e-9)
}

func TestAccuracyOfNothing(t *testing.T) {
	require.Equal(t, 0.0, Accuracy(nil))
	require.Equal(t, 0.0, Accuracy([]MoveScore{}))
}

func TestSummarize(t *testing.T) {
	scores := []MoveScore{
		{Index: 1, Mover: chess.White, CentipawnLoss: 0, Score: 1.0},
		{Index: 2, Mover: chess.Black, CentipawnLoss: 150, Score: 0.30},
		{Index: 3, Mover: chess.White, CentipawnLoss: 40, Score: 0.80},
	}

	report := Summarize(scores)

	require.InDelta(t, 70.0, report.Accuracy, 1e-9)
	require.Len(t, report.Moves, 3)

	require.Equal(t, 2, report.White.Moves)
	require.InDelta(t, 90.0, report.White.Accuracy, 1e-9)
	require.InDelta(t, 20.0, report.White.MeanCentipawnLoss, 1e-9)

	require.Equal(t, 1, report.Black.Moves)
	require.InDelta(t, 30.0, report.Black.Accuracy, 1e-9)
	require.InDelta(t, 150.0, report.Black.MeanCentipawnLoss, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	report := Summarize(nil)

	require.Equal(t, 0.0, report.Accuracy)
	require.Equal(t, 0, report.White.Moves)
	require.Equal(t, 0, report.Black.Moves)
}
