package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/briandowns/spinner"
	"github.com/notnil/chess"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/adamhock/chess-game-fetcher/pkg/analysis"
	"github.com/adamhock/chess-game-fetcher/pkg/config"
	"github.com/adamhock/chess-game-fetcher/pkg/engine"
)

const spin = 14

// accuracy analyze
func Analyze() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [game.pgn]",
		Short: "Compute the engine accuracy of a completed game",
		Args:  cobra.MaximumNArgs(1),
		Long: heredoc.Doc(`analyze replays a completed game and asks a UCI engine, move by
			move, how the played move compares with the engine's own
			suggestion at a fixed depth. The per-move quality scores are
			averaged into a single accuracy percentage.

			The game is given either as a PGN file or, with --moves, as a
			whitespace-separated list of moves in algebraic or coordinate
			notation.

			The engine is looked up by name in the engine registry
			(see 'accuracy engines'); a name with no registry entry is
			used directly as the path of the engine executable.`),

		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := gameRecords(cmd, args)
			if err != nil {
				return err
			}

			if len(records) == 0 {
				return errors.New("accuracy: the game has no moves to analyze")
			}

			registry, err := config.Engines()
			if err != nil {
				return err
			}

			name, _ := cmd.Flags().GetString("engine")
			engineConfig := registry.Resolve(name)

			if depth, _ := cmd.Flags().GetInt("depth"); depth > 0 {
				engineConfig.Depth = depth
			}
			if timeout, _ := cmd.Flags().GetInt("timeout"); timeout > 0 {
				engineConfig.Timeout = time.Duration(timeout) * time.Second
			}

			permissive, _ := cmd.Flags().GetBool("permissive")
			validation := analysis.Strict
			if permissive {
				validation = analysis.Permissive
			}

			session, err := engine.Start(engineConfig)
			if err != nil {
				return err
			}
			// The engine process goes away on every exit path.
			defer func() { _ = session.Quit() }()

			logrus.Infof("Analyzing %d moves with %s at depth %d...",
				len(records), session.Config().Name, session.Config().Depth)

			analyzer := analysis.New(session, analysis.Config{
				Depth:      session.Config().Depth,
				Validation: validation,
			})

			s := spinner.New(spinner.CharSets[spin], 100*time.Millisecond)
			s.Start() // Start the ~working~ spinner.
			scores, err := analyzer.AnalyzeGame(records)
			s.Stop() // Stop the ~working~ spinner.

			if err != nil {
				return err
			}

			printReport(analysis.Summarize(scores), len(records))
			return nil
		},
	}

	cmd.Flags().StringP("engine", "e", "stockfish", "registry name or path of the UCI engine")
	cmd.Flags().StringP("moves", "m", "", "analyze these moves instead of a PGN file")
	cmd.Flags().IntP("depth", "d", 0, "search depth for every evaluation")
	cmd.Flags().Int("timeout", 0, "per-search timeout in seconds")
	cmd.Flags().Bool("permissive", false, "apply engine suggestions without legality checks")

	return cmd
}

// gameRecords builds the replayed move records from either the --moves
// flag or the PGN file argument.
func gameRecords(cmd *cobra.Command, args []string) ([]analysis.MoveRecord, error) {
	if moves, _ := cmd.Flags().GetString("moves"); moves != "" {
		return analysis.Replay(strings.Fields(moves))
	}

	if len(args) == 0 {
		return nil, errors.New("accuracy: a PGN file or --moves is required")
	}

	file, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	defer file.Close()

	pgn, err := chess.PGN(file)
	if err != nil {
		return nil, fmt.Errorf("accuracy: parse %s: %w", args[0], err)
	}

	return analysis.RecordsFromGame(chess.NewGame(pgn)), nil
}

func printReport(report analysis.Report, records int) {
	fmt.Printf("\n\x1b[32mAccuracy\x1b[0m: %.1f%%\n\n", report.Accuracy)

	printSide("White", report.White)
	printSide("Black", report.Black)

	if unscored := records - len(report.Moves); unscored > 0 {
		fmt.Printf("\n%d of %d moves could not be scored and were skipped.\n",
			unscored, records)
	}
}

func printSide(name string, side analysis.SideSummary) {
	if side.Moves == 0 {
		return
	}

	fmt.Printf("- %-6s %5.1f%% over %d moves, %.0f centipawns lost per move\n",
		name, side.Accuracy, side.Moves, side.MeanCentipawnLoss)
}
