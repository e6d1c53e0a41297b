// commands.go
//
// Command-line entry points.
//   - serve (default): run the HTTP API.
//   - solve: let the solver crack a given secret and print every step.
//   - play: a terminal game against the solver.

package main

import (
	"bufio"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/bullscows/internal/code"
	"github.com/robalobadob/bullscows/internal/config"
	"github.com/robalobadob/bullscows/internal/daily"
	"github.com/robalobadob/bullscows/internal/db"
	"github.com/robalobadob/bullscows/internal/game"
	"github.com/robalobadob/bullscows/internal/httpserver"
	"github.com/robalobadob/bullscows/internal/score"
	"github.com/robalobadob/bullscows/internal/solver"
	"github.com/robalobadob/bullscows/internal/store"
)

// --- Global Command Variables ---
var (
	envFile       string
	solveSecret   string
	solveSeed     int64
	solveStrategy string
	playSeed      int64

	rootCmd = &cobra.Command{
		Use:   "bullscows",
		Short: "Bulls and Cows against a constraint-propagation solver",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.Load(envFile)
			setupLogging(cfg.LogLevel, cmd.Name() != "serve" && cmd.Name() != "bullscows")
		},
		RunE: runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}

	solveCmd = &cobra.Command{
		Use:   "solve",
		Short: "Watch the solver crack a secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy := solveStrategy
			if strategy == "" {
				strategy = cfg.SolverStrategy
			}
			_, err := runSolve(cmd.OutOrStdout(), solveSecret, solveSeed, strategy)
			return err
		},
	}

	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Play a game in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []game.Option{
				game.WithStrategy(solver.StrategyByName(cfg.SolverStrategy)),
				game.WithStrictFeedback(cfg.StrictFeedback),
			}
			if playSeed != 0 {
				opts = append(opts, game.WithRand(code.NewRand(playSeed)))
			}
			return runPlay(cmd.InOrStdin(), cmd.OutOrStdout(), "", opts...)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file to load (missing is fine)")

	solveCmd.Flags().StringVar(&solveSecret, "secret", "", "secret for the solver to crack (random if empty)")
	solveCmd.Flags().Int64Var(&solveSeed, "seed", 0, "random seed (0 = time based)")
	solveCmd.Flags().StringVar(&solveStrategy, "strategy", "", "random | minimax (default from SOLVER_STRATEGY)")

	playCmd.Flags().Int64Var(&playSeed, "seed", 0, "random seed (0 = time based)")

	rootCmd.AddCommand(serveCmd, solveCmd, playCmd)
}

// --- serve ---

func runServe(cmd *cobra.Command, args []string) error {
	conn, err := db.OpenAndMigrate(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer conn.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := httpserver.New(cfg, httpserver.Deps{
		Store:    sessionStore(conn),
		Ledger:   score.NewLedger(conn),
		Daily:    daily.NewStore(conn),
		Registry: reg,
	})
	log.Info().Str("port", cfg.Port).Str("store", cfg.SessionStore).
		Str("strategy", cfg.SolverStrategy).Msg("starting bullscows server")
	return srv.Start(":" + cfg.Port)
}

// sessionStore picks the session backend named by SESSION_STORE.
func sessionStore(conn *sql.DB) store.Store {
	switch cfg.SessionStore {
	case "sqlite":
		return store.NewSQLStore(conn,
			game.WithStrategy(solver.StrategyByName(cfg.SolverStrategy)),
			game.WithStrictFeedback(cfg.StrictFeedback))
	case "memory":
	default:
		log.Warn().Str("store", cfg.SessionStore).Msg("unknown session store, using memory")
	}
	return store.NewMemoryStore()
}

// --- solve ---

// runSolve lets the solver crack secret with honest feedback and reports
// the number of guesses it needed.
func runSolve(out io.Writer, secret string, seed int64, strategy string) (int, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := code.NewRand(seed)
	target := code.Random(rng)
	if secret != "" {
		c, err := code.Parse(secret)
		if err != nil {
			return 0, err
		}
		target = c
	}

	sv := solver.New(solver.WithRand(rng), solver.WithStrategy(solver.StrategyByName(strategy)))
	fmt.Fprintf(out, "secret %s, strategy %s\n", target, sv.Strategy().Name())
	for sv.State() != solver.StateWon {
		if sv.Turns() >= code.UniverseSize {
			return sv.Turns(), errors.New("solver did not converge")
		}
		guess, err := sv.NextGuess()
		if err != nil {
			return sv.Turns(), err
		}
		fb := code.Evaluate(guess, target)
		if err := sv.ApplyFeedback(fb); err != nil {
			return sv.Turns(), err
		}
		fmt.Fprintf(out, "%2d  %s  %s  %4d left\n", sv.Turns(), guess, fb, sv.CandidateCount())
	}
	fmt.Fprintf(out, "solved in %d guesses\n", sv.Turns())
	return sv.Turns(), nil
}

// --- play ---

// runPlay runs one terminal game. An empty solverSecret is drawn at random.
// End of input quits quietly.
func runPlay(in io.Reader, out io.Writer, solverSecret code.Code, opts ...game.Option) error {
	sc := bufio.NewScanner(in)
	ask := func(prompt string) (string, bool) {
		fmt.Fprint(out, prompt)
		if !sc.Scan() {
			return "", false
		}
		return strings.TrimSpace(sc.Text()), true
	}

	sess := game.New(opts...)
	for sess.Phase() == game.PhaseNotStarted {
		line, ok := ask("Your secret (4 distinct digits, no leading zero): ")
		if !ok {
			return sc.Err()
		}
		if err := sess.StartWithSolverSecret(line, solverSecret); err != nil {
			fmt.Fprintln(out, "  ", err)
		}
	}

	for sess.Phase() == game.PhaseInProgress {
		if !sess.WaitingForFeedback() {
			line, ok := ask("Your guess: ")
			if !ok {
				return sc.Err()
			}
			turn, err := sess.SubmitHumanGuess(line)
			if err != nil {
				fmt.Fprintln(out, "  ", err)
				continue
			}
			fmt.Fprintf(out, "   %s\n", turn.Message)
			continue
		}

		line, ok := ask(fmt.Sprintf("Solver guesses %s. Bulls and cows (e.g. \"1 2\"): ", sess.SolverGuess()))
		if !ok {
			return sc.Err()
		}
		var bulls, cows int
		if _, err := fmt.Sscan(line, &bulls, &cows); err != nil {
			fmt.Fprintln(out, "   enter two numbers")
			continue
		}
		if _, err := sess.SubmitSolverFeedback(bulls, cows); err != nil {
			fmt.Fprintln(out, "  ", err)
			continue
		}
		fmt.Fprintf(out, "   solver has %d candidates left\n", sess.CandidateCount())
	}

	v := sess.View()
	switch v.Winner {
	case game.WinnerHuman:
		fmt.Fprintf(out, "You win in %d guesses!\n", len(v.HumanHistory))
	case game.WinnerSolver:
		last := v.SolverHistory[len(v.SolverHistory)-1]
		fmt.Fprintf(out, "The solver found %s in %d guesses. My secret was %s.\n",
			last.Code, len(v.SolverHistory), v.SolverSecret)
	}
	return nil
}
