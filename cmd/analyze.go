package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"

	"github.com/podkolzin/go-hero-metrics/internal/storage"
)

const analyzeSystemPrompt = `You are an esports betting analyst. You are given structured data from a
hero-matchup metrics tool and a question from the user.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise and actionable — focus on which configurations held up and why.
- A replayed result is not a prediction. Flag any configuration with fewer
  than 30 bets as a small sample.

Metrics glossary:
- WR%: a hero's win rate across all archived matches it appeared in.
- Delta: matrix-derived gap between two rosters; positive favors team1.
- Delta threshold: minimum |delta| a match needs before a bet is placed.
- Odds: decimal odds on the side the delta picks. "<1.6" means only bets
  with odds under 1.6 were taken.
- Win%: bets won as a percentage of bets placed.
- Final bank: bankroll after replaying every qualifying bet from 1000.
- ROI: profit divided by total staked.
- Max drawdown: worst peak-to-trough bankroll drop during the replay.
- Max stake: largest single bet the replay placed.
- Base bet (martingale): unit stake sized so the bankroll covers the worst
  losing streak plus one more doubling.
- Bankrupt (martingale): even a 1-unit base bet could not cover the worst
  streak, so the combination was never survivable.`

var (
	analyzeModel  string
	analyzeAPIKey string

	analyzeRun     string
	analyzeMatrix  string
	analyzeHeroMap string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <question>",
	Short: "AI-powered grounded analysis (requires ANTHROPIC_API_KEY)",
	Long: `Ask a question about the archive or a saved backtest run. The data is
serialised and sent to the Anthropic API together with the question; the
model is instructed to answer only from that data.

With --run, the context is that run's stored result grid. Without it, the
context is the archive overview and team records; add --matrix and
--hero-map to also include per-hero aggregates.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "claude-haiku-4-5-20251001", "Anthropic model to use")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	analyzeCmd.Flags().StringVar(&analyzeRun, "run", "", "analyze a saved run by id prefix")
	analyzeCmd.Flags().StringVar(&analyzeMatrix, "matrix", "", "published matrix file (supplies hero names)")
	analyzeCmd.Flags().StringVar(&analyzeHeroMap, "hero-map", "", "hero name -> index map file")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	question := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var contextJSON string
	if analyzeRun != "" {
		contextJSON, err = buildRunContext(db, analyzeRun)
	} else {
		contextJSON, err = buildArchiveContext(db, analyzeMatrix, analyzeHeroMap)
	}
	if err != nil {
		return err
	}

	return callAnthropic(cmd.Context(), analyzeAPIKey, analyzeModel, contextJSON, question)
}

// buildRunContext serialises a saved run's result grid into compact JSON.
// Strategy grids are capped to the 50 best final banks to keep the
// context small; the martingale grid is sent whole.
func buildRunContext(db *storage.DB, prefix string) (string, error) {
	run, err := db.GetRunByPrefix(prefix)
	if err != nil {
		return "", fmt.Errorf("query run: %w", err)
	}
	if run == nil {
		return "", fmt.Errorf("no run found with id prefix %q", prefix)
	}

	doc := map[string]interface{}{
		"subject":      "backtest_run",
		"kind":         run.Kind,
		"run_id":       run.RunID,
		"created_at":   run.CreatedAt,
		"dataset_rows": run.DatasetRows,
		"dropped_rows": run.DroppedRows,
	}

	switch run.Kind {
	case "strategy":
		results, err := db.GetStrategyResults(run.RunID)
		if err != nil {
			return "", fmt.Errorf("get strategy results: %w", err)
		}
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].FinalBank > results[j].FinalBank
		})
		if len(results) > 50 {
			doc["results_omitted"] = len(results) - 50
			results = results[:50]
		}

		type entry struct {
			Group          string  `json:"group"`
			Odds           string  `json:"odds"`
			DeltaThreshold int     `json:"delta_threshold"`
			Bets           int     `json:"bets"`
			Wins           int     `json:"wins"`
			Losses         int     `json:"losses"`
			WinPct         float64 `json:"win_pct"`
			FinalBank      int     `json:"final_bank"`
			Profit         int     `json:"profit"`
			TotalStaked    int     `json:"total_staked"`
			ROI            float64 `json:"roi"`
			MaxDrawdown    int     `json:"max_drawdown"`
			MaxStake       int     `json:"max_stake"`
		}
		entries := make([]entry, 0, len(results))
		for _, r := range results {
			entries = append(entries, entry{
				Group:          r.StrategyGroup,
				Odds:           r.OddsCondition,
				DeltaThreshold: r.DeltaThreshold,
				Bets:           r.Bets,
				Wins:           r.Wins,
				Losses:         r.Losses,
				WinPct:         r.WinPct,
				FinalBank:      r.FinalBank,
				Profit:         r.Profit,
				TotalStaked:    r.TotalStaked,
				ROI:            r.ROI,
				MaxDrawdown:    r.MaxDrawdown,
				MaxStake:       r.MaxStake,
			})
		}
		doc["strategies"] = entries

	case "martingale":
		results, err := db.GetMartingaleResults(run.RunID)
		if err != nil {
			return "", fmt.Errorf("get martingale results: %w", err)
		}
		type entry struct {
			OddsCap         float64 `json:"odds_cap"`
			DeltaThreshold  int     `json:"delta_threshold"`
			Trades          int     `json:"trades"`
			Wins            int     `json:"wins"`
			Losses          int     `json:"losses"`
			MaxLosingStreak int     `json:"max_losing_streak"`
			BaseBet         int     `json:"base_bet"`
			FinalBank       int     `json:"final_bank"`
			Bankrupt        bool    `json:"bankrupt"`
		}
		entries := make([]entry, 0, len(results))
		for _, r := range results {
			entries = append(entries, entry{
				OddsCap:         r.OddsCap,
				DeltaThreshold:  r.DeltaThreshold,
				Trades:          r.TotalTrades,
				Wins:            r.Wins,
				Losses:          r.Losses,
				MaxLosingStreak: r.MaxLosingStreak,
				BaseBet:         r.BaseBet,
				FinalBank:       r.FinalBank,
				Bankrupt:        r.Bankrupt,
			})
		}
		doc["combinations"] = entries

	default:
		return "", fmt.Errorf("unknown run kind %q", run.Kind)
	}

	b, err := json.Marshal(doc)
	return string(b), err
}

// buildArchiveContext serialises the archive overview, team records, and
// optionally per-hero aggregates into compact JSON.
func buildArchiveContext(db *storage.DB, matrixPath, heroMapPath string) (string, error) {
	stats, err := db.Stats()
	if err != nil {
		return "", fmt.Errorf("get archive stats: %w", err)
	}
	if stats.Matches == 0 {
		return "", fmt.Errorf("archive is empty; import matches first or pass --run")
	}
	teams, err := db.TeamRecords(15)
	if err != nil {
		return "", fmt.Errorf("get team records: %w", err)
	}

	type teamEntry struct {
		Team    string  `json:"team"`
		Matches int     `json:"matches"`
		Wins    int     `json:"wins"`
		Losses  int     `json:"losses"`
		WinPct  float64 `json:"win_pct"`
	}
	teamEntries := make([]teamEntry, 0, len(teams))
	for _, t := range teams {
		pct := 0.0
		if t.Matches > 0 {
			pct = round2(100 * float64(t.Wins) / float64(t.Matches))
		}
		teamEntries = append(teamEntries, teamEntry{
			Team:    t.Team,
			Matches: t.Matches,
			Wins:    t.Wins,
			Losses:  t.Losses,
			WinPct:  pct,
		})
	}

	doc := map[string]interface{}{
		"subject": "archive",
		"archive": map[string]interface{}{
			"matches":      stats.Matches,
			"player_rows":  stats.PlayerRows,
			"teams":        stats.Teams,
			"first_import": stats.FirstImport,
			"last_import":  stats.LastImport,
		},
		"top_teams": teamEntries,
	}

	if matrixPath != "" && heroMapPath != "" {
		names, aggs, err := foldArchiveHeroes(db, matrixPath, heroMapPath)
		if err != nil {
			return "", err
		}
		type heroEntry struct {
			Hero    string  `json:"hero"`
			Matches int     `json:"matches"`
			Wins    int     `json:"wins"`
			WinPct  float64 `json:"win_pct"`
			AvgGPM  float64 `json:"avg_gpm"`
			AvgXPM  float64 `json:"avg_xpm"`
		}
		heroEntries := make([]heroEntry, 0, len(aggs))
		for i, h := range aggs {
			if h.Matches == 0 {
				continue
			}
			name := fmt.Sprintf("#%d", i)
			if i < len(names) {
				name = names[i]
			}
			heroEntries = append(heroEntries, heroEntry{
				Hero:    name,
				Matches: h.Matches,
				Wins:    h.Wins,
				WinPct:  round2(h.WinRatePct()),
				AvgGPM:  round2(h.GPM.Avg()),
				AvgXPM:  round2(h.XPM.Avg()),
			})
		}
		doc["heroes"] = heroEntries
	}

	b, err := json.Marshal(doc)
	return string(b), err
}

// round2 rounds a float64 to 2 decimal places.
func round2(v float64) float64 {
	// Use integer arithmetic to avoid floating-point drift.
	return float64(int(v*100+0.5)) / 100
}

// callAnthropic streams a response from the Anthropic API and prints it to stdout.
func callAnthropic(ctx context.Context, apiKey, modelID, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)

	fmt.Fprintln(os.Stdout, "\n─── AI Analysis ─────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: analyzeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(os.Stdout, delta.Delta.AsTextDelta().Text)
			}
		}
	}
	fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		// Provide a cleaner error message for common API errors.
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed — check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}
