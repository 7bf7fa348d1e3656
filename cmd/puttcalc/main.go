// puttcalc scores a practice session and lists the achievements it would unlock for a new player
//
// Usage: puttcalc -distance 20 -attempts 10 -makes 7 [-streak 4] [-achievements achievements.json]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/puttlog/puttlog/internal/adapters/achievementfile"
	"github.com/puttlog/puttlog/internal/domain"
)

func run(args []string, out io.Writer) error {
	flags := flag.NewFlagSet("puttcalc", flag.ContinueOnError)
	flags.SetOutput(out)

	distance := flags.Float64("distance", 0, "putting distance in feet")
	attempts := flags.Int("attempts", 0, "number of putts attempted")
	makes := flags.Int("makes", 0, "number of putts made")
	streak := flags.Int("streak", -1, "longest run of consecutive makes, -1 if unknown")
	achievementsFile := flags.String("achievements", "", "JSON file with achievement definitions, defaults to the built-in catalog")

	if err := flags.Parse(args); err != nil {
		return err
	}

	session := domain.PracticeSession{
		DistanceFeet: *distance,
		Attempts:     *attempts,
		Makes:        *makes,
	}
	if *streak >= 0 {
		session.LongestMakeStreak = streak
	}

	points, err := domain.ComputePoints(domain.DefaultScoringConfig(), session)
	if err != nil {
		return err
	}

	definitions := domain.DefaultAchievementDefinitions()
	if *achievementsFile != "" {
		definitions, err = achievementfile.Load(*achievementsFile)
		if err != nil {
			return err
		}
	}

	catalog, skipped, err := domain.BindAchievementCatalog(definitions, domain.DefaultAchievementRules())
	if err != nil {
		return err
	}
	for _, skippedErr := range skipped {
		fmt.Fprintf(out, "warning: %v\n", skippedErr)
	}

	scored := domain.ScoredSession{
		PlayerID: "puttcalc",
		Session:  session,
		Points:   points,
		LoggedAt: time.Now(),
	}
	stats := domain.NewPlayerStats(scored.PlayerID).ApplySession(scored)

	fmt.Fprintf(out, "points: %s (%d)\n", points.StringFixed(2), domain.DisplayPoints(points))
	fmt.Fprintf(out, "accuracy: %s%%\n", session.AccuracyPercent().StringFixed(1))

	unlocked := domain.EvaluateAchievements(
		catalog,
		domain.AchievementSnapshot{Stats: stats, Session: &scored},
		domain.NewAchievementIDSet(),
	)
	if len(unlocked) == 0 {
		fmt.Fprintln(out, "achievements: none")
		return nil
	}
	fmt.Fprintln(out, "achievements:")
	for _, definition := range unlocked {
		fmt.Fprintf(out, "  %s: %s\n", definition.Name, definition.Description)
	}

	return nil
}

func main() {
	err := run(os.Args[1:], os.Stdout)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}
}
