package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aldric/regent/internal/engine"
	"github.com/aldric/regent/internal/realm"
	"github.com/aldric/regent/internal/rules"
)

func newCmd() *cobra.Command {
	var difficulty string
	cmd := &cobra.Command{
		Use:   "new <kingdom-name>",
		Short: "Start a new game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return fatal(err)
			}
			defer a.Close()

			k, err := a.orch.NewGame(cmd.Context(), a.cfg.Owner, args[0], realm.ParseDifficulty(strings.ToUpper(difficulty)))
			if err != nil {
				return fatal(err)
			}

			color.New(color.FgGreen, color.Bold).Printf("Long live the ruler of %s!\n", k.Name)
			fmt.Printf("Kingdom id: %s (difficulty %s)\n\n", k.ID, k.Difficulty)
			printStats(k)
			return nil
		},
	}
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "EASY, NORMAL or HARD (default from config)")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [kingdom-id]",
		Short: "Show the state of the realm",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return fatal(err)
			}
			defer a.Close()

			k, err := resolveKingdom(cmd.Context(), a, args)
			if err != nil {
				return fatal(err)
			}

			printStats(k)
			if k.Phase == realm.PhaseEventPending {
				event, err := a.orch.PendingEvent(cmd.Context(), k.ID)
				if err == nil {
					fmt.Println()
					printEvent(event)
				}
			}
			return nil
		},
	}
}

func turnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "turn [kingdom-id]",
		Short: "End the current turn",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return fatal(err)
			}
			defer a.Close()

			k, err := resolveKingdom(cmd.Context(), a, args)
			if err != nil {
				return fatal(err)
			}

			result, err := a.orch.EndTurn(cmd.Context(), k.ID)
			if err != nil {
				return fatal(err)
			}
			printTurnResult(result)
			return nil
		},
	}
}

func eventCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "event [kingdom-id] <choice-number>",
		Short: "Resolve the pending event",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return fatal(err)
			}
			defer a.Close()

			choiceArg := args[len(args)-1]
			k, err := resolveKingdom(cmd.Context(), a, args[:len(args)-1])
			if err != nil {
				return fatal(err)
			}

			n, err := strconv.Atoi(choiceArg)
			if err != nil || n < 1 {
				return fatal(fmt.Errorf("choice must be a number starting at 1"))
			}

			result, err := a.orch.ResolveEvent(cmd.Context(), k.ID, n-1)
			if err != nil {
				return fatal(err)
			}
			printEventResult(result)
			return nil
		},
	}
}

func playCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play [kingdom-id]",
		Short: "Play interactively turn by turn",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return fatal(err)
			}
			defer a.Close()

			k, err := resolveKingdom(cmd.Context(), a, args)
			if err != nil {
				return fatal(err)
			}
			return playLoop(cmd.Context(), a, k.ID)
		},
	}
}

// playLoop alternates end-turn and event resolution until the game
// ends or the player quits.
func playLoop(ctx context.Context, a *app, kingdomID string) error {
	reader := bufio.NewReader(os.Stdin)

	for {
		k, err := a.orch.Kingdom(ctx, kingdomID)
		if err != nil {
			return fatal(err)
		}

		switch k.Phase {
		case realm.PhaseGameOver:
			color.New(color.FgYellow, color.Bold).Println("The game is over.")
			return nil

		case realm.PhaseEventPending:
			event, err := a.orch.PendingEvent(ctx, k.ID)
			if err != nil {
				return fatal(err)
			}
			printEvent(event)

			fmt.Print("Your decision (number, q to quit): ")
			line, _ := reader.ReadString('\n')
			line = strings.TrimSpace(line)
			if line == "q" {
				return nil
			}
			n, err := strconv.Atoi(line)
			if err != nil || n < 1 || n > len(event.Choices) {
				color.Yellow("Pick a number between 1 and %d.", len(event.Choices))
				continue
			}

			result, err := a.orch.ResolveEvent(ctx, k.ID, n-1)
			if err != nil {
				return fatal(err)
			}
			printEventResult(result)

		default:
			printStats(k)
			fmt.Print("Press enter to end the turn (q to quit): ")
			line, _ := reader.ReadString('\n')
			if strings.TrimSpace(line) == "q" {
				return nil
			}

			result, err := a.orch.EndTurn(ctx, k.ID)
			if err != nil {
				return fatal(err)
			}
			printTurnResult(result)
		}
	}
}

func chronicleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chronicle [kingdom-id]",
		Short: "Read the court historian's account of your reign",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return fatal(err)
			}
			defer a.Close()

			k, err := resolveKingdom(cmd.Context(), a, args)
			if err != nil {
				return fatal(err)
			}
			chronicle, err := a.orch.Chronicle(cmd.Context(), k.ID)
			if err != nil {
				return fatal(err)
			}

			color.New(color.FgCyan, color.Bold).Printf("The Chronicle of %s, turn %d\n\n", k.Name, chronicle.Turn)
			fmt.Println(chronicle.Content)
			return nil
		},
	}
}

// resolveKingdom picks the kingdom from args or falls back to the
// configured owner's most recent game.
func resolveKingdom(ctx context.Context, a *app, args []string) (*realm.Kingdom, error) {
	if len(args) > 0 && args[0] != "" {
		return a.orch.Kingdom(ctx, args[0])
	}

	kingdoms, err := a.orch.Kingdoms(ctx, a.cfg.Owner)
	if err != nil {
		return nil, err
	}
	if len(kingdoms) == 0 {
		return nil, fmt.Errorf("no kingdom found for %s; start one with `regent new`", a.cfg.Owner)
	}
	return kingdoms[0], nil
}

func printStats(k *realm.Kingdom) {
	title := color.New(color.FgCyan, color.Bold)
	title.Printf("%s — turn %d (%s)\n", k.Name, k.Turn, k.Difficulty)

	stat := func(name string, value, prev int, formatted string) {
		arrow := " "
		switch {
		case value > prev:
			arrow = color.GreenString("▲")
		case value < prev:
			arrow = color.RedString("▼")
		}
		fmt.Printf("  %-12s %8s %s\n", name, formatted, arrow)
	}

	stat("Population", k.Stats.Population, k.Previous.Population, humanize.Comma(int64(k.Stats.Population)))
	stat("Economy", k.Stats.Economy, k.Previous.Economy, fmt.Sprintf("%d/100", k.Stats.Economy))
	stat("Military", k.Stats.Military, k.Previous.Military, fmt.Sprintf("%d/100", k.Stats.Military))
	stat("Happiness", k.Stats.Happiness, k.Previous.Happiness, fmt.Sprintf("%d/100", k.Stats.Happiness))
}

func printNotifications(notes []realm.Notification) {
	for _, n := range notes {
		switch n.Type {
		case realm.NotifyCritical, realm.NotifyError:
			color.Red("  ! %s", n.Message)
		case realm.NotifyWarning:
			color.Yellow("  ~ %s", n.Message)
		case realm.NotifySuccess:
			color.Green("  + %s", n.Message)
		default:
			fmt.Printf("  · %s\n", n.Message)
		}
	}
}

func printEvent(e *realm.Event) {
	color.New(color.FgMagenta, color.Bold).Printf("%s\n", e.Title)
	fmt.Println(e.Description)
	for i, c := range e.Choices {
		fmt.Printf("  %d) %s\n", i+1, c.Text)
	}
}

func printTurnResult(r *engine.TurnResult) {
	fmt.Printf("\nTurn %d complete.\n", r.Before.Turn)
	printNotifications(r.Notifications)

	if r.Outcome.GameOver {
		printOutcome(r.Outcome)
		return
	}
	if r.Event != nil {
		fmt.Println()
		printEvent(r.Event)
	}
}

func printEventResult(r *engine.EventResult) {
	fmt.Printf("You chose: %s\n", r.Choice.Text)

	if r.ChainSummary != nil {
		color.New(color.FgMagenta).Printf("The %s storyline has concluded after %d chapters.\n",
			strings.ToLower(r.ChainSummary.Type), r.ChainSummary.Steps)
	}
	if r.Outcome.GameOver {
		printOutcome(r.Outcome)
		return
	}
	if r.NextEvent != nil {
		fmt.Println()
		printEvent(r.NextEvent)
	}
}

func printOutcome(o rules.Outcome) {
	fmt.Println()
	if o.Victory {
		color.New(color.FgGreen, color.Bold).Printf("VICTORY — %s\n", o.Type)
	} else {
		color.New(color.FgRed, color.Bold).Println("DEFEAT")
	}
	fmt.Println(o.Reason)
}
