package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/aldric/regent/internal/realm"
)

func resourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resources [kingdom-id]",
		Short: "Show the kingdom's stockpiles",
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
			views, err := a.orch.Resources(cmd.Context(), k.ID)
			if err != nil {
				return fatal(err)
			}

			table := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"Resource", "Qty", "Net/Turn", "Storage", "Workers", "Quality", "Value", "Status"}),
			)
			for _, v := range views {
				net := strconv.Itoa(v.NetChange)
				if v.NetChange > 0 {
					net = "+" + net
				}
				_ = table.Append([]string{
					v.Name,
					humanize.Comma(int64(v.Quantity)),
					net,
					fmt.Sprintf("%d%%", v.StoragePct),
					strconv.Itoa(v.WorkerAllocation),
					fmt.Sprintf("L%d", v.QualityLevel),
					fmt.Sprintf("%.2f", v.MarketValue),
					statusString(v.Status),
				})
			}
			_ = table.Render()

			fmt.Println("\nResource ids:")
			for _, v := range views {
				fmt.Printf("  %-20s %s\n", v.Name, v.ID)
			}
			return nil
		},
	}
}

func statusString(s realm.ResourceStatus) string {
	switch s {
	case realm.StatusCritical:
		return color.RedString(string(s))
	case realm.StatusWarning:
		return color.YellowString(string(s))
	case realm.StatusSurplus:
		return color.GreenString(string(s))
	default:
		return string(s)
	}
}

func trendCmd() *cobra.Command {
	var turns int
	cmd := &cobra.Command{
		Use:   "trend <resource-id>",
		Short: "Project a resource's trajectory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return fatal(err)
			}
			defer a.Close()

			points, err := a.orch.Trend(cmd.Context(), args[0], turns)
			if err != nil {
				return fatal(err)
			}

			table := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"Turn", "Quantity", "Status"}),
			)
			for _, p := range points {
				_ = table.Append([]string{
					strconv.Itoa(p.Turn),
					humanize.Comma(int64(p.Quantity)),
					statusString(p.Status),
				})
			}
			_ = table.Render()
			return nil
		},
	}
	cmd.Flags().IntVarP(&turns, "turns", "t", 5, "turns to project")
	return cmd
}

func allocateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "allocate <kingdom-id> <resource-id> <workers>",
		Short: "Assign workers to a resource",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return fatal(err)
			}
			defer a.Close()

			workers, err := strconv.Atoi(args[2])
			if err != nil {
				return fatal(fmt.Errorf("workers must be a number"))
			}

			r, err := a.orch.AllocateWorkers(cmd.Context(), args[0], args[1], workers)
			if err != nil {
				return fatal(err)
			}
			color.Green("%d workers now tend the %s.", r.WorkerAllocation, r.Name)
			fmt.Println("New rates take effect next turn.")
			return nil
		},
	}
}

func upgradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade <kingdom-id> <resource-id>",
		Short: "Raise a resource's quality tier (costs gold)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return fatal(err)
			}
			defer a.Close()

			r, err := a.orch.UpgradeResource(cmd.Context(), args[0], args[1])
			if err != nil {
				return fatal(err)
			}
			color.Green("%s upgraded to quality level %d.", r.Name, r.QualityLevel)
			fmt.Printf("Storage capacity is now %s.\n", humanize.Comma(int64(r.MaxStorage)))
			return nil
		},
	}
}
