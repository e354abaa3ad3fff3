package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(wardsCmd)
	rootCmd.AddCommand(wardCmd)
	rootCmd.AddCommand(councillorsCmd)
}

var wardsCmd = &cobra.Command{
	Use:   "wards",
	Short: "Lists the wards of the site.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		wards, err := api.Wards().List(cmd.Context())
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Ward"})
		for _, ward := range wards {
			t.AppendRow(table.Row{ward})
		}
		t.Render()
		return nil
	},
}

var wardCmd = &cobra.Command{
	Use:   "ward <title>",
	Short: "Shows the councillors of the ward closest to the given title.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ward, ok, err := api.Wards().Find(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("No result found")
			return nil
		}

		councillors, _ := ward.Lookup("councillors", "councillor")
		fmt.Println(ward.Field("wardtitle"))
		renderList(
			table.Row{"Id", "Name", "Party"},
			councillors.List(),
			"councillorid", "fullusername", "politicalpartytitle",
		)
		return nil
	},
}

var councillorsCmd = &cobra.Command{
	Use:   "councillors",
	Short: "Lists the councillors of every ward.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		councillors, err := api.Councillors().List(cmd.Context())
		if err != nil {
			return err
		}
		renderList(
			table.Row{"Id", "Name", "Party"},
			councillors,
			"councillorid", "fullusername", "politicalpartytitle",
		)
		return nil
	},
}
