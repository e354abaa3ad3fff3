package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	committeesCmd.AddCommand(committeesMemberCmd)
	rootCmd.AddCommand(committeesCmd)
}

var committeesCmd = &cobra.Command{
	Use:   "committees [id]",
	Short: "Lists committees, or shows the committee with the given id.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			id, err := parseId(args[0])
			if err != nil {
				return err
			}
			committee, err := api.Committees().ByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			renderRecord(committee)
			return nil
		}

		committees, err := api.Committees().List(cmd.Context())
		if err != nil {
			return err
		}
		renderList(
			table.Row{"Id", "Committee"},
			committees,
			"committeeid", "committeetitle",
		)
		return nil
	},
}

var committeesMemberCmd = &cobra.Command{
	Use:   "member <id>",
	Short: "Shows the committees the member with the given id sits on.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseId(args[0])
		if err != nil {
			return err
		}
		committees, err := api.Committees().ByMember(cmd.Context(), id)
		if err != nil {
			return err
		}
		renderRecord(committees)
		return nil
	},
}
