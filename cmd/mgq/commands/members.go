package commands

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(membersCmd)
}

func parseId(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a numeric id", value)
	}
	return id, nil
}

var membersCmd = &cobra.Command{
	Use:   "members [id]",
	Short: "Lists members, or shows the member with the given id.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			id, err := parseId(args[0])
			if err != nil {
				return err
			}
			member, err := api.Members().ByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			renderRecord(member)
			return nil
		}

		members, err := api.Members().List(cmd.Context())
		if err != nil {
			return err
		}
		renderList(
			table.Row{"Id", "Name", "Party"},
			members,
			"memberid", "fullusername", "politicalpartytitle",
		)
		return nil
	},
}
