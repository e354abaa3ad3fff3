package commands

import (
	"fmt"

	"moderngov/lib/platforms/moderngov"
	"moderngov/lib/platforms/moderngov/xmltree"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var committeeFlag int64

func init() {
	meetingsCmd.Flags().Int64Var(&committeeFlag, "committee", 0, "only list the meetings of this committee")
	rootCmd.AddCommand(meetingsCmd)
	rootCmd.AddCommand(meetingCmd)
}

var meetingsCmd = &cobra.Command{
	Use:   "meetings",
	Short: "Lists meetings ordered by date.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if committeeFlag != 0 {
			committees, err := api.Meetings().ByCommitteeID(cmd.Context(), committeeFlag)
			if err != nil {
				return err
			}
			for _, committee := range committees {
				meetings, _ := committee.Lookup("committeemeetings", "meeting")
				fmt.Println(committee.Field("committeetitle"))
				renderList(
					table.Row{"Id", "Date", "Time", "Status"},
					meetings.List(),
					"meetingid", "meetingdate", "meetingtime", "meetingstatus",
				)
			}
			return nil
		}

		schedule, err := api.Meetings().Schedule(cmd.Context())
		if err != nil {
			return err
		}
		t := newTable()
		t.AppendHeader(table.Row{"Id", "Date", "Time", "Committee", "Status"})
		for _, scheduled := range schedule {
			meeting := scheduled.Meeting
			t.AppendRow(table.Row{
				meeting.Field("meetingid"),
				meeting.Field("meetingdate"),
				meeting.Field("meetingtime"),
				scheduled.CommitteeTitle,
				meeting.Field("meetingstatus"),
			})
		}
		t.Render()
		return nil
	},
}

var meetingCmd = &cobra.Command{
	Use:   "meeting <id>",
	Short: "Shows a meeting with its agenda and attendees.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseId(args[0])
		if err != nil {
			return err
		}
		meeting, err := api.Meetings().ByMeetingID(cmd.Context(), id)
		if err != nil {
			return err
		}
		if meeting.Len() == 0 {
			fmt.Println("No result found")
			return nil
		}

		details := newTable()
		details.AppendHeader(table.Row{"Field", "Value"})
		for _, field := range []struct{ label, key string }{
			{"Meeting", "meetingid"},
			{"Date", "meetingdate"},
			{"Time", "meetingtime"},
			{"Status", "meetingstatus"},
			{"Location", "meetinglocation"},
			{"Agenda id", "agendaid"},
			{"Agenda published", "agendapublished"},
			{"Decisions published", "decisionpublished"},
			{"Minutes published", "minutepublished"},
		} {
			details.AppendRow(table.Row{field.label, meeting.Field(field.key)})
		}
		details.Render()

		renderAgenda(moderngov.AgendaItems(meeting))
		renderList(
			table.Row{"Member", "Name", "Attendance"},
			moderngov.Attendees(meeting),
			"@memberid", "@name", "@attendance",
		)
		return nil
	},
}

func renderAgenda(items []xmltree.Node) {
	if len(items) == 0 {
		fmt.Println("Agenda: none found")
		return
	}
	renderList(table.Row{"Item", "Title"}, items, "agendaitemid", "agendaitemtitle")
}
