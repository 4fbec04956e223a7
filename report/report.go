// Package report formats simulation and roster output for human and
// machine consumption: a text summary, JSON, and the per-run
// log_<ddMMHHmmss>.csv hourly metrics file the source produces.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"edsim/models"
)

// CSVHeader is the fixed hourly-metrics header. Columns beyond the fifth
// are treatment-time and wait-time accumulators, optional per the source.
var CSVHeader = []string{
	"Hour", "Arrivals", "Waiting", "Treating", "Available Rooms",
	"TotalTreatmentSecs", "AvgTreatmentSecs", "TotalWaitSecs", "AvgWaitSecs", "TotalArrivalsCum",
}

// FileName returns the log_<ddMMHHmmss>.csv name for timestamp stamp,
// formatted "0301142530" style (day, month, hour, minute, second) per the
// source's file-naming convention. Callers format stamp themselves
// (report never calls time.Now, since Date()/Now() are disallowed in
// deterministic contexts); this just applies the fixed prefix/suffix.
func FileName(stamp string) string {
	return fmt.Sprintf("log_%s.csv", stamp)
}

// FormatCSV renders one cycle's hourly metrics rows as CSV text, in the
// exact column order of CSVHeader.
func FormatCSV(hourly []models.HourlyMetrics) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	w.Write(CSVHeader)
	for _, h := range hourly {
		w.Write([]string{
			fmt.Sprintf("%d", h.HourIndex),
			fmt.Sprintf("%d", h.ArrivalsThisHour),
			fmt.Sprintf("%d", h.WaitingSize),
			fmt.Sprintf("%d", h.TreatingSize),
			fmt.Sprintf("%d", h.AvailableRooms),
			fmt.Sprintf("%.2f", h.TotalTreatmentSecs),
			fmt.Sprintf("%.2f", h.AvgTreatmentSecs),
			fmt.Sprintf("%.2f", h.TotalWaitSecs),
			fmt.Sprintf("%.2f", h.AvgWaitSecs),
			fmt.Sprintf("%d", h.TotalArrivalsCum),
		})
	}
	w.Flush()
	return sb.String()
}

// FormatJSON renders one cycle's hourly metrics as an indented JSON array.
func FormatJSON(hourly []models.HourlyMetrics) string {
	b, _ := json.MarshalIndent(hourly, "", "  ")
	return string(b)
}

// FormatText renders one cycle's hourly metrics as a compact human-readable
// summary, one line per hour.
func FormatText(hourly []models.HourlyMetrics) string {
	var sb strings.Builder
	for _, h := range hourly {
		sb.WriteString(fmt.Sprintf(
			"hour %02d : arrivals=%d waiting=%d treating=%d rooms_free=%d avg_wait=%.1fs\n",
			h.HourIndex, h.ArrivalsThisHour, h.WaitingSize, h.TreatingSize, h.AvailableRooms, h.AvgWaitSecs,
		))
	}
	return sb.String()
}

// FormatScheduleText renders one class's solved roster as a per-staff,
// per-day text grid.
func FormatScheduleText(sched models.Schedule) string {
	var sb strings.Builder
	if !sched.Feasible {
		sb.WriteString("infeasible\n")
		return sb.String()
	}

	staffIDs := make([]string, 0, len(sched.Assignments))
	for id := range sched.Assignments {
		staffIDs = append(staffIDs, id)
	}
	sort.Strings(staffIDs)

	for _, id := range staffIDs {
		days := sched.Assignments[id]
		dayNums := make([]int, 0, len(days))
		for d := range days {
			dayNums = append(dayNums, d)
		}
		sort.Ints(dayNums)

		var parts []string
		for _, d := range dayNums {
			parts = append(parts, fmt.Sprintf("d%d=%s", d, days[d]))
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", id, strings.Join(parts, ", ")))
	}
	cost := decimal.NewFromFloat(sched.TotalCost).Round(2)
	sb.WriteString(fmt.Sprintf("total cost: %s\n", cost.StringFixed(2)))
	return sb.String()
}
