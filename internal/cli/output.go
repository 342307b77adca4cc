package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/eshaffer321/tuition-reconciler/internal/domain/reconcile"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/storage"
)

// PrintHeader prints the application header
func PrintHeader(w io.Writer, source string, dryRun bool) {
	mode := "SAVE"
	if dryRun {
		mode = "DRY-RUN"
	}
	fmt.Fprintf(w, "reconciler: %s (%s mode)\n", source, mode)
}

// PrintRun prints a run's outcomes as a table followed by a summary line
func PrintRun(w io.Writer, run *storage.Run) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tTYPE\tSTUDENTS\tAMOUNT\tREASON\tSOURCE")
	for _, o := range run.Outcomes {
		r := o.Record
		amount := ""
		if r.Amount != 0 {
			amount = FormatWon(r.Amount)
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			o.Seq,
			r.Type,
			formatIDs(r.StudentIDs),
			amount,
			r.Reason,
			shorten(r.SourceFragment, 40),
		)
	}
	_ = tw.Flush()

	PrintRunSummary(w, run)
}

// PrintRunSummary prints the outcome counts of a run
func PrintRunSummary(w io.Writer, run *storage.Run) {
	counts := make(map[reconcile.Kind]int)
	for _, o := range run.Outcomes {
		counts[o.Record.Type]++
	}

	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Summary: Matched=%d Unmatched=%d Anomalies=%d Roster=%d\n",
		run.MatchedCount,
		counts[reconcile.KindUnmatched],
		counts[reconcile.KindParseAnomaly],
		run.RosterSize)
	if run.ID != "" {
		fmt.Fprintf(w, "Run: %s\n", run.ID)
	}
}

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintStudents prints the roster as a table
func PrintStudents(w io.Writer, students []*storage.Student) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tBASE FEE\tBOOK FEE\tNOTES")
	for _, s := range students {
		book := ""
		if s.BookFee > 0 {
			book = FormatWon(s.BookFee)
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.Name, FormatWon(s.BaseFee), book, s.Notes)
	}
	_ = tw.Flush()
}

// PrintRuns prints run summaries as a table
func PrintRuns(w io.Writer, runs []storage.RunSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSOURCE\tCREATED\tOUTCOMES\tMATCHED\tROSTER")
	for _, r := range runs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
			shortID(r.ID),
			r.Source,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.OutcomeCount,
			r.MatchedCount,
			r.RosterSize,
		)
	}
	_ = tw.Flush()
}

// FormatWon renders an amount with thousands separators, e.g. "250,000원"
func FormatWon(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteString("원")
	return b.String()
}

func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
