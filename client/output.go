package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Mohammad-Mahdi82/NexusCafe/pkg/cafepb"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/billing"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
)

func printTables(w io.Writer, list []models.TableSession, now time.Time) error {
	entries := make([]cafepb.BillingEntry, len(list))
	for i, t := range list {
		entries[i] = cafepb.BillingEntry{Table: t, Projection: billing.Project(t, now)}
	}
	return printEntries(w, entries, now)
}

func printFrame(w io.Writer, frame cafepb.BillingFrame) error {
	return printEntries(w, frame.Entries, time.UnixMilli(frame.At))
}

func printEntries(w io.Writer, entries []cafepb.BillingEntry, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tSTATUS\tTIER\tELAPSED\tBILL\tITEMS\tCREDIT\tSTARTED")
	for _, e := range entries {
		t := e.Table
		tier := "-"
		if t.GamingConfig != nil {
			tier = fmt.Sprintf("%s x%d @ %s", t.GamingConfig.PSModel, t.GamingConfig.ControllerCount,
				billing.FormatMoney(t.GamingConfig.HourlyRate))
		}
		credit := "-"
		if t.TransferredAmount != nil {
			credit = billing.FormatMoney(*t.TransferredAmount)
		}
		started := "-"
		if t.StartTime != nil {
			started = humanize.RelTime(time.UnixMilli(*t.StartTime), now, "ago", "from now")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			t.Label(), t.Status, tier,
			billing.FormatDuration(e.Projection.Elapsed), billing.FormatMoney(e.Projection.Price),
			len(t.OrderedProducts), credit, started)
	}
	return tw.Flush()
}
