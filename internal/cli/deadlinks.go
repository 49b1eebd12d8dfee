package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmtidy/internal/deadlink"
	"github.com/nikbrunner/bmtidy/internal/review"
	"github.com/nikbrunner/bmtidy/internal/tree"
)

func newDeadlinksCommand() *cobra.Command {
	var removeAll, interactive bool
	var groupBy string

	cmd := &cobra.Command{
		Use:   "deadlinks",
		Short: "Probe every bookmark and report dead links",
		Long: `Probe every http(s) bookmark with a single GET request and report the
ones that look dead: 404s, other error statuses, timeouts and network
failures. Local and private addresses are skipped.

The report groups dead links by hostname, or by registrable domain with
--group-by domain (docs.example.com and www.example.com both count as
example.com).

Press Ctrl-C once to stop after the current batch and see the results so
far; press it again to abort immediately.`,
		Example: `  bmtidy deadlinks
  bmtidy deadlinks --batch-size 50 --timeout 5s
  bmtidy deadlinks --exclude-domains intranet.example,example.org --review
  bmtidy deadlinks --group-by domain`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			grouping, err := deadlink.ParseGrouping(groupBy)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			out := cmd.OutOrStdout()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.Close(); err == nil {
					err = cerr
				}
			}()

			snap, err := a.snapshot(ctx)
			if err != nil {
				return err
			}

			prober := deadlink.NewProber(a.cfg.Timeout, a.logger)
			scanner := deadlink.NewScanner(prober, a.cfg.BatchSize, a.logger)
			scanner.ExcludeDomains = a.cfg.ExcludeDomains

			session := deadlink.NewSession()
			stopSignals := handleInterrupts(cmd.ErrOrStderr(), session, cancel)
			defer stopSignals()

			bar := newProgressWriter(cmd.ErrOrStderr())
			fmt.Fprintf(cmd.ErrOrStderr(), "Checking %d bookmarks...\n", len(snap.Bookmarks))
			started := time.Now()
			report := scanner.Scan(ctx, session, snap.Bookmarks, bar.update)
			bar.done()

			a.logger.Debug("scan finished", "duration", time.Since(started), "checked", report.Checked, "skipped", report.Skipped)
			printDeadLinkReport(out, snap, report, grouping)

			if len(report.Results) == 0 || ctx.Err() != nil {
				return nil
			}

			var ids []string
			switch {
			case removeAll:
				ids = deadlink.IDs(report.Results)
			case interactive:
				var items []review.Item
				for _, g := range deadlink.GroupResults(report.Results, grouping) {
					for _, r := range g.Results {
						items = append(items, review.Item{
							ID:     r.Bookmark.ID,
							Title:  r.Bookmark.Title,
							URL:    r.Bookmark.URL,
							Detail: r.Reason + " · " + snap.Path(r.Bookmark),
							Group:  g.Name,
						})
					}
				}
				selected, err := runReview(items, review.Options{Title: "Remove dead links", Multi: true})
				if err != nil {
					return err
				}
				for _, it := range selected {
					ids = append(ids, it.ID)
				}
			default:
				return nil
			}

			removed := a.removeAll(ctx, ids)
			fmt.Fprintf(out, "Removed %d dead bookmarks.\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&removeAll, "remove-all", false, "remove every dead link found")
	cmd.Flags().BoolVar(&interactive, "review", false, "choose which dead links to remove")
	cmd.Flags().Int("batch-size", deadlink.DefaultBatchSize, "number of concurrent probes per batch")
	cmd.Flags().Duration("timeout", deadlink.DefaultTimeout, "per-request timeout")
	cmd.Flags().StringSlice("exclude-domains", nil, "domains that are never probed")
	cmd.Flags().StringVar(&groupBy, "group-by", deadlink.ByHost.String(), "group the report by host or domain")
	cmd.MarkFlagsMutuallyExclusive("remove-all", "review")

	return cmd
}

// handleInterrupts maps the first interrupt to a graceful session stop and
// the second to cancel.
func handleInterrupts(w io.Writer, session *deadlink.Session, cancel context.CancelFunc) (stop func()) {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		count := 0
		for {
			select {
			case <-done:
				return
			case <-sigChan:
				count++
				if count == 1 {
					fmt.Fprintln(w, "\nStopping after the current batch (press Ctrl-C again to abort)...")
					session.Cancel()
					continue
				}
				cancel()
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}

// progressWriter renders scan progress as a single redrawn line.
type progressWriter struct {
	w       io.Writer
	bar     progress.Model
	started bool
}

func newProgressWriter(w io.Writer) *progressWriter {
	return &progressWriter{
		w:   w,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (p *progressWriter) update(batch, totalBatches, percent int) {
	p.started = true
	fmt.Fprintf(p.w, "\r%s batch %d/%d", p.bar.ViewAs(float64(percent)/100), batch, totalBatches)
}

func (p *progressWriter) done() {
	if p.started {
		fmt.Fprintln(p.w)
	}
}

func printDeadLinkReport(w io.Writer, snap tree.Snapshot, report deadlink.Report, by deadlink.Grouping) {
	if report.Stopped {
		fmt.Fprintln(w, "Scan stopped early; showing results of completed batches.")
	}
	fmt.Fprintf(w, "Checked %d bookmarks, skipped %d, found %d dead links.\n",
		report.Checked, report.Skipped, len(report.Results))

	for _, g := range deadlink.GroupResults(report.Results, by) {
		fmt.Fprintf(w, "\n%s (%d)\n", g.Name, len(g.Results))
		for _, r := range g.Results {
			fmt.Fprintf(w, "  - %s [%s]\n", r.Bookmark.Title, snap.Path(r.Bookmark))
			fmt.Fprintf(w, "    %s\n", r.Bookmark.URL)
			fmt.Fprintf(w, "    %s\n", r.Reason)
		}
	}
}
