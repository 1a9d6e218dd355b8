// Package pipeline drives the batch run: download the agenda exports,
// parse them into activities, and write the calendar and day-summary
// artifacts. Sources are processed one at a time; a failing source is
// reported and the batch moves on.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"agendacal/internal/agenda"
	"agendacal/internal/config"
	"agendacal/internal/fetch"
	"agendacal/internal/ical"
	appLog "agendacal/internal/log"
	"agendacal/internal/model"
	"agendacal/internal/portal"
	"agendacal/internal/summary"
)

// Report summarizes one conversion run.
type Report struct {
	SourcesProcessed int
	SourceErrors     []error
	Activities       int
	CalendarsWritten int
	SummariesWritten int
	Diagnostics      agenda.Diagnostics
}

// Runner executes download and conversion runs against one configuration.
type Runner struct {
	cfg *config.Config
	loc *time.Location

	// now is swappable for tests.
	now func() time.Time
}

// New creates a Runner. The configured timezone must resolve; timed events
// and the summary horizon both depend on it.
func New(cfg *config.Config) (*Runner, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("pipeline: bad timezone %q: %w", cfg.Timezone, err)
	}
	return &Runner{cfg: cfg, loc: loc, now: time.Now}, nil
}

// Download discovers the agenda export links on the portal and stores each
// export under the collection directory it belongs to. Per-source fetch
// failures are logged and skipped.
func (r *Runner) Download(ctx context.Context) error {
	sources, err := portal.Discover(ctx, r.cfg.PortalURL)
	if err != nil {
		return err
	}
	appLog.Info("portal discovery completed", "source_count", len(sources))

	fetcher := fetch.NewFetcher(r.cfg.CacheDir())
	results, errs := fetcher.FetchAll(ctx, sources)
	for _, e := range errs {
		appLog.Error("source download failed", e)
	}

	for _, res := range results {
		dir := r.cfg.SourceDir(res.Source.Active)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		name := res.Source.ID
		if !strings.HasSuffix(name, ".csv") {
			name += ".csv"
		}
		if err := writeFileAtomic(filepath.Join(dir, name), res.Body, 0o644); err != nil {
			appLog.Error("source store failed", err, "id", res.Source.ID)
			continue
		}
		appLog.Info("source stored", "id", res.Source.ID, "active", res.Source.Active, "from_cache", res.FromCache)
	}

	return nil
}

// Convert reads every stored export, builds activities, writes one calendar
// per source that yields events, and regenerates the day summaries for the
// configured trailing horizon. Unreadable sources are surfaced in the
// report without aborting the batch.
func (r *Runner) Convert(ctx context.Context) (*Report, error) {
	report := &Report{}
	var all []model.Activity

	for _, active := range []bool{true, false} {
		status := model.StatusActive
		if !active {
			status = model.StatusInactive
		}

		acts, err := r.convertCollection(active, status, report)
		if err != nil {
			return nil, err
		}
		all = append(all, acts...)
	}

	report.Activities = len(all)

	if err := r.writeSummaries(all, report); err != nil {
		return nil, err
	}

	appLog.Info("conversion completed",
		"sources", report.SourcesProcessed,
		"source_errors", len(report.SourceErrors),
		"activities", report.Activities,
		"calendars", report.CalendarsWritten,
		"summaries", report.SummariesWritten,
		"rows_skipped", len(report.Diagnostics.Skipped),
	)
	return report, nil
}

// RunOnce performs a full download-and-convert cycle. Download failures do
// not stop conversion of whatever is already on disk.
func (r *Runner) RunOnce(ctx context.Context) (*Report, error) {
	if err := r.Download(ctx); err != nil {
		appLog.Error("download phase failed; converting existing exports", err)
	}
	return r.Convert(ctx)
}

func (r *Runner) convertCollection(active bool, status model.Status, report *Report) ([]model.Activity, error) {
	dir := r.cfg.SourceDir(active)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	emitter := ical.NewEmitter(r.loc, time.Duration(r.cfg.EventDurationMinutes)*time.Minute)

	var all []model.Activity
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		content, err := os.ReadFile(path)
		if err != nil {
			// Unreadable source: surfaced per source, batch continues.
			report.SourceErrors = append(report.SourceErrors, fmt.Errorf("read %s: %w", path, err))
			appLog.Error("source unreadable", err, "path", path)
			continue
		}
		report.SourcesProcessed++

		_, rows := agenda.ParseContent(string(content))
		acts := agenda.BuildActivities(rows, path, status, &report.Diagnostics)
		all = append(all, acts...)

		if err := r.writeCalendar(emitter, acts, entry.Name(), active, report); err != nil {
			return nil, err
		}
	}

	return all, nil
}

func (r *Runner) writeCalendar(emitter *ical.Emitter, acts []model.Activity, sourceName string, active bool, report *Report) error {
	cal, count := emitter.Emit(acts, sourceName)
	if count == 0 {
		// No events: no artifact at all for this source.
		appLog.Warn("no events produced", "source", sourceName)
		return nil
	}

	dir := r.cfg.CalendarDir(active)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := strings.TrimSuffix(sourceName, ".csv") + ".ics"
	if err := writeFileAtomic(filepath.Join(dir, name), []byte(cal.Serialize()), 0o644); err != nil {
		return err
	}

	report.CalendarsWritten++
	appLog.Info("calendar written", "source", sourceName, "events", count)
	return nil
}

func (r *Runner) writeSummaries(all []model.Activity, report *Report) error {
	dir := r.cfg.SummaryDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	today := r.now().In(r.loc)
	for i := 0; i < r.cfg.SummaryDays; i++ {
		day := today.AddDate(0, 0, -i)

		s := summary.ForDay(all, day)
		if s == nil {
			// Days without activities produce no document.
			continue
		}

		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		base := filepath.Join(dir, s.Date)
		if err := writeFileAtomic(base+".json", data, 0o644); err != nil {
			return err
		}
		if err := writeFileAtomic(base+".md", []byte(summary.Markdown(all, day)), 0o644); err != nil {
			return err
		}
		report.SummariesWritten++
	}

	return nil
}

// writeFileAtomic writes via a temp file + rename so readers never observe
// a partial artifact.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".agendacal-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
