package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/toolwear/internal/domain/models"
	"github.com/mamadbah2/toolwear/pkg/clients/notify"
)

type fakeReporting struct {
	digest      string
	digestErr   error
	exported    bool
	exportErr   error
	digestRefs  []time.Time
	exportMonth []models.MonthYear
}

func (f *fakeReporting) AlertDigest(_ context.Context, ref time.Time) (string, error) {
	f.digestRefs = append(f.digestRefs, ref)
	return f.digest, f.digestErr
}

func (f *fakeReporting) ExportMonth(_ context.Context, month models.MonthYear) (bool, error) {
	f.exportMonth = append(f.exportMonth, month)
	return f.exported, f.exportErr
}

type fakeNotifier struct {
	sent []notify.Message
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, msg notify.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

var brt = time.FixedZone("BRT", -3*60*60)

func TestSendAlertDigest(t *testing.T) {
	rep := &fakeReporting{digest: "Em alerta: 2"}
	notifier := &fakeNotifier{}
	s := NewScheduler(Options{Location: brt}, rep, notifier, nil)
	s.now = func() time.Time { return time.Date(2025, time.August, 21, 10, 0, 0, 0, time.UTC) }

	s.sendAlertDigest()

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "Em alerta: 2", notifier.sent[0].Text)
	require.Len(t, rep.digestRefs, 1)
	assert.Equal(t, brt, rep.digestRefs[0].Location())
}

func TestSendAlertDigestSkipsNotifyOnError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	rep := &fakeReporting{digestErr: errors.New("store down")}
	notifier := &fakeNotifier{}
	s := NewScheduler(Options{Location: brt}, rep, notifier, zap.New(core))

	s.sendAlertDigest()

	assert.Empty(t, notifier.sent)
	assert.Equal(t, 1, logs.FilterMessage("failed to generate alert digest").Len())
}

func TestExportPreviousMonth(t *testing.T) {
	rep := &fakeReporting{exported: true}
	s := NewScheduler(Options{Location: brt}, rep, nil, nil)
	// 01/09 01:00 UTC is still 31/08 in BRT, so the previous month is July.
	s.now = func() time.Time { return time.Date(2025, time.September, 1, 1, 0, 0, 0, time.UTC) }

	s.exportPreviousMonth()

	assert.Equal(t, []models.MonthYear{{Year: 2025, Month: time.July}}, rep.exportMonth)
}

func TestExportPreviousMonthLogsFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	rep := &fakeReporting{exportErr: errors.New("quota")}
	s := NewScheduler(Options{Location: time.UTC}, rep, nil, zap.New(core))

	s.exportPreviousMonth()

	assert.Equal(t, 1, logs.FilterMessage("failed to export monthly kpis").Len())
}

func TestStart(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		notifier notify.Client
		wantJobs int
		wantErr  bool
	}{
		{name: "both jobs", opts: Options{AlertSchedule: "0 7 * * *", ExportSchedule: "5 0 1 * *"}, notifier: &fakeNotifier{}, wantJobs: 2},
		{name: "alert without notifier", opts: Options{AlertSchedule: "0 7 * * *"}, wantJobs: 0},
		{name: "export only", opts: Options{ExportSchedule: "5 0 1 * *"}, wantJobs: 1},
		{name: "bad expression", opts: Options{ExportSchedule: "every day"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(tt.opts, &fakeReporting{}, tt.notifier, nil)
			err := s.Start()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer s.Stop()
			assert.Len(t, s.cron.Entries(), tt.wantJobs)
		})
	}
}
