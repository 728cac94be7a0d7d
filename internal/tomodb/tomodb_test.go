package tomodb

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/tomograph/internal/tomo"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "tomograph_test.db"))
	require.NoError(t, err, "open test db")
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordCycleRoundTrip(t *testing.T) {
	db := newTestDB(t)
	runID := uuid.NewString()

	idx := tomo.NewIndex(1, 2, 3)
	packet := tomo.Packet{Bytes: []byte{10, 20, 30}, Entropy: 20}
	verdict := tomo.Verdict{
		Balanced:      true,
		Risk:          tomo.GovernanceVector{AttackRisk: 0.05, RollbackCost: 0.02, StabilityImpact: 0.1},
		ActivePrimary: 249,
	}

	require.NoError(t, db.RecordCycle(runID, 1, idx, packet, verdict))
	require.NoError(t, db.RecordCycle(runID, 2, tomo.NewIndex(4, 5, 6), tomo.Packet{}, tomo.Verdict{}))
	// Cycles from other runs must not leak into the query.
	require.NoError(t, db.RecordCycle(uuid.NewString(), 1, idx, packet, verdict))

	records, err := db.GetCycles(runID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	rec := records[0]
	if rec.RunID != runID || rec.Cycle != 1 {
		t.Errorf("record identity = %s/%d", rec.RunID, rec.Cycle)
	}
	if rec.Index.I != 1 || rec.Index.J != 2 || rec.Index.K != 3 {
		t.Errorf("index = %+v, want (1,2,3)", rec.Index)
	}
	if rec.PacketLength != 3 || rec.PacketEntropy != 20 {
		t.Errorf("packet = len %d entropy %g", rec.PacketLength, rec.PacketEntropy)
	}
	if !rec.Balanced || rec.ActivePrimary != 249 {
		t.Errorf("verdict = balanced %v active %d", rec.Balanced, rec.ActivePrimary)
	}
	if math.Abs(rec.Risk.AttackRisk-0.05) > 1e-12 {
		t.Errorf("attack risk = %g, want 0.05", rec.Risk.AttackRisk)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("created_at not populated")
	}

	if records[1].Cycle != 2 || records[1].Balanced {
		t.Errorf("second record = %+v", records[1])
	}
}

func TestRecordRefreshRoundTrip(t *testing.T) {
	db := newTestDB(t)
	runID := uuid.NewString()

	summary := tomo.RefreshSummary{
		Cycle:        3,
		ActiveCounts: [tomo.NumChannels]int{249, 249, 249, 249},
		MeanEntropy:  0.72,
		Terminated: []tomo.TerminatedCell{
			{Slot: 5, Channel: tomo.Primary},
			{Slot: 9, Channel: tomo.Primary},
			{Slot: 5, Channel: tomo.Derived},
		},
	}
	require.NoError(t, db.RecordRefresh(runID, summary))

	stats, err := db.GetChannelStats(runID)
	require.NoError(t, err)
	require.Len(t, stats, tomo.NumChannels)

	byChannel := make(map[string]ChannelStat)
	for _, cs := range stats {
		if cs.Cycle != 3 || cs.ActiveCount != 249 {
			t.Errorf("row %+v: cycle/active mismatch", cs)
		}
		if math.Abs(cs.MeanEntropy-0.72) > 1e-12 {
			t.Errorf("row %+v: entropy mismatch", cs)
		}
		byChannel[cs.Channel] = cs
	}
	if byChannel["primary"].Terminated != 2 {
		t.Errorf("primary terminated = %d, want 2", byChannel["primary"].Terminated)
	}
	if byChannel["derived"].Terminated != 1 {
		t.Errorf("derived terminated = %d, want 1", byChannel["derived"].Terminated)
	}
	if byChannel["transit"].Terminated != 0 {
		t.Errorf("transit terminated = %d, want 0", byChannel["transit"].Terminated)
	}
}

func TestGetCyclesEmptyRun(t *testing.T) {
	db := newTestDB(t)
	records, err := db.GetCycles(uuid.NewString())
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestMigrateVersion(t *testing.T) {
	db := newTestDB(t)

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	if dirty {
		t.Error("schema dirty after Open")
	}
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}

	// Down then up again should be clean.
	require.NoError(t, db.MigrateDown())
	if version, _, _ := db.MigrateVersion(); version != 0 {
		t.Errorf("version after down = %d, want 0", version)
	}
	require.NoError(t, db.MigrateUp())
	require.NoError(t, db.MigrateUp(), "MigrateUp must be idempotent")
}
