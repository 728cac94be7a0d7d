// Package tomodb contains the SQLite repository for protocol cycle
// results. All database read/write operations for cycles and channel
// statistics belong here rather than in the engine package, which keeps
// the domain logic free of SQL noise and makes it easy to swap storage
// backends for testing.
package tomodb

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/tomograph/internal/tomo"
)

// DB wraps the sql handle for the cycle store.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the database at path and applies any pending
// migrations.
func Open(path string) (*DB, error) {
	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db := &DB{handle}
	if err := db.MigrateUp(); err != nil {
		handle.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// CycleRecord is one persisted protocol cycle outcome.
type CycleRecord struct {
	RunID         string
	Cycle         int
	Index         tomo.Index
	PacketLength  int
	PacketEntropy float64
	Risk          tomo.GovernanceVector
	Balanced      bool
	ActivePrimary int
	CreatedAt     time.Time
}

// RecordCycle persists the packet and verdict of one protocol cycle.
func (db *DB) RecordCycle(runID string, cycle int, idx tomo.Index, packet tomo.Packet, verdict tomo.Verdict) error {
	_, err := db.Exec(`
		INSERT INTO protocol_cycles (
			run_id, cycle, index_i, index_j, index_k,
			packet_length, packet_entropy,
			attack_risk, rollback_cost, stability_impact,
			balanced, active_primary
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, cycle, idx.I, idx.J, idx.K,
		packet.Len(), packet.Entropy,
		verdict.Risk.AttackRisk, verdict.Risk.RollbackCost, verdict.Risk.StabilityImpact,
		verdict.Balanced, verdict.ActivePrimary,
	)
	if err != nil {
		return fmt.Errorf("failed to insert protocol cycle: %w", err)
	}
	return nil
}

// RecordRefresh persists the per-channel summary of one refresh cycle.
func (db *DB) RecordRefresh(runID string, summary tomo.RefreshSummary) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	terminated := make(map[tomo.Channel]int)
	for _, tc := range summary.Terminated {
		terminated[tc.Channel]++
	}

	for ch := tomo.Channel(0); ch < tomo.NumChannels; ch++ {
		_, err := tx.Exec(`
			INSERT INTO channel_stats (run_id, cycle, channel, active_count, mean_entropy, terminated)
			VALUES (?, ?, ?, ?, ?, ?)`,
			runID, summary.Cycle, ch.String(), summary.ActiveCounts[ch], summary.MeanEntropy, terminated[ch],
		)
		if err != nil {
			return fmt.Errorf("failed to insert channel stats for %s: %w", ch, err)
		}
	}

	return tx.Commit()
}

// GetCycles returns the persisted cycles of a run in cycle order.
func (db *DB) GetCycles(runID string) ([]CycleRecord, error) {
	rows, err := db.Query(`
		SELECT run_id, cycle, index_i, index_j, index_k,
		       packet_length, packet_entropy,
		       attack_risk, rollback_cost, stability_impact,
		       balanced, active_primary, created_at
		FROM protocol_cycles WHERE run_id = ? ORDER BY cycle`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CycleRecord
	for rows.Next() {
		var rec CycleRecord
		var i, j, k int
		var balanced int
		if err := rows.Scan(
			&rec.RunID, &rec.Cycle, &i, &j, &k,
			&rec.PacketLength, &rec.PacketEntropy,
			&rec.Risk.AttackRisk, &rec.Risk.RollbackCost, &rec.Risk.StabilityImpact,
			&balanced, &rec.ActivePrimary, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec.Index = tomo.NewIndex(i, j, k)
		rec.Balanced = balanced != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ChannelStat is one persisted per-channel refresh summary row.
type ChannelStat struct {
	RunID       string
	Cycle       int
	Channel     string
	ActiveCount int
	MeanEntropy float64
	Terminated  int
}

// GetChannelStats returns the channel summaries of a run in cycle order.
func (db *DB) GetChannelStats(runID string) ([]ChannelStat, error) {
	rows, err := db.Query(`
		SELECT run_id, cycle, channel, active_count, mean_entropy, terminated
		FROM channel_stats WHERE run_id = ? ORDER BY cycle, channel`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChannelStat
	for rows.Next() {
		var cs ChannelStat
		if err := rows.Scan(&cs.RunID, &cs.Cycle, &cs.Channel, &cs.ActiveCount, &cs.MeanEntropy, &cs.Terminated); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}
