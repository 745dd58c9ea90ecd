package query

import (
	"PcapSpectra/internal/config"
	"PcapSpectra/internal/engine/statistic"
	"PcapSpectra/internal/engine/summary"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// RunsRequest filters the stored runs. Zero fields do not filter.
type RunsRequest struct {
	Source  string
	EndTime time.Time
}

// RunInfo describes one stored run.
type RunInfo struct {
	RunID       string
	Source      string
	GeneratedAt time.Time
	TotalFrames uint64
}

// Querier reads summaries written by the ClickHouse writer.
type Querier interface {
	Runs(ctx context.Context, req RunsRequest) ([]RunInfo, error)
	ProtocolMix(ctx context.Context, runID string) (statistic.ProtocolMix, error)
	Distribution(ctx context.Context, runID, series, transport string) (*statistic.Distribution, error)
}

// clickhouseQuerier implements the Querier interface for ClickHouse.
type clickhouseQuerier struct {
	conn clickhouse.Conn
}

// NewClickHouseQuerier creates a new querier for ClickHouse.
func NewClickHouseQuerier(cfg config.ClickHouseConfig) (Querier, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return &clickhouseQuerier{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (clickhouse.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})

	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// Runs lists stored runs, newest first. The frame total is the sum over the
// run's protocol mix, which covers every frame exactly once.
func (q *clickhouseQuerier) Runs(ctx context.Context, req RunsRequest) ([]RunInfo, error) {
	query, args := runsQuery(req)
	rows, err := q.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var run RunInfo
		if err := rows.Scan(&run.RunID, &run.Source, &run.GeneratedAt, &run.TotalFrames); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ProtocolMix returns the stored mix of a run, or statistic.ErrZeroTotalFrames
// when the run has none.
func (q *clickhouseQuerier) ProtocolMix(ctx context.Context, runID string) (statistic.ProtocolMix, error) {
	rows, err := q.conn.Query(ctx, `
		SELECT Label, Frames, Fraction
		FROM traffic_protocol_mix
		WHERE RunID = ?
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	byLabel := make(map[string]statistic.Share)
	for rows.Next() {
		var share statistic.Share
		if err := rows.Scan(&share.Label, &share.Frames, &share.Fraction); err != nil {
			return nil, fmt.Errorf("failed to scan protocol share: %w", err)
		}
		byLabel[share.Label] = share
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orderMix(byLabel)
}

// Distribution returns one stored series of a run, or
// statistic.ErrEmptyDistribution when nothing was stored for it.
func (q *clickhouseQuerier) Distribution(ctx context.Context, runID, series, transport string) (*statistic.Distribution, error) {
	query, args, err := distributionQuery(runID, series, transport)
	if err != nil {
		return nil, err
	}
	rows, err := q.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	d := &statistic.Distribution{}
	for rows.Next() {
		var value, cumulative float64
		if err := rows.Scan(&value, &cumulative); err != nil {
			return nil, fmt.Errorf("failed to scan distribution point: %w", err)
		}
		d.Values = append(d.Values, value)
		d.Cumulative = append(d.Cumulative, cumulative)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if d.Len() == 0 {
		return nil, statistic.ErrEmptyDistribution
	}
	return d, nil
}

// runsQuery builds the run listing. Aggregate aliases must not reuse a column
// name, or ClickHouse substitutes the aggregate into the WHERE filter.
func runsQuery(req RunsRequest) (string, []any) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT
			RunID,
			any(Source) AS RunSource,
			max(GeneratedAt) AS LastGeneratedAt,
			sum(Frames) AS TotalFrames
		FROM traffic_protocol_mix
	`)

	var whereClauses []string
	args := []any{}

	if !req.EndTime.IsZero() {
		whereClauses = append(whereClauses, "GeneratedAt <= ?")
		args = append(args, req.EndTime)
	}
	if req.Source != "" {
		whereClauses = append(whereClauses, "Source = ?")
		args = append(args, req.Source)
	}

	if len(whereClauses) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(whereClauses, " AND "))
	}

	queryBuilder.WriteString(`
		GROUP BY RunID
		ORDER BY LastGeneratedAt DESC
	`)
	return queryBuilder.String(), args
}

func distributionQuery(runID, series, transport string) (string, []any, error) {
	switch series {
	case summary.SeriesPacketSize:
		if transport != "" {
			return "", nil, fmt.Errorf("series %s has no transport, got %q", series, transport)
		}
	case summary.SeriesFlowBytes, summary.SeriesFlowDuration:
		if transport != "tcp" && transport != "udp" {
			return "", nil, fmt.Errorf("series %s needs transport tcp or udp, got %q", series, transport)
		}
	default:
		return "", nil, fmt.Errorf("unsupported series: %s", series)
	}

	query := `
		SELECT Value, Cumulative
		FROM traffic_distribution_points
		WHERE RunID = ? AND Series = ? AND Transport = ?
		ORDER BY Rank
	`
	return query, []any{runID, series, transport}, nil
}

// orderMix puts the stored shares back into presentation order.
func orderMix(byLabel map[string]statistic.Share) (statistic.ProtocolMix, error) {
	if len(byLabel) == 0 {
		return nil, statistic.ErrZeroTotalFrames
	}
	labels := []string{statistic.LabelTCP, statistic.LabelUDP, statistic.LabelICMP, statistic.LabelARP, statistic.LabelOther}
	mix := make(statistic.ProtocolMix, 0, len(labels))
	for _, label := range labels {
		if share, ok := byLabel[label]; ok {
			mix = append(mix, share)
		}
	}
	return mix, nil
}
