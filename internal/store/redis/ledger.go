package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"

	"github.com/hiic/library/internal/domain"
)

// DefaultLedgerTTL bounds how long an audit report outlives its auditor.
const DefaultLedgerTTL = 24 * time.Hour

// AuditSummary is the headline of one catalog audit.
type AuditSummary struct {
	At        time.Time     `json:"at" cbor:"1,keyasint"`
	Listed    int           `json:"listed" cbor:"2,keyasint"`
	Issues    int           `json:"issues" cbor:"3,keyasint"`
	Skipped   int           `json:"skipped" cbor:"4,keyasint"`
	Truncated bool          `json:"truncated" cbor:"5,keyasint"`
	Took      time.Duration `json:"took" cbor:"6,keyasint"`
}

// AuditReport is what the auditor records after each pass.
type AuditReport struct {
	Summary AuditSummary
	Skipped []domain.SkippedKey
}

// Ledger persists the outcome of the latest catalog audit so operators can
// see which metadata records are being left out.
type Ledger struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
	enc       cbor.EncMode
}

// NewLedger creates a ledger for one namespace.
func NewLedger(client *redis.Client, namespace string, ttl time.Duration) (*Ledger, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}
	if ttl <= 0 {
		ttl = DefaultLedgerTTL
	}
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to build cbor encoder: %w", err)
	}
	return &Ledger{client: client, namespace: namespace, ttl: ttl, enc: enc}, nil
}

// Record replaces the previous report atomically.
func (l *Ledger) Record(ctx context.Context, report AuditReport) error {
	summary, err := l.enc.Marshal(report.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal audit summary: %w", err)
	}

	fields := make(map[string]any, len(report.Skipped))
	for _, s := range report.Skipped {
		data, err := l.enc.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to marshal skip %s: %w", s.Key, err)
		}
		fields[s.Key] = data
	}

	skipsKey := SkipsKey(l.namespace)
	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, skipsKey)
		if len(fields) > 0 {
			pipe.HSet(ctx, skipsKey, fields)
			pipe.Expire(ctx, skipsKey, l.ttl)
		}
		pipe.Set(ctx, AuditKey(l.namespace), summary, l.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record audit: %w", err)
	}
	return nil
}

// LastAudit returns nil, nil when no audit has been recorded (or it expired).
func (l *Ledger) LastAudit(ctx context.Context) (*AuditSummary, error) {
	data, err := l.client.Get(ctx, AuditKey(l.namespace)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last audit: %w", err)
	}
	var s AuditSummary
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal audit summary: %w", err)
	}
	return &s, nil
}

// Skipped returns the skipped records of the last audit ordered by key.
// Entries that fail to decode are dropped.
func (l *Ledger) Skipped(ctx context.Context) ([]domain.SkippedKey, error) {
	raw, err := l.client.HGetAll(ctx, SkipsKey(l.namespace)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get skipped records: %w", err)
	}
	out := make([]domain.SkippedKey, 0, len(raw))
	for key, v := range raw {
		var s domain.SkippedKey
		if err := cbor.Unmarshal([]byte(v), &s); err != nil {
			continue
		}
		if s.Key == "" {
			s.Key = key
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Ping checks the connection.
func (l *Ledger) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
