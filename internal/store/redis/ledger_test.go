package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/hiic/library/internal/domain"
)

// testClient connects to LIBRARY_TEST_REDIS_ADDR or skips.
func testClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("LIBRARY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LIBRARY_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestKeys(t *testing.T) {
	require.Equal(t, "library:library:skips", SkipsKey("library"))
	require.Equal(t, "library:library:audit:last", AuditKey("library"))
}

func TestNewLedgerRejectsNilClient(t *testing.T) {
	_, err := NewLedger(nil, "library", 0)
	require.Error(t, err)
}

func TestLedgerRecordReplaces(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()
	ns := "test-" + time.Now().Format("150405.000000")
	t.Cleanup(func() { client.Del(ctx, SkipsKey(ns), AuditKey(ns)) })

	l, err := NewLedger(client, ns, time.Minute)
	require.NoError(t, err)

	last, err := l.LastAudit(ctx)
	require.NoError(t, err)
	require.Nil(t, last)

	at := time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC)
	require.NoError(t, l.Record(ctx, AuditReport{
		Summary: AuditSummary{At: at, Listed: 9, Issues: 2, Skipped: 2, Took: time.Second},
		Skipped: []domain.SkippedKey{
			{Key: ns + "/b/2026/x/meta.json", Reason: domain.SkipInvalidJSON, Detail: "unexpected EOF"},
			{Key: ns + "/a/meta.json", Reason: domain.SkipMalformedKey},
		},
	}))

	last, err = l.LastAudit(ctx)
	require.NoError(t, err)
	require.True(t, at.Equal(last.At))
	require.Equal(t, 9, last.Listed)
	require.Equal(t, time.Second, last.Took)

	skipped, err := l.Skipped(ctx)
	require.NoError(t, err)
	require.Len(t, skipped, 2)
	require.Equal(t, ns+"/a/meta.json", skipped[0].Key)
	require.Equal(t, domain.SkipInvalidJSON, skipped[1].Reason)

	require.NoError(t, l.Record(ctx, AuditReport{Summary: AuditSummary{At: at.Add(time.Hour), Issues: 3}}))
	skipped, err = l.Skipped(ctx)
	require.NoError(t, err)
	require.Empty(t, skipped)
}
