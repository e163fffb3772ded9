package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"
	"time"

	"github.com/JimmysRanch/126-sub001/internal/domain"
)

const keyPrefix = "reporting:"

type ReportCache interface {
	Get(ctx context.Context, key string) (*domain.ReportData, bool, error)
	Set(ctx context.Context, key string, value *domain.ReportData, ttl time.Duration) error
	// Invalidate drops every cached report of one business.
	Invalidate(ctx context.Context, businessID string) error
}

type NoopReportCache struct{}

func (NoopReportCache) Get(_ context.Context, _ string) (*domain.ReportData, bool, error) {
	return nil, false, nil
}

func (NoopReportCache) Set(_ context.Context, _ string, _ *domain.ReportData, _ time.Duration) error {
	return nil
}

func (NoopReportCache) Invalidate(_ context.Context, _ string) error {
	return nil
}

// ReportKey identifies one computed report. Keys are grouped per business
// so an import can drop them together. The day is part of the key because
// relative presets resolve differently tomorrow.
func ReportKey(businessID string, datasetVersion string, filterHash string, reportID string, today string) string {
	sum := sha1.Sum([]byte(strings.Join([]string{datasetVersion, filterHash, today}, "|")))
	return businessPrefix(businessID) + "report:" + url.QueryEscape(reportID) + ":" + hex.EncodeToString(sum[:])
}

// BusinessPattern matches every report key of businessID.
func BusinessPattern(businessID string) string {
	return businessPrefix(businessID) + "*"
}

// Escaping keeps ':' and glob characters in an id from reaching into
// another business's keys.
func businessPrefix(businessID string) string {
	return keyPrefix + url.QueryEscape(businessID) + ":"
}

// TTLUntilEndOfDay caps ttl at the next local midnight after now. Reports
// keyed under today are unreachable after that, so there is no point
// keeping them. A non-positive ttl means "until midnight".
func TTLUntilEndOfDay(now time.Time, ttl time.Duration) time.Duration {
	year, month, day := now.Date()
	remaining := time.Date(year, month, day+1, 0, 0, 0, 0, now.Location()).Sub(now)
	if ttl <= 0 || remaining < ttl {
		return remaining
	}
	return ttl
}
