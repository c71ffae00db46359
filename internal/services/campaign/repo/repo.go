// Package repo reads campaign analytics from clickhouse
package repo

import (
	"context"

	perr "starwatch/internal/platform/errors"
	"starwatch/internal/platform/logger"
	"starwatch/internal/platform/store"
	"starwatch/internal/services/campaign/domain"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// viewsByHourSQL keeps, per phrase, the positive hourly view deltas of today
// newest hour first
const viewsByHourSQL = `
SELECT phrase,
       arrayReverse(arrayFilter(x -> x.2 > 0,
           arrayMap((h,d)->(h,d), hours, arrayDifference(views_array)))) AS views_by_hour
FROM (SELECT phrase, groupArray(h) AS hours, groupArray(max_v) AS views_array
      FROM (SELECT phrase, toHour(dt) AS h, max(views) AS max_v
            FROM phrases_views
            WHERE campaign_id = {campaign_id:Int32} AND toDate(dt)=today()
            GROUP BY phrase, h ORDER BY h ASC)
      GROUP BY phrase)`

// CH answers campaign queries over the clickhouse seam
type CH struct {
	ch  store.Clickhouse
	log logger.Logger
}

// NewCH builds the reader
func NewCH(chSeam store.Clickhouse) *CH {
	return &CH{ch: chSeam, log: *logger.Named("campaign.repo")}
}

var _ domain.ReaderPort = (*CH)(nil)

// ViewsByHour runs the hourly delta query for one campaign
func (r *CH) ViewsByHour(ctx context.Context, campaignID int32) (domain.ViewsByHour, error) {
	if r.ch == nil {
		return nil, perr.NotInitializedf("clickhouse not configured")
	}

	rows, err := r.ch.Query(ctx, viewsByHourSQL, clickhouse.Named("campaign_id", campaignID))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeDB, "campaign views query failed")
	}
	defer rows.Close()

	out := make(domain.ViewsByHour)
	for rows.Next() {
		var (
			phrase string
			pairs  [][]any
		)
		if err := rows.Scan(&phrase, &pairs); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeDB, "campaign views scan failed")
		}
		deltas := make([]domain.HourDelta, 0, len(pairs))
		for _, p := range pairs {
			if len(p) != 2 {
				continue
			}
			deltas = append(deltas, domain.HourDelta{
				Hour:  uint8(asInt64(p[0])),
				Delta: asInt64(p[1]),
			})
		}
		out[phrase] = deltas
	}
	if err := rows.Err(); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeDB, "campaign views iteration failed")
	}
	return out, nil
}

// asInt64 widens the numeric types the driver may hand back for tuple fields
func asInt64(v any) int64 {
	switch n := v.(type) {
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
