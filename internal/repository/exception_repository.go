package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/fitness-studio-site/internal/model"
)

// Field names of the schedule exceptions table.
const (
	exFieldType         = "type"
	exFieldStudioID     = "studio_id"
	exFieldProductScope = "product_scope"
	exFieldStartDate    = "start_date"
	exFieldEndDate      = "end_date"
	exFieldMessage      = "message"
	exFieldStatus       = "status"
)

// exceptionRow is the cached shape of one exception.
type exceptionRow struct {
	ID           string `json:"id"`
	Type         string `json:"type,omitempty"`
	StudioID     string `json:"studio_id,omitempty"`
	ProductScope string `json:"product_scope,omitempty"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date,omitempty"`
	Message      string `json:"message,omitempty"`
	Status       string `json:"status,omitempty"`
}

// ExceptionRepo lists schedule exceptions from the record store.
type ExceptionRepo struct {
	store *RecordStore
	table string
	cache jsonCache
	log   *zap.Logger
}

// NewExceptionRepo constructs an ExceptionRepo. rdb may be nil.
func NewExceptionRepo(store *RecordStore, table string, rdb *redis.Client, prefix string, ttl time.Duration, log *zap.Logger) *ExceptionRepo {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExceptionRepo{store: store, table: table, cache: newJSONCache(rdb, prefix+":exceptions", ttl), log: log}
}

// ListExceptions returns every well-formed exception. Rows without a start
// date or with unparsable dates are skipped with a warning; filtering by
// status and scope is left to the slot generator.
func (r *ExceptionRepo) ListExceptions(ctx context.Context) ([]model.ScheduleException, error) {
	var rows []exceptionRow
	if !r.cache.get(ctx, r.table, &rows) {
		recs, err := r.store.List(ctx, r.table)
		if err != nil {
			return nil, err
		}
		rows = make([]exceptionRow, 0, len(recs))
		for i := range recs {
			rec := &recs[i]
			rows = append(rows, exceptionRow{
				ID:           rec.ID,
				Type:         rec.Text(exFieldType),
				StudioID:     rec.Text(exFieldStudioID),
				ProductScope: rec.Text(exFieldProductScope),
				StartDate:    rec.Text(exFieldStartDate),
				EndDate:      rec.Text(exFieldEndDate),
				Message:      rec.Text(exFieldMessage),
				Status:       rec.Text(exFieldStatus),
			})
		}
		r.cache.set(ctx, r.table, rows)
	}

	out := make([]model.ScheduleException, 0, len(rows))
	for _, row := range rows {
		e, ok := row.toModel()
		if !ok {
			r.log.Warn("skipping malformed schedule exception", zap.String("id", row.ID),
				zap.String("start_date", row.StartDate), zap.String("end_date", row.EndDate))
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (row exceptionRow) toModel() (model.ScheduleException, bool) {
	if row.StartDate == "" {
		return model.ScheduleException{}, false
	}
	start, err := model.ParseDate(row.StartDate)
	if err != nil {
		return model.ScheduleException{}, false
	}
	end := start
	if row.EndDate != "" {
		if end, err = model.ParseDate(row.EndDate); err != nil {
			return model.ScheduleException{}, false
		}
	}
	return model.ScheduleException{
		ID:           row.ID,
		Type:         row.Type,
		StudioID:     model.StudioID(row.StudioID),
		ProductScope: row.ProductScope,
		StartDate:    start,
		EndDate:      end,
		Message:      row.Message,
		Status:       model.ParseExceptionStatus(row.Status),
	}, true
}
