package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fitness-studio-site/internal/apperr"
	"github.com/iliyamo/fitness-studio-site/internal/config"
	"github.com/iliyamo/fitness-studio-site/internal/model"
)

func TestListExceptionsParsesRows(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"records":[
			{"id":"e1","fields":{"start_date":"2026-10-13","message":"Зал закрыт"}},
			{"id":"e2","fields":{"start_date":"2026-10-20","end_date":"2026-10-25","studio_id":"msk_elfit","product_scope":"Trial","status":"archived","type":"trainer_vacation"}},
			{"id":"e3","fields":{"message":"no dates"}},
			{"id":"e4","fields":{"start_date":"13.10.2026"}},
			{"id":"e5","fields":{"start_date":"2026-11-01T00:00:00.000Z"}}
		]}`)
	})
	repo := NewExceptionRepo(store, "exceptions", nil, "test", time.Minute, nil)

	got, err := repo.ListExceptions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, model.ScheduleException{
		ID:        "e1",
		StartDate: model.Date{Year: 2026, Month: time.October, Day: 13},
		EndDate:   model.Date{Year: 2026, Month: time.October, Day: 13},
		Message:   "Зал закрыт",
		Status:    model.ExceptionActive,
	}, got[0])

	assert.Equal(t, model.StudioMskElfit, got[1].StudioID)
	assert.Equal(t, model.ExceptionArchived, got[1].Status)
	assert.Equal(t, "trainer_vacation", got[1].Type)
	assert.Equal(t, 25, got[1].EndDate.Day)

	assert.Equal(t, "e5", got[2].ID)
	assert.Equal(t, time.November, got[2].StartDate.Month)
}

func TestListExceptionsPropagatesStoreErrors(t *testing.T) {
	repo := NewExceptionRepo(NewRecordStore(config.AirtableConfig{}, nil), "exceptions", nil, "test", time.Minute, nil)
	_, err := repo.ListExceptions(context.Background())
	assert.ErrorIs(t, err, apperr.ErrConfigMissing)
}

func TestPurchaseRepoRoundTrip(t *testing.T) {
	var created map[string]any
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `{"records":[{"id":"rec9","fields":{
				"id_payment":"1760000000000","Status":"Paid","tg_link_token":"tok",
				"tariff_label":"12 тренировок","Currency":"RUB","Sum":9600,"course_name":"Calisthenics"}}]}`)
		case http.MethodPost:
			var body struct {
				Fields map[string]any `json:"fields"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			created = body.Fields
			_, _ = io.WriteString(w, `{"id":"recNew"}`)
		}
	})
	repo := NewPurchaseRepo(store, "purchases")
	ctx := context.Background()

	p, err := repo.FindByPaymentID(ctx, "1760000000000")
	require.NoError(t, err)
	assert.True(t, p.Paid())
	assert.Equal(t, "rec9", p.RecordID)
	assert.Equal(t, "1760000000000", p.PaymentID)
	assert.Equal(t, "tok", p.LinkToken)
	assert.Equal(t, float64(9600), p.Sum)

	id, err := repo.CreatePaid(ctx, "42", PaidUpdate{OutSum: "1100.000000", PaidAt: time.Date(2026, 10, 12, 17, 0, 0, 0, time.UTC), LinkToken: "t"})
	require.NoError(t, err)
	assert.Equal(t, "recNew", id)
	assert.Equal(t, "42", created["id_payment"])
	assert.Equal(t, "paid", created["Status"])
	assert.Equal(t, float64(1100), created["Sum"])
	assert.Equal(t, "2026-10-12T17:00:00Z", created["Paid_time"])
	assert.Equal(t, "t", created["tg_link_token"])

	_, err = repo.CreatePending(ctx, model.Purchase{
		PaymentID:   7,
		Amount:      1100,
		Currency:    "RUB",
		Email:       "a@b.c",
		FullName:    "Анна",
		TariffID:    "review",
		TariffLabel: "1 тренировка",
		SlotStartAt: "2026-10-14T20:00:00+03:00",
	}, model.CRMOutcome{OK: false, Error: "unreachable"})
	require.NoError(t, err)
	assert.Equal(t, "7", created["id_payment"])
	assert.Equal(t, "created", created["Status"])
	assert.Equal(t, "trial", created["Tag"])
	assert.Equal(t, false, created["ru_first_ok"])
	assert.Equal(t, "unreachable", created["ydb_error"])
	assert.NotContains(t, created, "Phone")
}

func TestPurchaseRepoNotFound(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"records":[]}`)
	})
	p, err := NewPurchaseRepo(store, "purchases").FindByPaymentID(context.Background(), "1")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.False(t, p.Paid())
}

func TestLeadRepoCreate(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Fields map[string]any `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []any{"website"}, body.Fields["Source"])
		assert.Equal(t, true, body.Fields["ru_first_ok"])
		assert.Equal(t, "ydb-1", body.Fields["ydb_id"])
		assert.NotContains(t, body.Fields, "email")
		_, _ = io.WriteString(w, `{"id":"recLead"}`)
	})
	id, err := NewLeadRepo(store, "leads").Create(context.Background(),
		model.Lead{FullName: "Олег", Phone: "+7900", City: "Москва", Studio: "м. Октябрьская"},
		model.CRMOutcome{OK: true, YDBID: "ydb-1"})
	require.NoError(t, err)
	assert.Equal(t, "recLead", id)
}

func TestHolidayRepoYearCalendar(t *testing.T) {
	// 2026-01-01 is a Thursday; Jan 1-11 off, then a plain calendar.
	codes := "11111111111" + strings.Repeat("0", 354)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/getdata", r.URL.Path)
		assert.Equal(t, "2026", r.URL.Query().Get("year"))
		assert.Equal(t, "ru", r.URL.Query().Get("cc"))
		_, _ = io.WriteString(w, codes)
	}))
	defer srv.Close()

	repo := NewHolidayRepo(config.HolidaysConfig{APIURL: srv.URL, CountryCode: "ru"}, srv.Client(), nil, "test", time.Minute)
	cal, err := repo.YearCalendar(context.Background(), 2026)
	require.NoError(t, err)
	assert.True(t, cal.IsHoliday(model.Date{Year: 2026, Month: time.January, Day: 9}))
	assert.False(t, cal.IsHoliday(model.Date{Year: 2026, Month: time.January, Day: 12}))
	// Saturday Jan 17 is coded as working in this fixture.
	assert.True(t, cal.IsWorkingWeekend(model.Date{Year: 2026, Month: time.January, Day: 17}))
}

func TestHolidayRepoRejectsGarbage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "error 100")
	}))
	defer srv.Close()

	repo := NewHolidayRepo(config.HolidaysConfig{APIURL: srv.URL}, srv.Client(), nil, "test", time.Minute)
	_, err := repo.YearCalendar(context.Background(), 2026)
	assert.ErrorIs(t, err, apperr.ErrUpstreamRequestFailed)

	_, err = NewHolidayRepo(config.HolidaysConfig{}, nil, nil, "test", time.Minute).YearCalendar(context.Background(), 2026)
	assert.ErrorIs(t, err, apperr.ErrConfigMissing)
}
