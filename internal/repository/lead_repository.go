package repository

import (
	"context"

	"github.com/iliyamo/fitness-studio-site/internal/model"
)

// LeadRepo writes site leads to the leads table.
type LeadRepo struct {
	store *RecordStore
	table string
}

func NewLeadRepo(store *RecordStore, table string) *LeadRepo {
	return &LeadRepo{store: store, table: table}
}

// Create stores a lead together with the CRM forwarding outcome and returns
// the record id.
func (r *LeadRepo) Create(ctx context.Context, l model.Lead, crm model.CRMOutcome) (string, error) {
	f := Fields{
		model.LeadFieldFullName: l.FullName,
		model.LeadFieldPhone:    l.Phone,
		model.LeadFieldCity:     l.City,
		model.LeadFieldStudio:   l.Studio,
		// multi-select columns take option names
		model.LeadFieldSource: []string{model.LeadSourceWebsite},
	}
	if l.Email != "" {
		f[model.LeadFieldEmail] = l.Email
	}
	for k, v := range crm.Fields() {
		f[k] = v
	}
	rec, err := r.store.Create(ctx, r.table, f)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}
