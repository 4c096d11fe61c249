package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/iliyamo/fitness-studio-site/internal/config"
	"github.com/iliyamo/fitness-studio-site/internal/repository"
)

func TestExceptionSourceRequiresTable(t *testing.T) {
	airtable := config.AirtableConfig{APIKey: "key", BaseID: "app"}

	cfg := config.Config{Airtable: airtable}
	assert.Nil(t, exceptionSource(cfg, repository.NewRecordStore(cfg.Airtable, nil), nil, zap.NewNop()))

	cfg.Airtable.ExceptionsTable = "tblExceptions"
	cfg.Airtable.APIKey = ""
	assert.Nil(t, exceptionSource(cfg, repository.NewRecordStore(cfg.Airtable, nil), nil, zap.NewNop()))

	cfg.Airtable.APIKey = "key"
	src := exceptionSource(cfg, repository.NewRecordStore(cfg.Airtable, nil), nil, zap.NewNop())
	assert.IsType(t, &repository.ExceptionRepo{}, src)
}
