package repo

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreach/entity"
	"outreach/pkg/goutil"
)

func leadRows(leadID string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "lead_id", "status", "lead_type", "temperature",
		"source", "email", "name", "company", "metadata",
		"create_time", "update_time",
	}).AddRow(
		1, leadID, uint32(entity.LeadStatusUnprocessed), uint32(entity.LeadTypeCold), uint32(entity.LeadTemperatureWarm),
		"apollo_export", "jamie@example.com", "Jamie", "Acme", `{"region":"emea"}`,
		1000, 2000,
	)
}

func TestLeadUpsert(t *testing.T) {
	orm, mock := newMockOrm(t)
	r := &leadRepo{orm: orm}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `lead_tab` .*ON DUPLICATE KEY UPDATE.*`update_time`=VALUES").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT \\* FROM `lead_tab` WHERE .*`lead_id` = \\?").
		WillReturnRows(leadRows("lead-1"))

	lead, err := r.Upsert(context.Background(), &entity.Lead{
		LeadID:      goutil.String("lead-1"),
		Status:      entity.LeadStatusUnprocessed,
		Type:        entity.LeadTypeCold,
		Temperature: entity.LeadTemperatureWarm,
		Source:      goutil.String("apollo_export"),
		Metadata:    map[string]interface{}{"region": "emea"},
	})

	require.NoError(t, err)
	assert.Equal(t, "lead-1", lead.GetLeadID())
	assert.Equal(t, uint64(1), lead.GetID())
	assert.Equal(t, uint64(1000), lead.GetCreateTime())
	assert.Equal(t, "emea", lead.Metadata["region"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadUpsertInsertFails(t *testing.T) {
	orm, mock := newMockOrm(t)
	r := &leadRepo{orm: orm}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `lead_tab`").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := r.Upsert(context.Background(), &entity.Lead{
		LeadID: goutil.String("lead-1"),
		Source: goutil.String("apollo_export"),
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadGetNotFound(t *testing.T) {
	orm, mock := newMockOrm(t)
	r := &leadRepo{orm: orm}

	mock.ExpectQuery("SELECT \\* FROM `lead_tab`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := r.Get(context.Background(), &LeadFilter{LeadID: goutil.String("nope")})

	assert.ErrorIs(t, err, ErrLeadNotFound)
}
