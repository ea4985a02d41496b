package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestProgressScore(t *testing.T) {
	tests := []struct {
		name   string
		fields int
		docs   int
		want   int
	}{
		{"empty", 0, 0, 0},
		{"all fields no docs", 12, 0, 60},
		{"all fields two docs", 12, 2, 76},
		{"all fields all docs", 12, 5, 100},
		{"docs capped beyond required count", 12, 8, 100},
		{"half the fields", 6, 0, 30},
		{"floor on field share", 7, 0, 35},
		{"one doc only", 0, 1, 8},
		{"negative inputs clamp", -3, -1, 0},
		{"field count above catalog clamps", 40, 0, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProgressScore(tt.fields, tt.docs))
		})
	}
}

func TestCountFilledRequiredFields(t *testing.T) {
	var form datatypes.JSONMap
	require.NoError(t, json.Unmarshal(completeFormJSON(), &form))

	assert.Equal(t, len(RequiredFormFields), CountFilledRequiredFields(form))
	assert.Empty(t, MissingRequiredFields(form))

	// Blank strings and unaccepted declarations do not count.
	form["bank_name"] = "   "
	form["declaration_accepted"] = false
	assert.Equal(t, len(RequiredFormFields)-2, CountFilledRequiredFields(form))
	assert.Equal(t, []string{"bank_name", "declaration_accepted"}, MissingRequiredFields(form))
}

func TestMissingRequiredFieldsEmptyForm(t *testing.T) {
	missing := MissingRequiredFields(datatypes.JSONMap{})
	assert.Equal(t, RequiredFormFields, missing)
}

func TestRecomputeProgressPersists(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .* FROM `applications`").
		WillReturnRows(sqlmockRows([]string{"application_id", "form_data"},
			[]interface{}{7, completeFormJSON()}))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `documents`").
		WillReturnRows(sqlmockRows([]string{"count(*)"}, []interface{}{int64(2)}))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `applications` SET").
		WillReturnResult(resultRows(1))
	mock.ExpectCommit()

	percent, err := RecomputeProgress(db, 7)
	require.NoError(t, err)
	assert.Equal(t, 76, percent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
