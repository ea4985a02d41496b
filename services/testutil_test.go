package services

import (
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)

	return gdb, mock
}

func sqlmockRows(cols []string, rows ...[]interface{}) *sqlmock.Rows {
	r := sqlmock.NewRows(cols)
	for _, row := range rows {
		vals := make([]driver.Value, len(row))
		for i, v := range row {
			vals[i] = v
		}
		r.AddRow(vals...)
	}
	return r
}

func resultRows(n int64) driver.Result {
	return sqlmock.NewResult(0, n)
}

func applicationColumns() []string {
	return []string{
		"application_id", "application_number", "owner_id", "status",
		"form_data", "progress_percent", "submitted_at", "created_at", "updated_at",
	}
}

// completeForm fills every required field.
func completeFormJSON() []byte {
	return []byte(`{
		"full_name": "Asha Verma",
		"date_of_birth": "1996-02-11",
		"gender": "female",
		"phone": "+91-9812345678",
		"personal_email": "asha@example.com",
		"current_address": "14 MG Road, Pune",
		"emergency_contact_name": "Ravi Verma",
		"emergency_contact_phone": "+91-9812345679",
		"bank_name": "HDFC",
		"bank_account_number": "50100123456789",
		"ifsc_code": "HDFC0000123",
		"declaration_accepted": true
	}`)
}
