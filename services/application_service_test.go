package services

import (
	"testing"
	"time"

	"onboarding-tracker-api/models"
	"onboarding-tracker-api/utils"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftRow(appID, ownerID int, form []byte) []interface{} {
	now := time.Now()
	return []interface{}{appID, "APP-2026-TESTTEST", ownerID, models.StatusDraft, form, 0, nil, now, now}
}

func statusRow(appID, ownerID int, status string, form []byte) []interface{} {
	now := time.Now()
	return []interface{}{appID, "APP-2026-TESTTEST", ownerID, status, form, 60, now, now, now}
}

func TestSubmitEmptyFormFailsWithAllMissingFields(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `applications`").
		WillReturnRows(sqlmockRows(applicationColumns(), draftRow(1, 42, []byte(`{}`))))
	mock.ExpectRollback()

	_, err := Submit(db, 1, Actor{ID: 42, Role: models.RoleCandidate})

	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, RequiredFormFields, verr.MissingFields)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitByNonOwnerFails(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `applications`").
		WillReturnRows(sqlmockRows(applicationColumns(), draftRow(1, 42, completeFormJSON())))
	mock.ExpectRollback()

	_, err := Submit(db, 1, Actor{ID: 99, Role: models.RoleCandidate})

	var aerr *utils.AuthorizationError
	require.ErrorAs(t, err, &aerr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitNonDraftConflicts(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `applications`").
		WillReturnRows(sqlmockRows(applicationColumns(), statusRow(1, 42, models.StatusSubmitted, completeFormJSON())))
	mock.ExpectRollback()

	_, err := Submit(db, 1, Actor{ID: 42, Role: models.RoleCandidate})

	var cerr *utils.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitRecomputesProgressAndLogs(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `applications`").
		WillReturnRows(sqlmockRows(applicationColumns(), draftRow(1, 42, completeFormJSON())))
	mock.ExpectExec("UPDATE `applications` SET").
		WillReturnResult(resultRows(1))
	// progress recomputation
	mock.ExpectQuery("SELECT .* FROM `applications`").
		WillReturnRows(sqlmockRows([]string{"application_id", "form_data"},
			[]interface{}{1, completeFormJSON()}))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `documents`").
		WillReturnRows(sqlmockRows([]string{"count(*)"}, []interface{}{int64(2)}))
	mock.ExpectExec("UPDATE `applications` SET").
		WillReturnResult(resultRows(1))
	// activity log + notification
	mock.ExpectExec("INSERT INTO `activity_log_entries`").
		WillReturnResult(resultRows(1))
	mock.ExpectExec("INSERT INTO `notifications`").
		WillReturnResult(resultRows(1))
	mock.ExpectCommit()

	app, err := Submit(db, 1, Actor{ID: 42, Role: models.RoleCandidate})
	require.NoError(t, err)

	assert.Equal(t, models.StatusSubmitted, app.Status)
	assert.NotNil(t, app.SubmittedAt)
	assert.Equal(t, 76, app.ProgressPercent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveByNonAdminFails(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := Approve(db, 1, Actor{ID: 42, Role: models.RoleCandidate}, "")

	var aerr *utils.AuthorizationError
	require.ErrorAs(t, err, &aerr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveLoserOfConcurrentRaceConflicts(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `applications`").
		WillReturnRows(sqlmockRows(applicationColumns(), statusRow(1, 42, models.StatusUnderReview, completeFormJSON())))
	// A concurrent reviewer already moved the row; the guarded update
	// matches nothing.
	mock.ExpectExec("UPDATE `applications` SET").
		WillReturnResult(resultRows(0))
	mock.ExpectRollback()

	_, err := Approve(db, 1, Actor{ID: 7, Role: models.RoleAdmin}, "")

	var cerr *utils.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveSetsReviewerAndNotifies(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `applications`").
		WillReturnRows(sqlmockRows(applicationColumns(), statusRow(1, 42, models.StatusUnderReview, completeFormJSON())))
	mock.ExpectExec("UPDATE `applications` SET").
		WillReturnResult(resultRows(1))
	mock.ExpectExec("INSERT INTO `activity_log_entries`").
		WillReturnResult(resultRows(1))
	mock.ExpectExec("INSERT INTO `notifications`").
		WillReturnResult(resultRows(1))
	mock.ExpectCommit()
	// owner email lookup after commit; empty result skips delivery
	mock.ExpectQuery("SELECT `email` FROM `profiles`").
		WillReturnRows(sqlmockRows([]string{"email"}))

	app, err := Approve(db, 1, Actor{ID: 7, Role: models.RoleAdmin}, "all documents in order")
	require.NoError(t, err)

	assert.Equal(t, models.StatusAccepted, app.Status)
	require.NotNil(t, app.ReviewerID)
	assert.Equal(t, 7, *app.ReviewerID)
	assert.NotNil(t, app.ReviewedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectRequiresReason(t *testing.T) {
	db, _ := newMockDB(t)

	_, err := Reject(db, 1, Actor{ID: 7, Role: models.RoleAdmin}, "   ", "")

	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRejectRecordsReason(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `applications`").
		WillReturnRows(sqlmockRows(applicationColumns(), statusRow(1, 42, models.StatusUnderReview, completeFormJSON())))
	mock.ExpectExec("UPDATE `applications` SET").
		WillReturnResult(resultRows(1))
	mock.ExpectExec("INSERT INTO `activity_log_entries`").
		WillReturnResult(resultRows(1))
	mock.ExpectExec("INSERT INTO `notifications`").
		WillReturnResult(resultRows(1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT `email` FROM `profiles`").
		WillReturnRows(sqlmockRows([]string{"email"}))

	app, err := Reject(db, 1, Actor{ID: 7, Role: models.RoleAdmin}, "ID proof unreadable", "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, app.Status)
	require.NotNil(t, app.RejectionReason)
	assert.Equal(t, "ID proof unreadable", *app.RejectionReason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBeginReviewRequiresSubmittedStatus(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `applications`").
		WillReturnRows(sqlmockRows(applicationColumns(), draftRow(1, 42, completeFormJSON())))
	mock.ExpectRollback()

	_, err := BeginReview(db, 1, Actor{ID: 7, Role: models.RoleAdmin})

	var cerr *utils.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetApplicationHidesForeignRows(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .* FROM `applications`").
		WillReturnRows(sqlmockRows(applicationColumns(), draftRow(1, 42, []byte(`{}`))))

	_, err := GetApplication(db, 1, Actor{ID: 99, Role: models.RoleCandidate})

	var aerr *utils.AuthorizationError
	require.ErrorAs(t, err, &aerr)

	// Admins read anything.
	mock.ExpectQuery("SELECT .* FROM `applications`").
		WillReturnRows(sqlmockRows(applicationColumns(), draftRow(1, 42, []byte(`{}`))))

	app, err := GetApplication(db, 1, Actor{ID: 7, Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, 42, app.OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureDraftLoserOfConcurrentCreateConflicts(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `applications`").
		WillReturnRows(sqlmockRows(applicationColumns()))
	// A concurrent request created the draft between the lookup and the
	// insert; the unique index on draft_owner_id rejects the second row.
	mock.ExpectExec("INSERT INTO `applications`").
		WillReturnError(&mysqldriver.MySQLError{
			Number:  1062,
			Message: "Duplicate entry '42' for key 'applications.uniq_owner_draft'",
		})
	mock.ExpectRollback()

	_, err := EnsureDraft(db, 42, map[string]interface{}{"full_name": "Asha Verma"})

	var cerr *utils.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureDraftMergesExistingDraft(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `applications`").
		WillReturnRows(sqlmockRows(applicationColumns(), draftRow(5, 42, []byte(`{"full_name":"Asha Verma"}`))))
	mock.ExpectExec("UPDATE `applications` SET").
		WillReturnResult(resultRows(1))
	// progress recomputation
	mock.ExpectQuery("SELECT .* FROM `applications`").
		WillReturnRows(sqlmockRows([]string{"application_id", "form_data"},
			[]interface{}{5, []byte(`{"full_name":"Asha Verma","phone":"+91-9812345678"}`)}))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `documents`").
		WillReturnRows(sqlmockRows([]string{"count(*)"}, []interface{}{int64(0)}))
	mock.ExpectExec("UPDATE `applications` SET").
		WillReturnResult(resultRows(1))
	mock.ExpectCommit()

	app, err := EnsureDraft(db, 42, map[string]interface{}{"phone": "+91-9812345678"})
	require.NoError(t, err)

	assert.Equal(t, 5, app.ApplicationID)
	assert.Equal(t, "Asha Verma", app.FormData["full_name"])
	assert.Equal(t, "+91-9812345678", app.FormData["phone"])
	assert.Equal(t, 10, app.ProgressPercent) // 2 of 12 fields
	assert.NoError(t, mock.ExpectationsWereMet())
}
