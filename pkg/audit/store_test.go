package audit

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStoreSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStoreWithDB(db)

	event := ReauthenticateEvent{
		AuthenticationID: "jdoe",
		ClientIP:         "10.0.0.1",
		Module:           "MANAGED_USER",
		Success:          true,
	}

	mock.ExpectExec(`INSERT INTO audit_events`).
		WithArgs(
			FacilityAuthPriv,  // facility
			int(SeverityInfo), // severity
			sqlmock.AnyArg(),  // timestamp
			sqlmock.AnyArg(),  // hostname
			"idm",             // appname
			sqlmock.AnyArg(),  // procid
			"reauthn",         // msgid
			sqlmock.AnyArg(),  // sdata (JSON)
			sqlmock.AnyArg(),  // message
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.Save(event)
	if err != nil {
		t.Errorf("Save() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStoreSaveFailedEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStoreWithDB(db)

	event := AuthenticateEvent{
		AuthenticationID: "jdoe",
		ClientIP:         "10.0.0.1",
		Success:          false,
		ErrorMessage:     "no module accepted the credentials",
	}

	mock.ExpectExec(`INSERT INTO audit_events`).
		WithArgs(
			FacilityAuthPriv,
			int(SeverityWarning), // Failed events have warning severity
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			"idm",
			sqlmock.AnyArg(),
			"authn",
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.Save(event)
	if err != nil {
		t.Errorf("Save() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStoreSaveActivateEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStoreWithDB(db)

	event := ActivateEvent{Modules: []string{"MANAGED_USER"}}

	mock.ExpectExec(`INSERT INTO audit_events`).
		WithArgs(
			FacilityAuth,
			int(SeverityNotice),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			"idm",
			sqlmock.AnyArg(),
			"activate",
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.Save(event)
	if err != nil {
		t.Errorf("Save() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStoreNilDB(t *testing.T) {
	store := &Store{db: nil}

	event := ReauthenticateEvent{
		AuthenticationID: "jdoe",
		ClientIP:         "10.0.0.1",
		Success:          true,
	}

	// Should not error when db is nil
	err := store.Save(event)
	if err != nil {
		t.Errorf("Save() with nil db should not error, got: %v", err)
	}
}

func TestStoreClose(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	store := NewStoreWithDB(db)

	mock.ExpectClose()

	err = store.Close()
	if err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStoreCloseNilDB(t *testing.T) {
	store := &Store{db: nil}

	err := store.Close()
	if err != nil {
		t.Errorf("Close() with nil db should not error, got: %v", err)
	}
}

func TestMessage(t *testing.T) {
	msg := Message{
		Facility:  FacilityAuthPriv,
		Severity:  int(SeverityInfo),
		Timestamp: time.Now(),
		Hostname:  "localhost",
		Appname:   "idm",
		Procid:    "12345",
		Msgid:     "reauthn",
		Sdata:     map[string]any{SDIDAuth: map[string]any{"user": "jdoe"}},
		Message:   "jdoe successfully reauthenticated with module MANAGED_USER",
	}

	if msg.Facility != FacilityAuthPriv {
		t.Errorf("Message.Facility = %v, want %v", msg.Facility, FacilityAuthPriv)
	}
	if msg.Msgid != "reauthn" {
		t.Errorf("Message.Msgid = %v, want 'reauthn'", msg.Msgid)
	}
}
