/*
Package sqlite provides SQLite-backed persistence for the retirement engine.

PURPOSE:
  Stores employee records (the inputs of an evaluation, minus the basis
  date) and an append-only log of recorded determinations. In production
  the same patterns apply to PostgreSQL with minor SQL dialect changes.

APPEND-ONLY ENFORCEMENT:
  The determinations table is a ledger:
  - No UPDATE statements on determinations
  - No DELETE statements on determinations (Reset aside)
  - A re-evaluation is a new row with a new basis date

KEY TABLES:
  employees:       Birth date, service start, appointment, service classes
  determinations:  Immutable log of "employee X as of day D" outcomes

IDEMPOTENCY:
  Every recorded determination carries an idempotency key, by default
  generic.DeterminationKey(employee, basis). Appending the same key twice
  returns generic.ErrDuplicateDetermination and leaves the log untouched,
  so the sweep scheduler can be re-run safely.

DATE STORAGE:
  Calendar dates are TEXT in YYYY-MM-DD form so ORDER BY sorts them
  chronologically. Audit timestamps are RFC3339 UTC.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

USAGE:
  store, err := sqlite.New("./data/retirement.db")
  if err != nil {
      return err
  }
  defer store.Close()

SEE ALSO:
  - eligibility/regime.go: Determination, the value being recorded
  - api/scheduler.go: Sweep that appends one determination per employee
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/retirement-engine/eligibility"
	"github.com/warp/retirement-engine/generic"
)

// Store persists employees and recorded determinations in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		date_of_birth TEXT NOT NULL,
		service_start_date TEXT NOT NULL,
		appointment_type TEXT,
		service_classes_json TEXT,
		created_at TEXT NOT NULL
	);

	-- Determinations (append-only log)
	CREATE TABLE IF NOT EXISTS determinations (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		basis_date TEXT NOT NULL,
		regime TEXT NOT NULL,
		attributes_json TEXT NOT NULL,
		outcomes_json TEXT NOT NULL,
		reduction_factor TEXT,
		source TEXT,
		idempotency_key TEXT UNIQUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_determinations_employee_basis
		ON determinations(employee_id, basis_date);
	CREATE INDEX IF NOT EXISTS idx_determinations_regime
		ON determinations(regime);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// Employee is a stored employee record. The basis date is not part of it:
// the same employee is evaluated as of any day.
type Employee struct {
	ID               generic.EmployeeID
	Name             string
	DateOfBirth      generic.TimePoint
	ServiceStartDate generic.TimePoint
	AppointmentType  string
	ServiceClasses   []eligibility.ServiceClass
	CreatedAt        time.Time
}

// Input builds the eligibility input for this employee as of basis.
func (e Employee) Input(basis generic.TimePoint) eligibility.Input {
	return eligibility.Input{
		DateOfBirth:      e.DateOfBirth,
		ServiceStartDate: e.ServiceStartDate,
		BasisDate:        basis,
		AppointmentType:  e.AppointmentType,
		ServiceClasses:   append([]eligibility.ServiceClass(nil), e.ServiceClasses...),
	}
}

// SaveEmployee inserts or replaces an employee. CreatedAt survives updates.
func (s *Store) SaveEmployee(ctx context.Context, emp Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	classesJSON, err := json.Marshal(emp.ServiceClasses)
	if err != nil {
		return fmt.Errorf("failed to encode service classes: %w", err)
	}

	query := `
		INSERT INTO employees (id, name, date_of_birth, service_start_date, appointment_type, service_classes_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			date_of_birth = excluded.date_of_birth,
			service_start_date = excluded.service_start_date,
			appointment_type = excluded.appointment_type,
			service_classes_json = excluded.service_classes_json
	`

	_, err = s.db.ExecContext(ctx, query,
		emp.ID, emp.Name,
		emp.DateOfBirth.String(),
		emp.ServiceStartDate.String(),
		nullString(emp.AppointmentType),
		string(classesJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// GetEmployee retrieves an employee by ID. Missing IDs return
// generic.ErrEmployeeNotFound.
func (s *Store) GetEmployee(ctx context.Context, id generic.EmployeeID) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, date_of_birth, service_start_date, appointment_type, service_classes_json, created_at
		FROM employees WHERE id = ?`, id)

	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, date_of_birth, service_start_date, appointment_type, service_classes_json, created_at
		FROM employees ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// DeleteEmployee removes an employee. Recorded determinations stay in the
// log. Missing IDs return generic.ErrEmployeeNotFound.
func (s *Store) DeleteEmployee(ctx context.Context, id generic.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (Employee, error) {
	var (
		emp             Employee
		dob, scd        string
		appointmentType sql.NullString
		classesJSON     sql.NullString
		createdAt       string
	)
	if err := row.Scan(&emp.ID, &emp.Name, &dob, &scd, &appointmentType, &classesJSON, &createdAt); err != nil {
		return emp, err
	}

	var err error
	if emp.DateOfBirth, err = generic.ParseDate(dob); err != nil {
		return emp, fmt.Errorf("employee %s: %w", emp.ID, err)
	}
	if emp.ServiceStartDate, err = generic.ParseDate(scd); err != nil {
		return emp, fmt.Errorf("employee %s: %w", emp.ID, err)
	}
	emp.AppointmentType = appointmentType.String
	if classesJSON.Valid && classesJSON.String != "" {
		if err := json.Unmarshal([]byte(classesJSON.String), &emp.ServiceClasses); err != nil {
			return emp, fmt.Errorf("employee %s: failed to decode service classes: %w", emp.ID, err)
		}
	}
	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return emp, nil
}

// =============================================================================
// DETERMINATION LOG (append-only)
// =============================================================================

// DeterminationRecord is one recorded determination.
type DeterminationRecord struct {
	ID             generic.DeterminationID
	EmployeeID     generic.EmployeeID
	Determination  eligibility.Determination
	Source         string // "api", "sweep"
	IdempotencyKey string
	CreatedAt      time.Time
}

// NewDeterminationRecord wraps d for employee with a fresh ID and the
// default idempotency key.
func NewDeterminationRecord(employee generic.EmployeeID, d eligibility.Determination, source string) DeterminationRecord {
	return DeterminationRecord{
		ID:             generic.NewDeterminationID(),
		EmployeeID:     employee,
		Determination:  d,
		Source:         source,
		IdempotencyKey: generic.DeterminationKey(employee, d.BasisDate),
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
}

// AppendDetermination adds a record to the log. A repeated idempotency key
// returns generic.ErrDuplicateDetermination. A zero CreatedAt is stamped
// with the current time.
// This is the ONLY write operation on determinations.
func (s *Store) AppendDetermination(ctx context.Context, rec DeterminationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	attrsJSON, err := json.Marshal(rec.Determination.Attributes)
	if err != nil {
		return fmt.Errorf("failed to encode attributes: %w", err)
	}
	outcomesJSON, err := json.Marshal(rec.Determination.Outcomes)
	if err != nil {
		return fmt.Errorf("failed to encode outcomes: %w", err)
	}

	var factor sql.NullString
	if rec.Determination.ReductionFactor != nil {
		factor = sql.NullString{String: rec.Determination.ReductionFactor.String(), Valid: true}
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO determinations
		(id, employee_id, basis_date, regime, attributes_json, outcomes_json,
		 reduction_factor, source, idempotency_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		rec.ID,
		rec.EmployeeID,
		rec.Determination.BasisDate.String(),
		rec.Determination.Regime,
		string(attrsJSON),
		string(outcomesJSON),
		factor,
		nullString(rec.Source),
		nullString(rec.IdempotencyKey),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", generic.ErrDuplicateDetermination, rec.IdempotencyKey)
		}
		return fmt.Errorf("failed to append determination: %w", err)
	}
	return nil
}

// ListDeterminations returns an employee's recorded determinations,
// ordered by basis date.
func (s *Store) ListDeterminations(ctx context.Context, employee generic.EmployeeID) ([]DeterminationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, basis_date, regime, attributes_json, outcomes_json,
		       reduction_factor, source, idempotency_key, created_at
		FROM determinations
		WHERE employee_id = ?
		ORDER BY basis_date ASC, created_at ASC`, employee)
	if err != nil {
		return nil, fmt.Errorf("failed to query determinations: %w", err)
	}
	defer rows.Close()

	var records []DeterminationRecord
	for rows.Next() {
		rec, err := scanDetermination(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Exists checks if an idempotency key was already recorded.
func (s *Store) Exists(ctx context.Context, idempotencyKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM determinations WHERE idempotency_key = ?",
		idempotencyKey,
	).Scan(&count)

	return count > 0, err
}

func scanDetermination(row scanner) (DeterminationRecord, error) {
	var (
		rec            DeterminationRecord
		basis, regime  string
		attrsJSON      string
		outcomesJSON   string
		factor         decimal.NullDecimal
		source         sql.NullString
		idempotencyKey sql.NullString
		createdAt      string
	)
	err := row.Scan(&rec.ID, &rec.EmployeeID, &basis, &regime, &attrsJSON, &outcomesJSON,
		&factor, &source, &idempotencyKey, &createdAt)
	if err != nil {
		return rec, fmt.Errorf("failed to scan determination: %w", err)
	}

	d := &rec.Determination
	if d.BasisDate, err = generic.ParseDate(basis); err != nil {
		return rec, fmt.Errorf("determination %s: %w", rec.ID, err)
	}
	if d.Regime, err = eligibility.ParseRegime(regime); err != nil {
		return rec, fmt.Errorf("determination %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(attrsJSON), &d.Attributes); err != nil {
		return rec, fmt.Errorf("determination %s: failed to decode attributes: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(outcomesJSON), &d.Outcomes); err != nil {
		return rec, fmt.Errorf("determination %s: failed to decode outcomes: %w", rec.ID, err)
	}
	if factor.Valid {
		f := factor.Decimal
		d.ReductionFactor = &f
	}
	rec.Source = source.String
	rec.IdempotencyKey = idempotencyKey.String
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return rec, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"determinations", "employees"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns row counts for the health endpoint.
func (s *Store) Stats(ctx context.Context) (employees, determinations int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM employees").Scan(&employees); err != nil {
		return 0, 0, err
	}
	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM determinations").Scan(&determinations); err != nil {
		return 0, 0, err
	}
	return employees, determinations, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
