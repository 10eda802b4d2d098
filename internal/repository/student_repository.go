package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-api/internal/models"
)

const studentColumns = "id, name, roll, department, email, phone, status, created_at"

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns every student ordered by name.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	students := []models.Student{}
	query := "SELECT " + studentColumns + " FROM students ORDER BY name ASC, id ASC"
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by id.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	var student models.Student
	query := r.db.Rebind("SELECT " + studentColumns + " FROM students WHERE id = ?")
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByRoll fetches a student by roll number.
func (r *StudentRepository) FindByRoll(ctx context.Context, roll string) (*models.Student, error) {
	var student models.Student
	query := r.db.Rebind("SELECT " + studentColumns + " FROM students WHERE roll = ?")
	if err := r.db.GetContext(ctx, &student, query, roll); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByRoll checks if a roll number is taken, optionally excluding one id.
func (r *StudentRepository) ExistsByRoll(ctx context.Context, roll string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM students WHERE roll = ?"
	args := []interface{}{roll}
	if excludeID > 0 {
		query += " AND id <> ?"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, r.db.Rebind(query+" LIMIT 1"), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check roll: %w", err)
	}
	return true, nil
}

// Count returns the number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students"); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}

// Create inserts a student and sets its id.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	id, err := insertReturningID(ctx, r.db,
		"INSERT INTO students (name, roll, department, email, phone, status) VALUES (?, ?, ?, ?, ?, ?)",
		student.Name, student.Roll, student.Department, student.Email, student.Phone, student.Status)
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	student.ID = id
	return nil
}

// Update replaces every editable field of a student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	query := r.db.Rebind("UPDATE students SET name = ?, roll = ?, department = ?, email = ?, phone = ?, status = ? WHERE id = ?")
	res, err := r.db.ExecContext(ctx, query, student.Name, student.Roll, student.Department, student.Email, student.Phone, student.Status, student.ID)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a student together with its placements.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM placements WHERE student_id = ?"), id); err != nil {
			return fmt.Errorf("delete student placements: %w", err)
		}
		res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM students WHERE id = ?"), id)
		if err != nil {
			return fmt.Errorf("delete student: %w", err)
		}
		return expectAffected(res)
	})
}
