package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type admissionRepoPG struct{ pool *pgxpool.Pool }

func NewAdmissionRepoPG(pool *pgxpool.Pool) AdmissionRepository {
	return &admissionRepoPG{pool: pool}
}

const admissionCols = `a.id, a.patient_id, p.record_number, p.name, p.birth_date, p.mother_name,
	w.name, w.abbreviation, a.bed, a.status, a.admitted_at, a.diagnosis`

func scanAdmission(row pgx.Row) (*Admission, error) {
	var a Admission
	err := row.Scan(&a.ID, &a.PatientID, &a.RecordNumber, &a.PatientName, &a.BirthDate, &a.MotherName,
		&a.Ward, &a.WardAbbrev, &a.Bed, &a.Status, &a.AdmittedAt, &a.Diagnosis)
	return &a, err
}

func (r *admissionRepoPG) FindActive(ctx context.Context, f Filter) ([]*Admission, error) {
	where := []string{`a.status IN ($1, $2)`, `a.discharged_at IS NULL`}
	args := []interface{}{StatusInpatient, StatusEmergency}

	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if f.RecordNumber != "" {
		add(`p.record_number ILIKE '%%' || $%d || '%%'`, f.RecordNumber)
	}
	if f.Bed != "" {
		add(`a.bed ILIKE '%%' || $%d || '%%'`, f.Bed)
	}
	if f.Ward != "" {
		args = append(args, f.Ward)
		where = append(where, fmt.Sprintf(
			`(w.name ILIKE '%%' || $%d || '%%' OR w.abbreviation ILIKE '%%' || $%d || '%%')`,
			len(args), len(args)))
	}
	if len(f.NameTokens) > 0 {
		var tokenClauses []string
		for _, tok := range f.NameTokens {
			args = append(args, tok)
			tokenClauses = append(tokenClauses, fmt.Sprintf(`p.name ILIKE '%%' || $%d || '%%'`, len(args)))
		}
		where = append(where, "("+strings.Join(tokenClauses, " OR ")+")")
	}

	query := `SELECT ` + admissionCols + `
		FROM admission a
		JOIN patient p ON p.id = a.patient_id
		JOIN ward w ON w.id = a.ward_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY a.admitted_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query active admissions: %w", err)
	}
	defer rows.Close()

	var result []*Admission
	for rows.Next() {
		a, err := scanAdmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan admission: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read admissions: %w", err)
	}
	return result, nil
}

func (r *admissionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Admission, error) {
	return scanAdmission(r.pool.QueryRow(ctx, `SELECT `+admissionCols+`
		FROM admission a
		JOIN patient p ON p.id = a.patient_id
		JOIN ward w ON w.id = a.ward_id
		WHERE a.id = $1`, id))
}
