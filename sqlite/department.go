package sqlite

import (
	"context"
	"strings"

	"github.com/benprew/deptadmin"
	"github.com/jmoiron/sqlx"
)

// DepartmentService stores departments in SQLite.
type DepartmentService struct {
	db *DB
}

// Ensure service implements interface.
var _ deptadmin.DepartmentStore = (*DepartmentService)(nil)

// NewDepartmentService returns a new instance of DepartmentService.
func NewDepartmentService(db *DB) *DepartmentService {
	return &DepartmentService{db: db}
}

func (s *DepartmentService) FindDepartmentByID(ctx context.Context, id uint64) (*deptadmin.Department, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	return findDepartmentByID(ctx, tx, id)
}

// FindDepartments retrieves a list of departments based on a filter.
//
// Also returns a count of total matching departments which may different from
// the number of returned departments if the "Limit" field is set.
func (s *DepartmentService) FindDepartments(ctx context.Context, filter deptadmin.DepartmentFilter) ([]*deptadmin.Department, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	return findDepartments(ctx, tx, filter)
}

func (s *DepartmentService) CreateDepartment(ctx context.Context, d *deptadmin.Department) error {
	if err := deptadmin.ValidateDepartment(deptadmin.DraftFrom(d)); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ext.ExecContext(ctx, `
		insert into departments (name, code) values (?, ?)
	`, d.Name, d.Code)
	if err != nil {
		return FormatError(err)
	}

	// Read back new department ID into caller argument.
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)

	return tx.Commit()
}

func (s *DepartmentService) UpdateDepartment(ctx context.Context, id uint64, upd deptadmin.DepartmentUpdate) (*deptadmin.Department, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	d, err := findDepartmentByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		d.Name = *upd.Name
	}
	if upd.Code != nil {
		d.Code = *upd.Code
	}
	if err := deptadmin.ValidateDepartment(deptadmin.DraftFrom(d)); err != nil {
		return nil, err
	}

	if _, err := sqlx.NamedExecContext(ctx, tx.ext, `
		update departments
		set name = :name, code = :code, updated_at = CURRENT_TIMESTAMP
		where id = :id
	`, d); err != nil {
		return nil, FormatError(err)
	}

	return d, tx.Commit()
}

func (s *DepartmentService) DeleteDepartment(ctx context.Context, id uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := findDepartmentByID(ctx, tx, id); err != nil {
		return err
	}
	if _, err := tx.ext.ExecContext(ctx, `delete from departments where id = ?`, id); err != nil {
		return FormatError(err)
	}
	return tx.Commit()
}

func findDepartmentByID(ctx context.Context, tx *Tx, id uint64) (*deptadmin.Department, error) {
	departments, _, err := findDepartments(ctx, tx, deptadmin.DepartmentFilter{ID: id})
	if err != nil {
		return nil, err
	}
	if len(departments) == 0 {
		return nil, deptadmin.Errorf(deptadmin.ENOTFOUND, "department not found: %d", id)
	}
	return departments[0], nil
}

// departmentRow adds the window count to a department row.
type departmentRow struct {
	deptadmin.Department
	Total int `db:"total"`
}

func findDepartments(ctx context.Context, tx *Tx, filter deptadmin.DepartmentFilter) (_ []*deptadmin.Department, n int, err error) {
	// Build WHERE clause.
	where := []string{"1 = 1"}
	var args []interface{}
	if filter.ID != 0 {
		where = append(where, "id = ?")
		args = append(args, filter.ID)
	}
	if filter.Name != "" {
		where = append(where, "instr(lower(name), lower(?)) > 0")
		args = append(args, filter.Name)
	}

	var rows []departmentRow
	if err := sqlx.SelectContext(ctx, tx.ext, &rows, `
		select
			id,
			name,
			code,
			COUNT(*) OVER() as total
		from departments
		where `+strings.Join(where, " and ")+`
		order by id
		`+FormatLimitOffset(filter.Limit, filter.Offset),
		args...,
	); err != nil {
		return nil, 0, err
	}

	departments := make([]*deptadmin.Department, 0, len(rows))
	for i := range rows {
		d := rows[i].Department
		departments = append(departments, &d)
		n = rows[i].Total
	}
	return departments, n, nil
}
