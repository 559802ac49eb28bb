package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fieldcheck/internal/domain/fieldrecord"
	"fieldcheck/internal/errs"
	"fieldcheck/internal/infrastructure/persistence/sqlite/model"
	"fieldcheck/internal/ports"
)

type ShiftRepository struct {
	db *gorm.DB
}

var _ ports.ShiftRepository = (*ShiftRepository)(nil)

func NewShiftRepository(db *gorm.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// CreateShift checks team+date uniqueness and inserts the root with its
// employees inside one transaction.
func (r *ShiftRepository) CreateShift(ctx context.Context, shift fieldrecord.Shift, employees []fieldrecord.EmployeeSelection) (fieldrecord.Shift, error) {
	var created fieldrecord.Shift
	err := inTx(ctx, r.db, func(txCtx context.Context, db *gorm.DB) error {
		if _, found, err := r.FindShift(txCtx, shift.TeamID, shift.Date); err != nil {
			return err
		} else if found {
			return fieldrecord.ErrShiftAlreadyExists
		}

		row := model.EquipeTurno{
			UUID:          shift.UUID,
			EquipeID:      shift.TeamID.String(),
			Data:          shift.Date,
			VeiculoID:     shift.VehicleID.Ptr(),
			CentroCustoID: shift.CostCenterID.Ptr(),
			CreatedAt:     shift.CreatedAt,
			IsSynced:      shift.IsSynced,
		}
		if err := db.Create(&row).Error; err != nil {
			return errs.Wrap(err, "insert shift")
		}

		members := make([]model.EquipeTurnoFuncionario, 0, len(employees))
		for _, employee := range employees {
			members = append(members, model.EquipeTurnoFuncionario{
				EquipeTurnoID: row.ID,
				FuncionarioID: employee.EmployeeID.String(),
				IsLider:       employee.IsLeader,
			})
		}
		if len(members) > 0 {
			if err := db.Create(&members).Error; err != nil {
				return errs.Wrap(err, "insert shift employees")
			}
		}

		created = mapShift(row)
		return nil
	})
	if err != nil {
		return fieldrecord.Shift{}, err
	}
	return created, nil
}

func (r *ShiftRepository) GetShift(ctx context.Context, shiftID int64) (fieldrecord.Shift, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return fieldrecord.Shift{}, err
	}

	var row model.EquipeTurno
	if err := db.Where("id = ?", shiftID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fieldrecord.Shift{}, fieldrecord.ErrShiftNotFound
		}
		return fieldrecord.Shift{}, errs.Wrap(err, "query shift")
	}
	return mapShift(row), nil
}

func (r *ShiftRepository) FindShift(ctx context.Context, teamID fieldrecord.Ref, date string) (fieldrecord.Shift, bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return fieldrecord.Shift{}, false, err
	}

	var rows []model.EquipeTurno
	if err := db.
		Where("equipe_id = ? AND data = ?", teamID.String(), date).
		Limit(1).
		Find(&rows).Error; err != nil {
		return fieldrecord.Shift{}, false, errs.Wrap(err, "query shift by team and date")
	}
	if len(rows) == 0 {
		return fieldrecord.Shift{}, false, nil
	}
	return mapShift(rows[0]), true, nil
}

func (r *ShiftRepository) ListShifts(ctx context.Context, filter ports.ShiftFilter) ([]fieldrecord.Shift, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.EquipeTurno{})
	if filter.TeamID.Present() {
		query = query.Where("equipe_id = ?", filter.TeamID.String())
	}
	if filter.Date != "" {
		query = query.Where("data = ?", filter.Date)
	}

	var rows []model.EquipeTurno
	if err := query.Order("id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query shifts")
	}

	shifts := make([]fieldrecord.Shift, 0, len(rows))
	for _, row := range rows {
		shifts = append(shifts, mapShift(row))
	}
	return shifts, nil
}

func (r *ShiftRepository) CountShifts(ctx context.Context) (int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.EquipeTurno{}).Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count shifts")
	}
	return count, nil
}

func (r *ShiftRepository) ListShiftEmployees(ctx context.Context, shiftID int64) ([]fieldrecord.ShiftEmployee, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.EquipeTurnoFuncionario
	if err := db.
		Where("equipe_turno_id = ?", shiftID).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query shift employees")
	}

	employees := make([]fieldrecord.ShiftEmployee, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, fieldrecord.ShiftEmployee{
			ID:         row.ID,
			ShiftID:    row.EquipeTurnoID,
			EmployeeID: fieldrecord.Ref(row.FuncionarioID),
			IsLeader:   row.IsLider,
		})
	}
	return employees, nil
}

func (r *ShiftRepository) DeleteShift(ctx context.Context, shiftID int64) error {
	return inTx(ctx, r.db, func(_ context.Context, db *gorm.DB) error {
		if err := db.Where("equipe_turno_id = ?", shiftID).
			Delete(&model.EquipeTurnoFuncionario{}).Error; err != nil {
			return errs.Wrap(err, "delete shift employees")
		}

		result := db.Where("id = ?", shiftID).Delete(&model.EquipeTurno{})
		if result.Error != nil {
			return errs.Wrap(result.Error, "delete shift")
		}
		if result.RowsAffected == 0 {
			return fieldrecord.ErrShiftNotFound
		}
		return nil
	})
}

func mapShift(row model.EquipeTurno) fieldrecord.Shift {
	return fieldrecord.Shift{
		ID:           row.ID,
		UUID:         row.UUID,
		TeamID:       fieldrecord.Ref(row.EquipeID),
		Date:         row.Data,
		VehicleID:    fieldrecord.RefFromPtr(row.VeiculoID),
		CostCenterID: fieldrecord.RefFromPtr(row.CentroCustoID),
		CreatedAt:    row.CreatedAt,
		IsSynced:     row.IsSynced,
	}
}
