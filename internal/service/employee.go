package service

import (
	"context"
	"errors"

	"github.com/nwarner31/helping-hands-sub001/internal/db"
	"github.com/nwarner31/helping-hands-sub001/internal/model"
)

type EmployeeService struct {
	store EmployeeStore
}

func NewEmployeeService(store EmployeeStore) *EmployeeService {
	return &EmployeeService{store: store}
}

func (s *EmployeeService) List(ctx context.Context) ([]model.Employee, error) {
	list, err := s.store.ListEmployees(ctx)
	if err != nil {
		return nil, InternalError(err)
	}
	return list, nil
}

func (s *EmployeeService) Get(ctx context.Context, id string) (*model.Employee, error) {
	employee, err := s.store.GetEmployeeByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, NotFoundError("Employee not found")
		}
		return nil, InternalError(err)
	}
	return employee, nil
}

func (s *EmployeeService) Staffing(ctx context.Context) (model.StaffingReport, error) {
	list, err := s.store.ListEmployees(ctx)
	if err != nil {
		return model.StaffingReport{}, InternalError(err)
	}

	report := model.StaffingReport{
		Total: len(list),
		ByPosition: map[model.Position]int{
			model.PositionAssociate: 0,
			model.PositionManager:   0,
			model.PositionDirector:  0,
			model.PositionAdmin:     0,
		},
	}
	for _, e := range list {
		report.ByPosition[e.Position]++
	}
	return report, nil
}
