package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nwarner31/helping-hands-sub001/internal/db"
	"github.com/nwarner31/helping-hands-sub001/internal/model"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type ClientStore interface {
	CreateClient(ctx context.Context, c model.Client) (*model.Client, error)
	GetClient(ctx context.Context, id string) (*model.Client, error)
}

type ClientService struct {
	store ClientStore
}

func NewClientService(store ClientStore) *ClientService {
	return &ClientService{store: store}
}

func (s *ClientService) Create(ctx context.Context, req model.CreateClientRequest) (*model.Client, error) {
	fields := map[string]string{}
	if strings.TrimSpace(req.ID) == "" {
		fields["id"] = "id is required"
	}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "name is required"
	}

	client := model.Client{
		ID:      strings.TrimSpace(req.ID),
		Name:    strings.TrimSpace(req.Name),
		HouseID: req.HouseID,
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse(dateLayout, *req.DateOfBirth)
		if err != nil {
			fields["dateOfBirth"] = "dateOfBirth must be a YYYY-MM-DD date"
		} else {
			client.DateOfBirth = &dob
		}
	}
	if len(fields) > 0 {
		return nil, ValidationError("validation failed", fields)
	}

	created, err := s.store.CreateClient(ctx, client)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateID) {
			return nil, ConflictError("id", "client id already in use")
		}
		return nil, InternalError(err)
	}
	return created, nil
}

func (s *ClientService) Get(ctx context.Context, id string) (*model.Client, error) {
	client, err := s.store.GetClient(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, NotFoundError("Client not found")
		}
		return nil, InternalError(err)
	}
	return client, nil
}
