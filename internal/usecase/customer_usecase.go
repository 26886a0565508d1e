package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 顧客台帳。オーナーごとに分離され、他店舗の顧客は存在しない扱いにする。
type CustomerUsecase struct {
	customerRepo repo.CustomerRepository
}

// DI
func NewCustomerUsecase(customerRepo repo.CustomerRepository) *CustomerUsecase {
	return &CustomerUsecase{customerRepo: customerRepo}
}

type SaveCustomerInput struct {
	Name  string
	Phone string
	Email string
}

func (u *CustomerUsecase) ListCustomers(ctx context.Context, userID int64, q string) ([]model.Customer, error) {
	if len(q) > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	customers, err := u.customerRepo.ListByUserID(ctx, userID, q)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return customers, nil
}

func (u *CustomerUsecase) GetCustomer(ctx context.Context, userID, customerID int64) (model.Customer, error) {
	return u.findOwned(ctx, userID, customerID)
}

func (u *CustomerUsecase) CreateCustomer(ctx context.Context, userID int64, in SaveCustomerInput) (model.Customer, error) {
	if err := validateSaveCustomer(in); err != nil {
		return model.Customer{}, err
	}

	created, err := u.customerRepo.Create(ctx, model.Customer{
		UserID: userID,
		Name:   strings.TrimSpace(in.Name),
		Phone:  strings.TrimSpace(in.Phone),
		Email:  strings.TrimSpace(in.Email),
	})
	if err != nil {
		return model.Customer{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

func (u *CustomerUsecase) UpdateCustomer(ctx context.Context, userID, customerID int64, in SaveCustomerInput) (model.Customer, error) {
	if err := validateSaveCustomer(in); err != nil {
		return model.Customer{}, err
	}

	current, err := u.findOwned(ctx, userID, customerID)
	if err != nil {
		return model.Customer{}, err
	}

	current.Name = strings.TrimSpace(in.Name)
	current.Phone = strings.TrimSpace(in.Phone)
	current.Email = strings.TrimSpace(in.Email)

	if err := u.customerRepo.Update(ctx, current); err != nil {
		return model.Customer{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return current, nil
}

func (u *CustomerUsecase) DeleteCustomer(ctx context.Context, userID, customerID int64) error {
	if _, err := u.findOwned(ctx, userID, customerID); err != nil {
		return err
	}
	if err := u.customerRepo.Delete(ctx, customerID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 所有チェック付きの取得。他店舗の顧客は404。
func (u *CustomerUsecase) findOwned(ctx context.Context, userID, customerID int64) (model.Customer, error) {
	if customerID <= 0 {
		return model.Customer{}, NewHTTPError(http.StatusBadRequest, "invalid customer id")
	}
	c, err := u.customerRepo.FindByID(ctx, customerID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Customer{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Customer{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if c.UserID != userID {
		return model.Customer{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return c, nil
}

func validateSaveCustomer(in SaveCustomerInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if len(in.Name) > 255 {
		return NewHTTPError(http.StatusBadRequest, "name too long")
	}
	if email := strings.TrimSpace(in.Email); email != "" && !strings.Contains(email, "@") {
		return NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	return nil
}
