package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type AddressInput struct {
	Name       string `json:"name" validate:"required,max=255"`
	Line1      string `json:"line1" validate:"required,max=255"`
	Line2      string `json:"line2" validate:"max=255"`
	City       string `json:"city" validate:"required,max=255"`
	State      string `json:"state" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"omitempty,len=2"`
	Phone      string `json:"phone" validate:"max=30"`
}

type AddressUsecase struct {
	addresses repo.AddressRepository
}

func NewAddressUsecase(addresses repo.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addresses: addresses}
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]model.Address, error) {
	if userID <= 0 {
		return nil, unauthorized()
	}
	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, dbError(err)
	}
	return list, nil
}

func (u *AddressUsecase) Create(ctx context.Context, userID int64, in AddressInput) (model.Address, error) {
	if userID <= 0 {
		return model.Address{}, unauthorized()
	}
	a, err := normalizeAddress(in)
	if err != nil {
		return model.Address{}, err
	}

	now := time.Now()
	a.UserID = userID
	a.CreatedAt = now
	a.UpdatedAt = now

	//最初の住所かどうかはrepo側で決める
	created, err := u.addresses.Create(ctx, a)
	if err != nil {
		return model.Address{}, dbError(err)
	}
	return created, nil
}

func (u *AddressUsecase) Update(ctx context.Context, userID int64, addressID int64, in AddressInput) error {
	if err := checkAddressIDs(userID, addressID); err != nil {
		return err
	}
	a, err := normalizeAddress(in)
	if err != nil {
		return err
	}
	a.ID = addressID
	a.UserID = userID
	a.UpdatedAt = time.Now()

	return addressWriteError(u.addresses.Update(ctx, a), addressID)
}

func (u *AddressUsecase) Delete(ctx context.Context, userID int64, addressID int64) error {
	if err := checkAddressIDs(userID, addressID); err != nil {
		return err
	}
	return addressWriteError(u.addresses.Delete(ctx, userID, addressID), addressID)
}

//user内でdefaultは1つ
func (u *AddressUsecase) SetDefault(ctx context.Context, userID int64, addressID int64) error {
	if err := checkAddressIDs(userID, addressID); err != nil {
		return err
	}
	return addressWriteError(u.addresses.SetDefault(ctx, userID, addressID), addressID)
}

func checkAddressIDs(userID, addressID int64) error {
	if userID <= 0 {
		return unauthorized()
	}
	if addressID <= 0 {
		return NewValidationError("id", "invalid address id")
	}
	return nil
}

// 他人の住所は存在しない扱い（repoが持ち主で絞っている）
func addressWriteError(err error, addressID int64) error {
	if errors.Is(err, repo.ErrNotFound) {
		return &NotFoundError{Resource: "address", ID: addressID}
	}
	if err != nil {
		return dbError(err)
	}
	return nil
}

func normalizeAddress(in AddressInput) (model.Address, error) {
	a := model.Address{
		Name:       strings.TrimSpace(in.Name),
		Line1:      strings.TrimSpace(in.Line1),
		Line2:      strings.TrimSpace(in.Line2),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    strings.ToUpper(strings.TrimSpace(in.Country)),
		Phone:      strings.TrimSpace(in.Phone),
	}
	if a.Country == "" {
		a.Country = "US"
	}
	switch {
	case a.Name == "":
		return model.Address{}, NewValidationError("name", "is required")
	case a.Line1 == "":
		return model.Address{}, NewValidationError("line1", "is required")
	case a.City == "":
		return model.Address{}, NewValidationError("city", "is required")
	case a.State == "":
		return model.Address{}, NewValidationError("state", "is required")
	case a.PostalCode == "":
		return model.Address{}, NewValidationError("postalCode", "is required")
	}
	return a, nil
}
