package use_cases

import (
	"context"

	"walletprogram/internal/application/dto"
	portsin "walletprogram/internal/application/ports/in"
	portsout "walletprogram/internal/application/ports/out"
	"walletprogram/internal/domain/value_objects"
	apperrors "walletprogram/internal/shared_kernel/errors"
)

const (
	storageStatusOK          = "ok"
	storageStatusUnavailable = "unavailable"
	storageStatusUnchecked   = "unchecked"
)

type getHealthUseCase struct {
	storage portsout.StorageHealthChecker
}

func NewGetHealthUseCase(storage portsout.StorageHealthChecker) portsin.GetHealthUseCase {
	return &getHealthUseCase{storage: storage}
}

func (u *getHealthUseCase) Execute(ctx context.Context, _ dto.GetHealthCommand) (dto.HealthOutput, *apperrors.AppError) {
	status := valueobjects.NewHealthyStatus()
	if u.storage == nil {
		return dto.HealthOutput{
			Status:  status.String(),
			Storage: storageStatusUnchecked,
		}, nil
	}

	if appErr := u.storage.Ping(ctx); appErr != nil {
		return dto.HealthOutput{
			Status:  valueobjects.HealthStatusDegraded.String(),
			Storage: storageStatusUnavailable,
		}, nil
	}

	return dto.HealthOutput{
		Status:  status.String(),
		Storage: storageStatusOK,
	}, nil
}
