package use_cases

import (
	"context"
	"encoding/hex"

	"walletprogram/internal/application/dto"
	portsin "walletprogram/internal/application/ports/in"
	portsout "walletprogram/internal/application/ports/out"
	apperrors "walletprogram/internal/shared_kernel/errors"

	"golang.org/x/crypto/sha3"
)

type getOpenAPISpecUseCase struct {
	readModel portsout.OpenAPISpecReadModel
}

func NewGetOpenAPISpecUseCase(readModel portsout.OpenAPISpecReadModel) portsin.GetOpenAPISpecUseCase {
	return &getOpenAPISpecUseCase{
		readModel: readModel,
	}
}

func (u *getOpenAPISpecUseCase) Execute(ctx context.Context, _ dto.GetOpenAPISpecQuery) (dto.OpenAPISpecOutput, *apperrors.AppError) {
	if u.readModel == nil {
		return dto.OpenAPISpecOutput{}, apperrors.NewInternal(
			"OPENAPI_READ_MODEL_MISSING",
			"openapi read model is required",
			nil,
		)
	}

	content, contentType, appErr := u.readModel.Read(ctx)
	if appErr != nil {
		return dto.OpenAPISpecOutput{}, appErr
	}

	sum := sha3.Sum256(content)
	return dto.OpenAPISpecOutput{
		Content:     content,
		ContentType: contentType,
		ETag:        `"` + hex.EncodeToString(sum[:16]) + `"`,
	}, nil
}
