package docs

import (
	"context"
	"os"
	"strings"

	portsout "walletprogram/internal/application/ports/out"
	apperrors "walletprogram/internal/shared_kernel/errors"

	"gopkg.in/yaml.v3"
)

type FileOpenAPISpecReadModel struct {
	path string
}

var _ portsout.OpenAPISpecReadModel = (*FileOpenAPISpecReadModel)(nil)

type openAPIHeader struct {
	OpenAPI string         `yaml:"openapi"`
	Info    map[string]any `yaml:"info"`
	Paths   map[string]any `yaml:"paths"`
}

func NewFileOpenAPISpecReadModel(path string) *FileOpenAPISpecReadModel {
	return &FileOpenAPISpecReadModel{
		path: path,
	}
}

func (r *FileOpenAPISpecReadModel) Read(_ context.Context) ([]byte, string, *apperrors.AppError) {
	content, err := os.ReadFile(r.path)
	if err != nil {
		return nil, "", apperrors.NewInternal(
			"OPENAPI_FILE_READ_FAILED",
			"failed to read OpenAPI spec file",
			map[string]any{"path": r.path},
		)
	}

	header := openAPIHeader{}
	if err := yaml.Unmarshal(content, &header); err != nil {
		return nil, "", apperrors.NewInternal(
			"OPENAPI_FILE_INVALID",
			"OpenAPI spec file is not valid YAML",
			map[string]any{"path": r.path, "error": err.Error()},
		)
	}
	if !strings.HasPrefix(strings.TrimSpace(header.OpenAPI), "3.") || len(header.Paths) == 0 {
		return nil, "", apperrors.NewInternal(
			"OPENAPI_FILE_INVALID",
			"OpenAPI spec file must declare openapi 3.x and at least one path",
			map[string]any{"path": r.path},
		)
	}

	return content, "application/yaml; charset=utf-8", nil
}
