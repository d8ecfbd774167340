package req

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"git.appkode.ru/pub/go/failure"
	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"card_market/pkg/errcodes"
)

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary         //nolint:gochecknoglobals // skip
	validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // skip
)

func Read(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return invalidJSON(err)
	}

	return validateStruct(r, dest)
}

// ReadOptional is Read for requests whose body may be absent. An empty body,
// chunked or not, leaves dest untouched.
func ReadOptional(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}

		return invalidJSON(err)
	}

	return validateStruct(r, dest)
}

func invalidJSON(err error) error {
	return failure.NewInvalidArgumentError(
		fmt.Errorf("json.Decode: %w", err).Error(),
		failure.WithCode(errcodes.ValidationError),
		failure.WithDescription("Invalid JSON"),
	)
}

func validateStruct(r *http.Request, dest any) error {
	if err := validate.StructCtx(r.Context(), dest); err != nil {
		return failure.NewInvalidArgumentError(
			"validation error",
			failure.WithCode(errcodes.ValidationError),
			failure.WithDescription(err.Error()),
		)
	}

	return nil
}
