package converter

import (
	"errors"

	"github.com/ginjaninja78/processautomate/internal/types"
)

// ErrNotImplemented is returned for every OTP input file.
var ErrNotImplemented = errors.New("OTP processing is not implemented")

type otpTransformer struct{}

func (otpTransformer) Variant() types.Variant { return types.VariantOTP }

func (otpTransformer) Transform(string, Env) ([]Output, error) {
	return nil, ErrNotImplemented
}
