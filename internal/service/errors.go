package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Skotchmaster/pharmacy_shop/internal/events"
	"github.com/Skotchmaster/pharmacy_shop/internal/logging"
)

var (
	ErrValidation         = errors.New("validation")          // 400
	ErrNotFound           = errors.New("not found")           // 404
	ErrConflict           = errors.New("conflict")            // 409
	ErrInvalidCredentials = errors.New("invalid credentials") // 401
	ErrUnauthorized       = errors.New("unauthorized")        // 401
	ErrEmptyCart          = fmt.Errorf("%w: cart is empty", ErrValidation)
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct reports the first failing field as an ErrValidation.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", ErrValidation, field)
	case "min":
		return fmt.Errorf("%w: %s must be at least %s", ErrValidation, field, fe.Param())
	case "max":
		return fmt.Errorf("%w: %s must be at most %s", ErrValidation, field, fe.Param())
	case "email":
		return fmt.Errorf("%w: %s is not a valid email", ErrValidation, field)
	case "eqfield":
		return fmt.Errorf("%w: %s does not match", ErrValidation, field)
	default:
		return fmt.Errorf("%w: %s is invalid", ErrValidation, field)
	}
}

// publish sends ev and only logs a failure.
func publish(ctx context.Context, p events.Publisher, topic, key string, ev events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "type", ev.Type, "error", err)
	}
}
