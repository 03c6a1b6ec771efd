package validator

import (
	"errors"
	"fmt"
	"reflect"
	"roombook/pkg/grid"
	"roombook/pkg/logger"
	"roombook/pkg/model"
	"roombook/pkg/week"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details flattens the errors into the shape AppError.Details expects.
func (v ValidationErrors) Details() map[string]any {
	fields := make(map[string]any, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return map[string]any{"fields": fields}
}

type Options struct {
	AllowPast bool
	Location  *time.Location
	Now       func() time.Time
}

type BookingValidator struct {
	validate  *validator.Validate
	grid      *grid.Grid
	allowPast bool
	loc       *time.Location
	now       func() time.Time
	logger    *logger.Logger
}

func NewBookingValidator(log *logger.Logger, g *grid.Grid, opts Options) *BookingValidator {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	custom := map[string]validator.Func{
		"room": func(fl validator.FieldLevel) bool {
			return g.HasRoom(fl.Field().String())
		},
		"slot_hour": func(fl validator.FieldLevel) bool {
			return g.HasHour(int(fl.Field().Int()))
		},
		"calendar_date": func(fl validator.FieldLevel) bool {
			return week.IsDate(fl.Field().String())
		},
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal(fmt.Sprintf("Failed to register '%s' validator", tag),
				"error", err,
			)
		}
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate:  v,
		grid:      g,
		allowPast: opts.AllowPast,
		loc:       opts.Location,
		now:       opts.Now,
		logger:    log,
	}
}

// Validate expects BookedBy to be trimmed already.
func (v *BookingValidator) Validate(req *model.BookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if !v.allowPast {
		date, _ := week.ParseDate(req.Date)
		if today := week.Today(v.now(), v.loc); date.Before(today) {
			return ValidationErrors{
				ValidationError{
					Field:   "date",
					Message: fmt.Sprintf("date cannot be before today (%s)", today),
				},
			}
		}
	}

	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "room":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), strings.Join(v.grid.Rooms(), ", "))
		case "slot_hour":
			message = fmt.Sprintf("%s must be between %d and %d", err.Field(), v.grid.FirstHour(), v.grid.LastHour())
		case "calendar_date":
			message = fmt.Sprintf("%s must be a calendar date in YYYY-MM-DD format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
