package validator

import (
	"github.com/go-playground/validator/v10"

	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/model"
	"salonbook/pkg/sanitizer"
	"salonbook/pkg/slots"
)

// BookingValidator validates inbound appointment payloads. Tag-level rules
// come from go-playground/validator; cross-field rules (exactly one subject,
// guest contact requirements) are checked explicitly because they depend on
// who is calling, not just on the payload.
type BookingValidator struct {
	validate *validator.Validate
}

func New() *BookingValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// time_slot: the value must be a member of the half-hour slot universe.
	_ = v.RegisterValidation("time_slot", func(fl validator.FieldLevel) bool {
		return slots.Contains(fl.Field().String())
	})

	// pk_phone: Pakistani mobile number, local or E.164 form.
	_ = v.RegisterValidation("pk_phone", func(fl validator.FieldLevel) bool {
		return sanitizer.ValidPhone(fl.Field().String())
	})

	return &BookingValidator{validate: v}
}

// ValidateBooking checks a booking request. When guest is true the contact
// fields are mandatory; authenticated callers inherit their contact details
// from the actor and may omit them. When requireService is true the subject
// must be a service: package bookings are taken at the front desk only.
func (bv *BookingValidator) ValidateBooking(req *model.BookingRequest, guest, requireService bool) error {
	if err := bv.validate.Struct(req); err != nil {
		return translateValidationErrors(err)
	}

	details := map[string]any{}

	if requireService {
		if req.ServiceID == "" {
			details["service_id"] = "a service is required for online bookings"
		} else if req.PackageID != "" {
			details["package_id"] = "packages are booked at the front desk only"
		}
	} else if (req.ServiceID == "") == (req.PackageID == "") {
		details["service_id"] = "exactly one of service_id or package_id must be set"
	}

	if guest {
		if req.CustomerName == "" {
			details["customer_name"] = "required for guest bookings"
		}
		if req.CustomerEmail == "" {
			details["customer_email"] = "required for guest bookings"
		}
		if req.CustomerPhone == "" {
			details["customer_phone"] = "required for guest bookings"
		}
	}

	if len(details) > 0 {
		return apperrors.Validation("request validation failed", details)
	}
	return nil
}

func (bv *BookingValidator) ValidateReschedule(req *model.RescheduleRequest) error {
	if err := bv.validate.Struct(req); err != nil {
		return translateValidationErrors(err)
	}
	return nil
}

func (bv *BookingValidator) ValidateCancel(req *model.CancelRequest) error {
	if err := bv.validate.Struct(req); err != nil {
		return translateValidationErrors(err)
	}
	return nil
}

func (bv *BookingValidator) ValidateStatusUpdate(req *model.StatusUpdateRequest) error {
	if err := bv.validate.Struct(req); err != nil {
		return translateValidationErrors(err)
	}
	return nil
}

func (bv *BookingValidator) ValidateAssignStaff(req *model.AssignStaffRequest) error {
	if err := bv.validate.Struct(req); err != nil {
		return translateValidationErrors(err)
	}
	return nil
}

// translateValidationErrors flattens validator.ValidationErrors into a
// field -> message map so clients see which field failed and why.
func translateValidationErrors(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.InvalidInput(err.Error())
	}

	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = messageForTag(fe)
	}
	return apperrors.Validation("request validation failed", details)
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "mongodb":
		return "must be a valid object id"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "time_slot":
		return "must be a half-hour slot between 09:00 and 20:30"
	case "pk_phone":
		return "must be a valid Pakistani mobile number"
	default:
		return "is invalid"
	}
}
