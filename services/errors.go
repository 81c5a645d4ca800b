package services

import "errors"

// Errors returned by the services. Handlers map them to HTTP statuses.
var (
	// accounts
	ErrUserExists          = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already in use")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidResetCode    = errors.New("invalid or expired code")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrNoAvatar            = errors.New("no avatar to remove")
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// catalog
	ErrProductNotFound  = errors.New("product not found")
	ErrProductInvalid   = errors.New("name and price are required")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrSlugTaken        = errors.New("slug already in use")

	// enrollments
	ErrCourseNotFound     = errors.New("course not found")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this course")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrNotEnrolled        = errors.New("not enrolled")

	// feedback
	ErrFeedbackExists   = errors.New("feedback already submitted for this course")
	ErrFeedbackNotFound = errors.New("feedback not found")

	// messages
	ErrMessageNotFound    = errors.New("message not found")
	ErrRecipientNotFound  = errors.New("recipient not found")
	ErrRecipientForbidden = errors.New("recipient role not allowed")

	// commerce
	ErrCartNotFound       = errors.New("cart not found")
	ErrCartItemNotFound   = errors.New("item not found in cart")
	ErrEmptyOrder         = errors.New("order has no items")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidOrderStatus = errors.New("invalid order status")

	// shared
	ErrForbidden = errors.New("forbidden")
)
