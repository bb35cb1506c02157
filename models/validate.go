// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Layouts accepted for the feedback date and time pickers
const (
	FeedbackDateLayout = "2006-01-02"
	FeedbackTimeLayout = "15:04"
)

var errBlank = errors.New("cannot be blank")

// ValidateStudentID checks that id is exactly nine ASCII digits. No checksum
// or roster lookup is performed.
func ValidateStudentID(id string) error {
	err := validation.Validate(id,
		validation.Required,
		validation.Length(StudentIDLength, StudentIDLength),
		is.Digit,
		is.ASCII,
	)
	if err != nil {
		return ErrInvalidStudentID
	}
	return nil
}

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errBlank
	}
	return nil
}

func (req *RegisterRequest) Validate() error {
	if err := ValidateStudentID(req.StudentID); err != nil {
		return err
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.StudentName, validation.By(notBlank), validation.Length(1, 100)),
		validation.Field(&req.StudentClass, validation.Length(0, 50)),
	)
}

func (req *VoteRequest) Validate() error {
	if strings.TrimSpace(req.GroupID) == "" {
		return ErrMissingGroup
	}
	return nil
}

func (req *AdminLoginRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Password, validation.Required),
	)
}

// Validate checks everything about a feedback entry except catalog membership.
func (e *FeedbackEntry) Validate() error {
	err := validation.ValidateStruct(e,
		validation.Field(&e.GroupID, validation.Required),
		validation.Field(&e.Feedback, validation.By(notBlank), validation.Length(1, 2000)),
		validation.Field(&e.FeedbackDate, validation.Required, validation.Date(FeedbackDateLayout)),
		validation.Field(&e.FeedbackTime, validation.Required, validation.Date(FeedbackTimeLayout)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFeedback, err)
	}
	return nil
}
