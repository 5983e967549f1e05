package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMissingPackageID   = errors.New("pkgid is required")
	ErrInvalidDisableEdit = errors.New("disable_edit must be a boolean")
)

// WidgetConfig is fixed for the lifetime of one widget.
type WidgetConfig struct {
	PackageID   string `json:"pkgid"`
	DisableEdit bool   `json:"disable_edit"`
}

// NewWidgetConfig builds a WidgetConfig from the textual activation options
// ("pkgid", "disable_edit"). An empty disable_edit means false; values that
// are not booleans are rejected instead of being read as false.
func NewWidgetConfig(pkgID, disableEdit string) (WidgetConfig, error) {
	pkgID = strings.TrimSpace(pkgID)
	if pkgID == "" {
		return WidgetConfig{}, ErrMissingPackageID
	}
	de, err := ParseDisableEdit(disableEdit)
	if err != nil {
		return WidgetConfig{}, err
	}
	return WidgetConfig{PackageID: pkgID, DisableEdit: de}, nil
}

func ParseDisableEdit(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %q", ErrInvalidDisableEdit, s)
	}
	return b, nil
}

// Params are the template parameters passed with the snippet request.
func (c WidgetConfig) Params() map[string]string {
	return map[string]string{
		"pkgid":        c.PackageID,
		"disable_edit": strconv.FormatBool(c.DisableEdit),
	}
}

// --- POST /dataset/{pkgid}/tweet ---

type SubmissionResult struct {
	Success bool   `json:"success"`
	Tweet   string `json:"tweet"`
	Reason  string `json:"reason,omitempty"`
}

// --- flash messages ---

type Category string

const (
	CategoryError   Category = "alert-error"
	CategorySuccess Category = "alert-success"
)

type Message struct {
	Text     string
	Category Category
}
