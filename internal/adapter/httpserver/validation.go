package httpserver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
)

var (
	vldOnce sync.Once
	vld     *validator.Validate

	idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// resolveRequest is the body of POST /v1/errors/{id}/resolve.
type resolveRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// ValidateID checks a path identifier (interview or error-log id).
func ValidateID(field, id string) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: %s is required", domain.ErrInvalidArgument, field)
	case len(id) > 100:
		return fmt.Errorf("%w: %s is too long (max 100 characters)", domain.ErrInvalidArgument, field)
	case !idPattern.MatchString(id):
		return fmt.Errorf("%w: %s contains invalid characters", domain.ErrInvalidArgument, field)
	}
	return nil
}

// parseLimit reads an optional ?limit= between 1 and 500. Zero means
// "use the service default".
func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: limit must be an integer", domain.ErrInvalidArgument)
	}
	if err := getValidator().Var(n, "min=1,max=500"); err != nil {
		return 0, fmt.Errorf("%w: limit must be between 1 and 500", domain.ErrInvalidArgument)
	}
	return n, nil
}

// validationDetails flattens validator errors into field -> tag.
func validationDetails(err error) map[string]string {
	out := map[string]string{}
	if ve, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range ve {
			out[strings.ToLower(fe.Field())] = fe.Tag()
		}
	}
	return out
}
