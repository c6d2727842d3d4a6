package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"openadr/internal/domain/storage"
	apperrors "openadr/internal/shared/errors"
	"openadr/internal/wire"
)

// ParsePagination reads skip and limit query parameters and validates
// their bounds.
func ParsePagination(c *gin.Context) (storage.Pagination, error) {
	var page storage.Pagination

	if raw := c.Query("skip"); raw != "" {
		skip, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return page, apperrors.NewValidationError("skip must be an integer", raw)
		}
		page.Skip = skip
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return page, apperrors.NewValidationError("limit must be an integer", raw)
		}
		page.Limit = limit
	}
	if err := page.Validate(); err != nil {
		return page, apperrors.NewValidationError(err.Error())
	}
	return page.Normalize(), nil
}

// ParseTargets reads the targetType and targetValues query parameters
// into a target containment filter. targetType without values filters
// nothing; values without a type are bare targets.
func ParseTargets(c *gin.Context) ([]wire.Target, error) {
	targetType := c.Query("targetType")
	values := c.QueryArray("targetValues")
	if len(values) == 0 {
		return nil, nil
	}

	targets := make([]wire.Target, 0, len(values))
	for _, v := range values {
		var t wire.Target
		if targetType != "" {
			t = wire.NewTarget(targetType, v)
		} else {
			t = wire.Target(v)
		}
		if err := t.Validate(); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// PathID validates an identifier path parameter.
func PathID(c *gin.Context, name string) (wire.Identifier, error) {
	id, err := wire.NewIdentifier(c.Param(name))
	if err != nil {
		return "", apperrors.NewValidationError(err.Error())
	}
	return id, nil
}

// OptionalQueryID validates an optional identifier query parameter.
func OptionalQueryID(c *gin.Context, name string) (*wire.Identifier, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := wire.NewIdentifier(raw)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	return &id, nil
}
