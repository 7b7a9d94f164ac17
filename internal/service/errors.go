package service

import (
	apperrors "github.com/spec-kit/admissions-crm/pkg/util/errorutil"
)

// notFoundOr maps a repository miss to a NotFound naming the resource and
// anything else to a DomainError.
func notFoundOr(err error, resource, id string) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NewNotFound(resource, map[string]any{resource + "_id": id})
	}
	return apperrors.ToDomainError(err)
}
