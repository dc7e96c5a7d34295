package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrMissingPortalFile   = errors.New("portal file is required")
	ErrMissingBooksFile    = errors.New("at least one books file is required")
	ErrNoRecords           = errors.New("no records found in uploaded files")
	ErrCandidateReused     = errors.New("counterpart record already consumed in this run")
	ErrUploadFailed        = errors.New("file upload to storage failed")
)
